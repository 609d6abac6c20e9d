package middleware

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"repo-popularity/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UserContextKey is the gin context key holding the *AuthenticatedUser
const UserContextKey = "user"

// JWK represents a JSON Web Key
type JWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSet represents a set of JSON Web Keys
type JWKSet struct {
	Keys []JWK `json:"keys"`
}

// AuthMiddleware handles bearer JWT authentication. Tokens are verified either
// with a shared HS256 secret or with RS256 keys published at a JWKS endpoint.
type AuthMiddleware struct {
	secret     []byte
	issuer     string
	publicKeys map[string]*rsa.PublicKey
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(cfg *config.AuthConfig) (*AuthMiddleware, error) {
	return NewAuthMiddlewareWithHTTP(cfg, http.DefaultClient)
}

// NewAuthMiddlewareWithHTTP is NewAuthMiddleware with the client used to fetch the JWKS
func NewAuthMiddlewareWithHTTP(cfg *config.AuthConfig, httpClient *http.Client) (*AuthMiddleware, error) {
	am := &AuthMiddleware{
		issuer:     cfg.Issuer,
		publicKeys: make(map[string]*rsa.PublicKey),
	}

	if cfg.JWTSecret != "" {
		am.secret = []byte(cfg.JWTSecret)
		return am, nil
	}

	// Load public keys from JWKS endpoint
	if err := am.loadPublicKeys(httpClient, cfg.JWKSURL); err != nil {
		return nil, fmt.Errorf("failed to load public keys: %w", err)
	}

	return am, nil
}

// RequireAuth is a Gin middleware that requires authentication
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header is required",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header must start with 'Bearer '",
			})
			return
		}

		user, err := am.verifyToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid token",
				"details": err.Error(),
			})
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

// verifyToken parses and validates the JWT, returning the caller it identifies
func (am *AuthMiddleware) verifyToken(token string) (*AuthenticatedUser, error) {
	parsedToken, err := jwt.Parse(token, am.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !parsedToken.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	if am.issuer != "" {
		issuer, _ := claims["iss"].(string)
		if issuer != am.issuer {
			return nil, fmt.Errorf("invalid issuer")
		}
	}

	user := &AuthenticatedUser{}
	if sub, ok := claims["sub"].(string); ok {
		user.ID = sub
	}
	if user.ID == "" {
		return nil, fmt.Errorf("missing subject claim")
	}
	if username, ok := claims["username"].(string); ok {
		user.Username = username
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}

	return user, nil
}

func (am *AuthMiddleware) keyFunc(token *jwt.Token) (interface{}, error) {
	if am.secret != nil {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return am.secret, nil
	}

	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, fmt.Errorf("missing key ID in token header")
	}

	publicKey, exists := am.publicKeys[kid]
	if !exists {
		return nil, fmt.Errorf("unknown key ID: %s", kid)
	}

	return publicKey, nil
}

// loadPublicKeys loads public keys from the JWKS endpoint
func (am *AuthMiddleware) loadPublicKeys(httpClient *http.Client, jwksURL string) error {
	resp, err := httpClient.Get(jwksURL)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var jwks JWKSet
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}

	for _, jwk := range jwks.Keys {
		if jwk.Kty != "RSA" {
			continue
		}

		nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
		if err != nil {
			continue
		}

		eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
		if err != nil {
			continue
		}

		am.publicKeys[jwk.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(nBytes),
			E: int(new(big.Int).SetBytes(eBytes).Int64()),
		}
	}

	if len(am.publicKeys) == 0 {
		return fmt.Errorf("no RSA keys found at %s", jwksURL)
	}

	return nil
}

// AuthenticatedUser is the caller identified by a verified token
type AuthenticatedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CurrentUser returns the authenticated user stored by RequireAuth
func CurrentUser(c *gin.Context) (*AuthenticatedUser, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*AuthenticatedUser)
	return user, ok
}
