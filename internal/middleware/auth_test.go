package middleware_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"repo-popularity/internal/config"
	"repo-popularity/internal/middleware"
)

const testSecret = "test-secret"

func protectedRouter(am *middleware.AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, user.ID)
	})
	return router
}

func signHS256(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestRequireAuthWithSecret(t *testing.T) {
	am, err := middleware.NewAuthMiddleware(&config.AuthConfig{JWTSecret: testSecret})
	if err != nil {
		t.Fatalf("NewAuthMiddleware() error = %v", err)
	}
	router := protectedRouter(am)

	valid := signHS256(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()}, testSecret)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + valid, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signHS256(t, jwt.MapClaims{"sub": "user-1"}, "other"), http.StatusUnauthorized},
		{"expired", "Bearer " + signHS256(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix()}, testSecret), http.StatusUnauthorized},
		{"no subject", "Bearer " + signHS256(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}, testSecret), http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK && w.Body.String() != "user-1" {
				t.Errorf("body = %q, want user-1", w.Body.String())
			}
		})
	}
}

func TestRequireAuthWithJWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	jwksServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(middleware.JWKSet{Keys: []middleware.JWK{{
			Kty: "RSA",
			Kid: "key-1",
			Use: "sig",
			N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	}))
	defer jwksServer.Close()

	am, err := middleware.NewAuthMiddlewareWithHTTP(&config.AuthConfig{
		JWKSURL: jwksServer.URL,
		Issuer:  "https://issuer.example",
	}, jwksServer.Client())
	if err != nil {
		t.Fatalf("NewAuthMiddleware() error = %v", err)
	}
	router := protectedRouter(am)

	sign := func(kid, issuer string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"sub": "user-2",
			"iss": issuer,
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		token.Header["kid"] = kid
		signed, err := token.SignedString(key)
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		return signed
	}

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"valid", sign("key-1", "https://issuer.example"), http.StatusOK},
		{"unknown kid", sign("key-2", "https://issuer.example"), http.StatusUnauthorized},
		{"wrong issuer", sign("key-1", "https://other.example"), http.StatusUnauthorized},
		{"hmac token", signHS256(t, jwt.MapClaims{"sub": "user-2", "iss": "https://issuer.example"}, testSecret), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestNewAuthMiddlewareJWKSUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := middleware.NewAuthMiddlewareWithHTTP(&config.AuthConfig{JWKSURL: server.URL, Issuer: "x"}, server.Client())
	if err == nil {
		t.Error("expected error when JWKS cannot be loaded")
	}
}
