package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	GitHub   GitHubConfig
	Auth     AuthConfig
	Log      LogConfig
	CORS     CORSConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	// PublicURL is used to build self links in API responses
	PublicURL string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string
	DSN      string
	MaxConns int
	MinConns int
}

// GitHubConfig holds settings for the GitHub metrics lookup
type GitHubConfig struct {
	// Token is the personal access token; empty means lookups report the
	// credential as unavailable without calling GitHub.
	Token            string
	APIURL           string
	Timeout          int
	CanaryRepository string
	// CredentialPolicy is "fold" or "distinguish"
	CredentialPolicy string
}

// AuthConfig holds API authentication configuration.
// Either JWTSecret (HS256) or JWKSURL+Issuer (RS256) must be set.
type AuthConfig struct {
	JWTSecret string
	JWKSURL   string
	Issuer    string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := Read()

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Read loads configuration from environment variables without validating it
func Read() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// .env file is optional
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 120),
			PublicURL:    strings.TrimRight(getEnv("SERVER_PUBLIC_URL", ""), "/"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		GitHub: GitHubConfig{
			Token:            getEnv("PERSONAL_ACCESS_TOKEN", ""),
			APIURL:           getEnv("GITHUB_API_URL", "https://api.github.com/"),
			Timeout:          getEnvAsInt("GITHUB_TIMEOUT", 30),
			CanaryRepository: getEnv("GITHUB_CANARY_REPOSITORY", "facebook/react"),
			CredentialPolicy: getEnv("GITHUB_CREDENTIAL_POLICY", "fold"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
			JWKSURL:   getEnv("AUTH_JWKS_URL", ""),
			Issuer:    getEnv("AUTH_ISSUER", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", ",", []string{"*"}),
		},
	}

	return config
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.Auth.JWTSecret == "" {
		if c.Auth.JWKSURL == "" {
			return fmt.Errorf("AUTH_JWT_SECRET or AUTH_JWKS_URL is required")
		}
		if c.Auth.Issuer == "" {
			return fmt.Errorf("AUTH_ISSUER is required with AUTH_JWKS_URL")
		}
	}
	return c.GitHub.Validate()
}

// Validate checks the GitHub lookup settings
func (c *GitHubConfig) Validate() error {
	if c.CredentialPolicy != "fold" && c.CredentialPolicy != "distinguish" {
		return fmt.Errorf("GITHUB_CREDENTIAL_POLICY must be fold or distinguish, got %q", c.CredentialPolicy)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("GITHUB_TIMEOUT must be positive")
	}
	return nil
}

// GetServerAddress returns the server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// GetTimeout returns the GitHub HTTP client timeout
func (c *GitHubConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt gets an environment variable as integer with a fallback value
func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getEnvAsSlice gets an environment variable as slice with a fallback value
func getEnvAsSlice(key, separator string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, separator)
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return fallback
}
