// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL used for links and redirects.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// Backend holds settings for the upstream store API.
	Backend BackendConfig

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Session holds browser session settings.
	Session SessionConfig
}

// BackendConfig holds connection settings for the upstream REST API that
// owns users, products, blogs, and orders. The gateway never talks to a
// database directly -- everything durable lives behind this URL.
type BackendConfig struct {
	// URL is the upstream API base URL (e.g., "http://localhost:5000/api/v1").
	URL string

	// Timeout is the per-request deadline for upstream calls.
	Timeout time.Duration
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// SessionConfig holds browser session settings.
type SessionConfig struct {
	// TTL is how long a gateway session (and its saved cart) lives in Redis.
	TTL time.Duration

	// CookieName is the name of the session cookie.
	CookieName string
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is loaded first if
// present, so local development works without exporting anything.
// Returns an error if required variables are missing or malformed.
func Load() (*Config, error) {
	// Missing .env is fine -- production injects real env vars.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		Backend: BackendConfig{
			URL:     getEnv("BACKEND_URL", "http://localhost:5000/api/v1"),
			Timeout: getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Session: SessionConfig{
			TTL:        getEnvDuration("SESSION_TTL", 168*time.Hour),
			CookieName: getEnv("SESSION_COOKIE", "storefront_session"),
		},
	}

	// The backend URL must parse -- every feature proxies through it.
	if _, err := url.Parse(cfg.Backend.URL); err != nil {
		return nil, fmt.Errorf("invalid BACKEND_URL: %w", err)
	}

	// Validate required fields in production. Case-insensitive check catches
	// common variants like "Production", "prod", etc.
	envLower := strings.ToLower(cfg.Env)
	if envLower == "production" || envLower == "prod" {
		if getEnv("BACKEND_URL", "") == "" {
			return nil, fmt.Errorf("BACKEND_URL is required in production")
		}
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "168h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
