// Package config handles application configuration.
//
// Go Pattern: Configuration via environment variables with sensible defaults.
// A .env file in the working directory is loaded first (if present) so local
// development doesn't need exported variables; real environment variables
// always win over the file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultMaxPDFSize is the largest PDF we read into memory (50MB).
const DefaultMaxPDFSize = 50 << 20

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    string
	GinMode string // "debug", "release", or "test"

	// Logging
	LogLevel  string // "debug", "info", "warn", "error"
	LogFormat string // "console" or "json"

	// JWT secret for /api/v1. Empty disables auth on the API.
	JWTSecret string

	// Signs the tokens that bind a widget page to its URL. Random per
	// process when unset, which invalidates open widget pages on restart.
	WidgetSecret string

	// Requests per hour per client IP on /api/v1 and /widget.
	RateLimit int

	// Conversion limits
	MaxPDFSize   int64
	FetchTimeout time.Duration // 0 = whatever the HTTP client does by default

	// Lets the server fetch loopback and private-network URLs. Off by
	// default so the server can't be used to reach internal hosts.
	FetchAllowPrivate bool

	// CORS
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	// Missing .env is fine, it's a dev convenience.
	_ = godotenv.Load()

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		WidgetSecret: getEnv("WIDGET_SECRET", ""),

		RateLimit: getEnvInt("RATE_LIMIT", 100),

		MaxPDFSize:        int64(getEnvInt("MAX_PDF_SIZE", DefaultMaxPDFSize)),
		FetchTimeout:      getEnvDuration("FETCH_TIMEOUT", 0),
		FetchAllowPrivate: getEnvBool("FETCH_ALLOW_PRIVATE", false),

		// CORS: set this to the origin that embeds the widget
		AllowedOrigins: []string{
			getEnv("CORS_ORIGIN", "http://localhost:5173"), // Vite dev server default
		},
	}

	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return nil, fmt.Errorf("GIN_MODE must be debug, release or test, got %q", cfg.GinMode)
	}
	if cfg.MaxPDFSize <= 0 {
		return nil, fmt.Errorf("MAX_PDF_SIZE must be positive, got %d", cfg.MaxPDFSize)
	}
	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT must be positive, got %d", cfg.RateLimit)
	}
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be \"console\" or \"json\", got %q", cfg.LogFormat)
	}

	// Security: refuse to expose the API unauthenticated in release mode
	// with a trivially guessable secret.
	if cfg.GinMode == "release" && cfg.JWTSecret != "" && len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 16 characters in production")
	}

	if cfg.WidgetSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate widget secret: %w", err)
		}
		cfg.WidgetSecret = secret
	}

	return cfg, nil
}

// randomSecret returns 32 random bytes, hex encoded.
func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// getEnv reads an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt reads an integer environment variable with a fallback.
func getEnvInt(key string, fallback int) int {
	str := getEnv(key, "")
	if str == "" {
		return fallback
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return fallback
	}
	return val
}

// getEnvBool reads a boolean like "true", "1" or "false".
func getEnvBool(key string, fallback bool) bool {
	str := getEnv(key, "")
	if str == "" {
		return fallback
	}
	val, err := strconv.ParseBool(str)
	if err != nil {
		return fallback
	}
	return val
}

// getEnvDuration reads a duration like "30s" or "2m".
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	str := getEnv(key, "")
	if str == "" {
		return fallback
	}
	val, err := time.ParseDuration(str)
	if err != nil {
		return fallback
	}
	return val
}
