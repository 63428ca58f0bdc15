package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Issuer   string // Issuer claim for tokens (default: cinefeed)
	Audience string // Audience claim for tokens (default: cinefeed-users)

	AccessTokenSecret  string        // Required: HS256 secret for access tokens
	RefreshTokenSecret string        // Required: HS256 secret for refresh tokens, distinct from access
	AccessTokenTTL     time.Duration // Optional: access token lifetime (default: 24h)
	RefreshTokenTTL    time.Duration // Optional: refresh token lifetime (default: 7d)

	TMDBAPIKey  string // Required: key for the movie metadata provider
	TMDBBaseURL string // Optional: provider base URL override (used in tests)

	DatabaseFile string // Optional: path to SQLite database file (default: ./cinefeed.db)
	PepperFile   string // Optional: path to the password hashing pepper file (default: ./pepper)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Issuer:   getEnvOrDefault("JWT_ISSUER", "cinefeed"),
		Audience: getEnvOrDefault("JWT_AUDIENCE", "cinefeed-users"),

		AccessTokenSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		RefreshTokenSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTokenTTL:     getEnvDurationOrDefault("JWT_ACCESS_TTL", 24*time.Hour),
		RefreshTokenTTL:    getEnvDurationOrDefault("JWT_REFRESH_TTL", 7*24*time.Hour),

		TMDBAPIKey:  os.Getenv("TMDB_API_KEY"),
		TMDBBaseURL: os.Getenv("TMDB_BASE_URL"),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "cinefeed.db"),
		PepperFile:   getEnvOrDefault("PEPPER_FILE", "pepper"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accept a "d" day suffix alongside the standard units, so "7d" works.
	if strings.HasSuffix(value, "d") {
		if days, err := strconv.Atoi(strings.TrimSuffix(value, "d")); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
