package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	SecretKey string // Required: shared HMAC secret for token signing
	Issuer    string // Optional: issuer claim ("" disables the check)
	Audience  string // Optional: audience claim ("" disables the check)

	AccessTTL  time.Duration // Access token lifetime (default: 5 minutes)
	RefreshTTL time.Duration // Refresh session lifetime (default: 2 hours)

	DatabaseFile        string        // Path to SQLite database file (default: ./gatehouse.db)
	PepperFile          string        // Path to password hashing pepper file (default: ./pepper)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads configuration from the environment. A missing signing
// secret or a non-numeric JWT_EXPIRES is a startup error so the process
// never serves with a broken token configuration.
func LoadConfig() (Config, error) {
	cfg := Config{
		SecretKey:           os.Getenv("JWT_SECRET_KEY"),
		Issuer:              os.Getenv("JWT_VALID_ISSUER"),
		Audience:            os.Getenv("JWT_VALID_AUDIENCE"),
		RefreshTTL:          getEnvDurationOrDefault("REFRESH_TTL", 2*time.Hour),
		DatabaseFile:        getEnvOrDefault("DATABASE_FILE", "gatehouse.db"),
		PepperFile:          getEnvOrDefault("PEPPER_FILE", "pepper"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.SecretKey == "" {
		return Config{}, errors.New("JWT_SECRET_KEY must be set")
	}

	// JWT_EXPIRES is whole minutes. Anything non-numeric means the
	// deployment is misconfigured, so fail rather than fall back.
	expires := getEnvOrDefault("JWT_EXPIRES", "5")
	minutes, err := strconv.Atoi(expires)
	if err != nil || minutes <= 0 {
		return Config{}, fmt.Errorf("JWT_EXPIRES must be a positive number of minutes, got %q", expires)
	}
	cfg.AccessTTL = time.Duration(minutes) * time.Minute

	return cfg, nil
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

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
