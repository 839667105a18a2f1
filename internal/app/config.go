package app

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// devSecret is the fallback signing secret for local development. Prod
// refuses to start with it.
const devSecret = "dev-secret-change-me"

type Config struct {
	Secret        string // JWT signing secret (required outside dev)
	DatabaseFile  string // Path to SQLite database file (default: ./stashbin.db)
	AdminUsername string // Bootstrap admin account username (default: admin)
	AdminPassword string // Bootstrap admin account password (default: admin)

	RegistrationOpen bool // Whether self-service signup is enabled (default: true)

	AccessTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTTL time.Duration // Refresh token lifetime (default: 7 days)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Secret:               getEnvOrDefault("STASHBIN_SECRET", devSecret),
		DatabaseFile:         getEnvOrDefault("STASHBIN_DATABASE_FILE", "stashbin.db"),
		AdminUsername:        getEnvOrDefault("STASHBIN_ADMIN_USERNAME", "admin"),
		AdminPassword:        getEnvOrDefault("STASHBIN_ADMIN_PASSWORD", "admin"),
		RegistrationOpen:     getEnvBoolOrDefault("STASHBIN_REGISTRATION_OPEN", true),
		AccessTTL:            getEnvDurationOrDefault("STASHBIN_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:           getEnvDurationOrDefault("STASHBIN_REFRESH_TTL", 7*24*time.Hour),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.Env != "dev" && cfg.Secret == devSecret {
		return Config{}, fmt.Errorf("STASHBIN_SECRET must be set when ENV=%s", cfg.Env)
	}

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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
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

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
