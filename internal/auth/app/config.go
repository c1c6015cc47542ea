package app

import (
	"os"
	"strconv"
	"time"

	"github.com/monitordb/auth/pkg/jwtx"
)

type Config struct {
	Issuer    string // Optional: issuer claim for tokens (default: monitord-auth)
	JWTSecret string // Required: HS256 signing secret, at least 32 bytes

	AccessTTL  time.Duration // Optional: access token lifetime (default: 30m)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 7 days)

	MaxFailedAttempts int           // Optional: failed logins before lockout (default: 5)
	LockoutDuration   time.Duration // Optional: lockout length (default: 30m)
	SessionTTL        time.Duration // Optional: session lifetime (default: 24h)

	AdminEmail    string // Optional: seed admin email for an empty database
	AdminPassword string // Optional: seed admin password; no seeding when unset

	DatabaseFile string // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)
	WebhookURL   string // Optional: URL security events are posted to

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:    getEnvOrDefault("AUTH_ISSUER", "monitord-auth"),
		JWTSecret: os.Getenv("AUTH_JWT_SECRET"),

		AccessTTL:  getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),

		MaxFailedAttempts: getEnvIntOrDefault("AUTH_MAX_FAILED_ATTEMPTS", 5),
		LockoutDuration:   getEnvDurationOrDefault("AUTH_LOCKOUT_DURATION", 30*time.Minute),
		SessionTTL:        getEnvDurationOrDefault("AUTH_SESSION_TTL", 24*time.Hour),

		AdminEmail:    getEnvOrDefault("AUTH_ADMIN_EMAIL", "admin@monitordb.local"),
		AdminPassword: os.Getenv("AUTH_ADMIN_PASSWORD"),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		WebhookURL:   os.Getenv("AUTH_WEBHOOK_URL"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
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
