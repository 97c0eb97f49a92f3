package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer      string // Required: issuer claim for session tokens
	TokenSecret string // Required: HMAC secret for signing tokens (min 32 bytes)

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./admin.db)
	PepperFile           string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	RoleModel            string        // Optional: role model (three-tier, two-tier) (default: three-tier)
	RoutePolicy          string        // Optional: verdict for routes with no matching rule (allow, deny) (default: allow)
	SessionTTL           time.Duration // Optional: session lifetime (default: 24h)
	ExposeResetTokens    bool          // Optional: return reset tokens in API responses (dev only, default: false)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:               getEnvOrDefault("ADMIN_ISSUER", "menuboard-admin"),
		TokenSecret:          os.Getenv("ADMIN_TOKEN_SECRET"),
		DatabaseFile:         getEnvOrDefault("ADMIN_DATABASE_FILE", "admin.db"),
		PepperFile:           getEnvOrDefault("ADMIN_PEPPER_FILE", "pepper"),
		RoleModel:            getEnvOrDefault("ADMIN_ROLE_MODEL", "three-tier"),
		RoutePolicy:          getEnvOrDefault("ADMIN_ROUTE_POLICY", "allow"),
		SessionTTL:           getEnvDurationOrDefault("ADMIN_SESSION_TTL", 24*time.Hour),
		ExposeResetTokens:    getEnvBool("ADMIN_EXPOSE_RESET_TOKENS"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && value
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
