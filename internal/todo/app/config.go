package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/todo/internal/todo/domain"
	"github.com/aussiebroadwan/todo/pkg/httpx"
	"github.com/aussiebroadwan/todo/pkg/jwtx"
)

type Config struct {
	SigningKey string // Required: HS256 key for access tokens
	Issuer     string // Required: "iss" claim
	Audience   string // Required: "aud" claim

	AccessTokenTTL       time.Duration         // Access token lifetime (default: 1h)
	RefreshTokenTTL      time.Duration         // Refresh token lifetime (default: 168h)
	DatabaseFile         string                // Path to SQLite database file (default: ./todo.db)
	PepperFile           string                // Path to the password pepper file (default: ./pepper)
	CORSAllowedOrigins   []string              // Browser origins allowed to call the API (default: none)
	Env                  string                // Environment (dev, staging, prod) (default: dev)
	LogLevel             string                // Log level (debug, info, warn, error) (default: info)
	LogFormat            string                // Log format (json, text) (default: json)
	Port                 int                   // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration         // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration         // Expired refresh token sweep interval (default: 1h)
	AuthRateLimit        httpx.RateLimitConfig // RATELIMIT_AUTH_* overrides
	APIRateLimit         httpx.RateLimitConfig // RATELIMIT_API_* overrides
}

func LoadConfig() Config {
	return Config{
		SigningKey:           os.Getenv("JWT_SIGNING_KEY"),
		Issuer:               os.Getenv("JWT_ISSUER"),
		Audience:             os.Getenv("JWT_AUDIENCE"),
		AccessTokenTTL:       getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL:      getEnvDurationOrDefault("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		DatabaseFile:         getEnvOrDefault("TODO_DATABASE_FILE", "todo.db"),
		PepperFile:           getEnvOrDefault("TODO_PEPPER_FILE", "pepper"),
		CORSAllowedOrigins:   httpx.ParseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		AuthRateLimit:        httpx.RateLimitFromEnv("AUTH", httpx.AuthLimit),
		APIRateLimit:         httpx.RateLimitFromEnv("API", httpx.APILimit),
	}
}

// Validate reports missing token configuration. The service must not start
// without it.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.SigningKey) == "" {
		missing = append(missing, "JWT_SIGNING_KEY")
	}
	if strings.TrimSpace(c.Issuer) == "" {
		missing = append(missing, "JWT_ISSUER")
	}
	if strings.TrimSpace(c.Audience) == "" {
		missing = append(missing, "JWT_AUDIENCE")
	}
	if len(missing) > 0 {
		return domain.ConfigurationError("missing required configuration: " + strings.Join(missing, ", "))
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return domain.ConfigurationError("token lifetimes must be positive")
	}
	return nil
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

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
