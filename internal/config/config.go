package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	ServerPort       string
	WorkerAdminPort  string
	BaseURL          string
	FrontendURL      string
	EnableHSTS       bool
	RedisURL         string
	RabbitMQURL      string
	RabbitMQPrefetch int
	WorkerDebugMode  bool
	ServerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string
	OTELInsecure     bool

	// WeightsFile is an optional YAML file overriding scoring weights
	WeightsFile string

	OIDCIssuer       string
	OIDCJWKSURL      string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCAuthURL      string
	OIDCTokenURL     string
	OIDCRedirectURL  string
	CORSAllowOrigins string

	SlotCacheTTL       time.Duration
	PreferenceCacheTTL time.Duration
	PreferenceCacheMax int
	WorkerPoolSize     int
	SweepWindow        time.Duration
	DLQRetention       time.Duration

	NotifyWebhookURL string
	NotifyTimeout    time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		WorkerAdminPort:  getEnv("WORKER_ADMIN_PORT", "9090"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:       getEnvBool("ENABLE_HSTS", false),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),
		WorkerDebugMode:  getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:     getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),

		WeightsFile: getEnv("WEIGHTS_FILE", ""),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCJWKSURL:      getEnv("OIDC_JWKS_URL", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCAuthURL:      getEnv("OIDC_AUTH_URL", ""),
		OIDCTokenURL:     getEnv("OIDC_TOKEN_URL", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", ""),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", ""),

		SlotCacheTTL:       getEnvDuration("SLOT_CACHE_TTL", 10*time.Minute),
		PreferenceCacheTTL: getEnvDuration("PREFERENCE_CACHE_TTL", 5*time.Minute),
		PreferenceCacheMax: getEnvInt("PREFERENCE_CACHE_MAX", 1024),
		WorkerPoolSize:     getEnvInt("WORKER_POOL_SIZE", 4),
		SweepWindow:        getEnvDuration("SWEEP_WINDOW", 48*time.Hour),
		DLQRetention:       getEnvDuration("DLQ_RETENTION", 24*time.Hour),

		NotifyWebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		NotifyTimeout:    getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for reminder delivery and sweep jobs")
	}

	if cfg.WorkerPoolSize < 1 {
		return nil, fmt.Errorf("WORKER_POOL_SIZE must be at least 1, got %d", cfg.WorkerPoolSize)
	}

	return cfg, nil
}

// AuthEnabled reports whether bearer token verification is configured
func (c *Config) AuthEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCJWKSURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
