// Package config provides configuration management for the HubSpot proxy.
// It loads configuration from environment variables with sensible defaults
// and validates it so the application starts safely.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - LOG_FILE: Append logs to this file instead of stdout
//   - TLS_CERT_FILE, TLS_KEY_FILE: Serve HTTPS when both are set
//
// HubSpot:
//   - HUBSPOT_CLIENT_ID: OAuth app client ID (required)
//   - HUBSPOT_CLIENT_SECRET: OAuth app client secret (required)
//   - HUBSPOT_REDIRECT_URI: Callback registered with the app (required)
//   - HUBSPOT_AUTH_URL: Authorization endpoint (default: https://app.hubspot.com/oauth/authorize)
//   - HUBSPOT_TOKEN_URL: Token endpoint (default: https://api.hubapi.com/oauth/v1/token)
//   - HUBSPOT_API_BASE_URL: CRM API base URL (default: https://api.hubapi.com)
//   - HUBSPOT_HTTP_TIMEOUT: Per-call timeout (default: 15s)
//   - HUBSPOT_RATE_LIMIT_RPS: Outbound requests per second (default: 10)
//   - HUBSPOT_RATE_LIMIT_BURST: Outbound burst size (default: 10)
//   - ASSOCIATION_CONCURRENCY: Records resolved in parallel (default: 4)
//
// Token Storage:
//   - TOKEN_STORAGE: memory, redis, sqlite or postgres (default: memory)
//   - TOKEN_ENCRYPTION_KEY: Passphrase sealing stored tokens
//   - DATABASE_PATH: SQLite database file path (default: ./hubspot_proxy.db)
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_DB, POSTGRES_USER,
//     POSTGRES_PASSWORD, POSTGRES_SSL_MODE: PostgreSQL connection
//
// Redis:
//   - REDIS_ADDRESS: Redis server address; Redis is disabled when empty
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//
// Inbound Rate Limiting (requires Redis):
//   - API_RATE_LIMIT_ENABLED: Enable rate limiting (default: true)
//   - API_RATE_LIMIT: Requests per window per client (default: 100)
//   - API_RATE_LIMIT_WINDOW: Window length, accepts d and w units (default: 1m)
//
// Example usage:
//
//	cfg := config.Load()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"hubspot-proxy/internal/common/utils"
)

// Token storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds all configuration values for the proxy. Load fills it from
// the environment; call Validate before use.
type Config struct {
	// Application settings
	Port        string
	LogLevel    string
	TLSCertFile string
	TLSKeyFile  string

	// HubSpot OAuth app and API
	ClientID               string
	ClientSecret           string
	RedirectURI            string
	AuthURL                string
	TokenURL               string
	APIBaseURL             string
	HTTPTimeout            time.Duration
	RateLimitRPS           float64
	RateLimitBurst         int
	AssociationConcurrency int

	// Token storage
	TokenStorage  string
	EncryptionKey string
	DatabasePath  string

	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresSSLMode  string

	// Redis for shared token cache, refresh locks and inbound rate limits
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int

	// Inbound rate limiting
	APIRateLimitEnabled bool
	APIRateLimit        int
	APIRateLimitWindow  time.Duration
}

// Load creates a Config from environment variables. Unset or unparseable
// values fall back to their defaults; Load never fails.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		ClientID:               getEnv("HUBSPOT_CLIENT_ID", ""),
		ClientSecret:           getEnv("HUBSPOT_CLIENT_SECRET", ""),
		RedirectURI:            getEnv("HUBSPOT_REDIRECT_URI", ""),
		AuthURL:                getEnv("HUBSPOT_AUTH_URL", "https://app.hubspot.com/oauth/authorize"),
		TokenURL:               getEnv("HUBSPOT_TOKEN_URL", "https://api.hubapi.com/oauth/v1/token"),
		APIBaseURL:             getEnv("HUBSPOT_API_BASE_URL", "https://api.hubapi.com"),
		HTTPTimeout:            getDurationEnv("HUBSPOT_HTTP_TIMEOUT", 15*time.Second),
		RateLimitRPS:           getFloatEnv("HUBSPOT_RATE_LIMIT_RPS", 10),
		RateLimitBurst:         getIntEnv("HUBSPOT_RATE_LIMIT_BURST", 10),
		AssociationConcurrency: getIntEnv("ASSOCIATION_CONCURRENCY", 4),

		TokenStorage:  getEnv("TOKEN_STORAGE", StorageMemory),
		EncryptionKey: getEnv("TOKEN_ENCRYPTION_KEY", ""),
		DatabasePath:  getEnv("DATABASE_PATH", "./hubspot_proxy.db"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getIntEnv("POSTGRES_PORT", 5432),
		PostgresDB:       getEnv("POSTGRES_DB", "hubspot_proxy"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		RedisPoolSize: getIntEnv("REDIS_POOL_SIZE", 10),

		APIRateLimitEnabled: getBoolEnv("API_RATE_LIMIT_ENABLED", true),
		APIRateLimit:        getIntEnv("API_RATE_LIMIT", 100),
		APIRateLimitWindow:  getDurationEnv("API_RATE_LIMIT_WINDOW", time.Minute),
	}
}

// RedisEnabled reports whether a Redis server is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisAddress != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getDurationEnv accepts Go durations plus the d and w units
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := utils.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate checks required fields, ranges and cross-field dependencies
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("HUBSPOT_CLIENT_ID environment variable is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("HUBSPOT_CLIENT_SECRET environment variable is required")
	}
	if c.RedirectURI == "" {
		return fmt.Errorf("HUBSPOT_REDIRECT_URI environment variable is required")
	}

	for name, raw := range map[string]string{
		"HUBSPOT_REDIRECT_URI": c.RedirectURI,
		"HUBSPOT_AUTH_URL":     c.AuthURL,
		"HUBSPOT_TOKEN_URL":    c.TokenURL,
		"HUBSPOT_API_BASE_URL": c.APIBaseURL,
	} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL", name)
		}
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HUBSPOT_HTTP_TIMEOUT must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("HUBSPOT_RATE_LIMIT_RPS and HUBSPOT_RATE_LIMIT_BURST must be positive")
	}
	if c.AssociationConcurrency < 1 {
		return fmt.Errorf("ASSOCIATION_CONCURRENCY must be a positive number")
	}

	switch c.TokenStorage {
	case StorageMemory, StorageSQLite:
	case StorageRedis:
		if !c.RedisEnabled() {
			return fmt.Errorf("REDIS_ADDRESS is required when TOKEN_STORAGE is redis")
		}
	case StoragePostgres, "postgresql":
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required when using PostgreSQL")
		}
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required when using PostgreSQL")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required when using PostgreSQL")
		}
		if c.PostgresPort < 1 || c.PostgresPort > 65535 {
			return fmt.Errorf("POSTGRES_PORT must be a valid port number")
		}
	default:
		return fmt.Errorf("TOKEN_STORAGE must be one of memory, redis, sqlite, postgres")
	}

	if c.RedisEnabled() {
		if c.RedisDB < 0 || c.RedisDB > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
		if c.RedisPoolSize < 1 {
			return fmt.Errorf("REDIS_POOL_SIZE must be a positive number")
		}
	}

	if c.APIRateLimitEnabled {
		if c.APIRateLimit < 1 {
			return fmt.Errorf("API_RATE_LIMIT must be a positive number")
		}
		if c.APIRateLimitWindow <= 0 {
			return fmt.Errorf("API_RATE_LIMIT_WINDOW must be a positive duration (e.g., '60s', '1m', '1d')")
		}
	}

	if c.EncryptionKey != "" && len(c.EncryptionKey) < 16 {
		return fmt.Errorf("TOKEN_ENCRYPTION_KEY must be at least 16 characters when provided")
	}

	return nil
}
