package config

import (
	"strings"
	"testing"
	"time"
)

var envVars = []string{
	"PORT", "LOG_LEVEL", "TLS_CERT_FILE", "TLS_KEY_FILE",
	"HUBSPOT_CLIENT_ID", "HUBSPOT_CLIENT_SECRET", "HUBSPOT_REDIRECT_URI",
	"HUBSPOT_AUTH_URL", "HUBSPOT_TOKEN_URL", "HUBSPOT_API_BASE_URL",
	"HUBSPOT_HTTP_TIMEOUT", "HUBSPOT_RATE_LIMIT_RPS", "HUBSPOT_RATE_LIMIT_BURST",
	"ASSOCIATION_CONCURRENCY", "TOKEN_STORAGE", "TOKEN_ENCRYPTION_KEY", "DATABASE_PATH",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DB", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_SSL_MODE",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE",
	"API_RATE_LIMIT_ENABLED", "API_RATE_LIMIT", "API_RATE_LIMIT_WINDOW",
}

// clearTestEnvVars blanks every variable Load reads; t.Setenv restores them
func clearTestEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
}

func validConfig() *Config {
	cfg := Load()
	cfg.ClientID = "client-id"
	cfg.ClientSecret = "client-secret"
	cfg.RedirectURI = "http://localhost:8080/auth/callback"
	return cfg
}

func TestLoad(t *testing.T) {
	clearTestEnvVars(t)

	config := Load()

	if config.Port != "8080" {
		t.Errorf("Load() Port = %v, want %v", config.Port, "8080")
	}
	if config.TokenURL != "https://api.hubapi.com/oauth/v1/token" {
		t.Errorf("Load() TokenURL = %v", config.TokenURL)
	}
	if config.AuthURL != "https://app.hubspot.com/oauth/authorize" {
		t.Errorf("Load() AuthURL = %v", config.AuthURL)
	}
	if config.APIBaseURL != "https://api.hubapi.com" {
		t.Errorf("Load() APIBaseURL = %v", config.APIBaseURL)
	}
	if config.HTTPTimeout != 15*time.Second {
		t.Errorf("Load() HTTPTimeout = %v, want 15s", config.HTTPTimeout)
	}
	if config.AssociationConcurrency != 4 {
		t.Errorf("Load() AssociationConcurrency = %v, want 4", config.AssociationConcurrency)
	}
	if config.TokenStorage != StorageMemory {
		t.Errorf("Load() TokenStorage = %v, want %v", config.TokenStorage, StorageMemory)
	}
	if config.RedisEnabled() {
		t.Errorf("Load() RedisEnabled() = true, want false")
	}
	if !config.APIRateLimitEnabled || config.APIRateLimit != 100 || config.APIRateLimitWindow != time.Minute {
		t.Errorf("Load() API rate limit = %v/%v/%v", config.APIRateLimitEnabled, config.APIRateLimit, config.APIRateLimitWindow)
	}
	if config.PostgresPort != 5432 || config.PostgresDB != "hubspot_proxy" {
		t.Errorf("Load() Postgres = %v/%v", config.PostgresPort, config.PostgresDB)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearTestEnvVars(t)
	t.Setenv("PORT", "9000")
	t.Setenv("HUBSPOT_CLIENT_ID", "abc")
	t.Setenv("HUBSPOT_HTTP_TIMEOUT", "30s")
	t.Setenv("HUBSPOT_RATE_LIMIT_RPS", "2.5")
	t.Setenv("ASSOCIATION_CONCURRENCY", "8")
	t.Setenv("API_RATE_LIMIT_WINDOW", "1d")
	t.Setenv("API_RATE_LIMIT_ENABLED", "false")
	t.Setenv("REDIS_DB", "not-a-number")

	config := Load()

	if config.Port != "9000" || config.ClientID != "abc" {
		t.Errorf("Load() Port/ClientID = %v/%v", config.Port, config.ClientID)
	}
	if config.HTTPTimeout != 30*time.Second {
		t.Errorf("Load() HTTPTimeout = %v, want 30s", config.HTTPTimeout)
	}
	if config.RateLimitRPS != 2.5 {
		t.Errorf("Load() RateLimitRPS = %v, want 2.5", config.RateLimitRPS)
	}
	if config.AssociationConcurrency != 8 {
		t.Errorf("Load() AssociationConcurrency = %v, want 8", config.AssociationConcurrency)
	}
	if config.APIRateLimitWindow != 24*time.Hour {
		t.Errorf("Load() APIRateLimitWindow = %v, want 24h", config.APIRateLimitWindow)
	}
	if config.APIRateLimitEnabled {
		t.Errorf("Load() APIRateLimitEnabled = true, want false")
	}
	if config.RedisDB != 0 {
		t.Errorf("Load() RedisDB = %v, want default 0 for invalid input", config.RedisDB)
	}
}

func TestValidate(t *testing.T) {
	clearTestEnvVars(t)

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"missing client id", func(c *Config) { c.ClientID = "" }, "HUBSPOT_CLIENT_ID"},
		{"missing client secret", func(c *Config) { c.ClientSecret = "" }, "HUBSPOT_CLIENT_SECRET"},
		{"missing redirect", func(c *Config) { c.RedirectURI = "" }, "HUBSPOT_REDIRECT_URI"},
		{"relative redirect", func(c *Config) { c.RedirectURI = "/auth/callback" }, "HUBSPOT_REDIRECT_URI"},
		{"bad port", func(c *Config) { c.Port = "99999" }, "PORT"},
		{"half tls", func(c *Config) { c.TLSCertFile = "cert.pem" }, "TLS_CERT_FILE"},
		{"zero concurrency", func(c *Config) { c.AssociationConcurrency = 0 }, "ASSOCIATION_CONCURRENCY"},
		{"zero outbound rate", func(c *Config) { c.RateLimitRPS = 0 }, "HUBSPOT_RATE_LIMIT_RPS"},
		{"unknown storage", func(c *Config) { c.TokenStorage = "etcd" }, "TOKEN_STORAGE"},
		{"redis storage without redis", func(c *Config) { c.TokenStorage = StorageRedis }, "REDIS_ADDRESS"},
		{"redis storage", func(c *Config) {
			c.TokenStorage = StorageRedis
			c.RedisAddress = "localhost:6379"
		}, ""},
		{"redis db out of range", func(c *Config) {
			c.RedisAddress = "localhost:6379"
			c.RedisDB = 16
		}, "REDIS_DB"},
		{"postgres without user", func(c *Config) {
			c.TokenStorage = StoragePostgres
			c.PostgresUser = ""
		}, "POSTGRES_USER"},
		{"postgres", func(c *Config) { c.TokenStorage = "postgresql" }, ""},
		{"zero api limit", func(c *Config) { c.APIRateLimit = 0 }, "API_RATE_LIMIT"},
		{"short encryption key", func(c *Config) { c.EncryptionKey = "short" }, "TOKEN_ENCRYPTION_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
