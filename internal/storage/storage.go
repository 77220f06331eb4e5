// Package storage provides the key/value settings table the proxy uses to
// persist its OAuth2 session in SQLite or PostgreSQL.
//
// Both backends create the table on first use:
//
//	CREATE TABLE IF NOT EXISTS settings (
//		key TEXT PRIMARY KEY,
//		value TEXT NOT NULL,
//		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
//	)
//
// Example usage:
//
//	store, err := storage.New(&storage.Config{
//		Type:   "sqlite",
//		SQLite: sqlite.Config{DatabasePath: "hubspot_proxy.db"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	repo := oauth2.NewSettingsRepository(store)
package storage

import (
	"context"
	"fmt"

	"hubspot-proxy/internal/common/errors"
	"hubspot-proxy/internal/storage/postgres"
	"hubspot-proxy/internal/storage/sqlite"
)

// Storage is a settings table
type Storage interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	Health(ctx context.Context) error
	Close() error
}

// Config selects and configures a backend
type Config struct {
	Type     string
	SQLite   sqlite.Config
	Postgres postgres.Config
}

// New opens the configured backend and migrates it
func New(cfg *Config) (Storage, error) {
	switch cfg.Type {
	case "sqlite":
		return sqlite.NewAdapter(&cfg.SQLite)
	case "postgres", "postgresql":
		return postgres.NewAdapter(&cfg.Postgres)
	default:
		return nil, errors.ConfigError(fmt.Sprintf("unsupported database type: %s", cfg.Type))
	}
}
