package app

import (
	"fmt"

	"hubspot-proxy/internal/common/logging"
	"hubspot-proxy/internal/config"
	"hubspot-proxy/internal/oauth2"
	"hubspot-proxy/internal/storage"
	"hubspot-proxy/internal/storage/postgres"
	"hubspot-proxy/internal/storage/sqlite"
)

// initializeTokenStore picks the repository behind the token store
func (app *App) initializeTokenStore() error {
	var repoOpts []oauth2.RepositoryOption
	if app.Encryptor != nil {
		repoOpts = append(repoOpts, oauth2.WithEncryptor(app.Encryptor))
	}

	var repo oauth2.Repository
	switch app.Config.TokenStorage {
	case config.StorageRedis:
		if app.RedisClient == nil {
			return fmt.Errorf("token storage is redis but Redis is not connected")
		}
		app.Logger.Info("Token storage: Redis", logging.Field{Key: "key", Value: oauth2.DefaultRedisKey})
		repo = oauth2.NewRedisRepository(app.RedisClient, repoOpts...)

	case config.StorageSQLite, config.StoragePostgres, "postgresql":
		if err := app.initializeStorage(); err != nil {
			return err
		}
		repo = oauth2.NewSettingsRepository(app.Storage, repoOpts...)

	default:
		app.Logger.Info("Token storage: memory (tokens are lost on restart)")
		repo = oauth2.NewMemoryRepository()
	}

	app.TokenStore = oauth2.NewTokenStore(repo)
	return nil
}

func (app *App) initializeStorage() error {
	cfg := &storage.Config{Type: app.Config.TokenStorage}

	switch app.Config.TokenStorage {
	case config.StoragePostgres, "postgresql":
		app.Logger.Info("Token storage: PostgreSQL",
			logging.Field{Key: "host", Value: app.Config.PostgresHost},
			logging.Field{Key: "port", Value: app.Config.PostgresPort},
			logging.Field{Key: "database", Value: app.Config.PostgresDB},
		)
		cfg.Postgres = postgres.Config{
			Host:     app.Config.PostgresHost,
			Port:     app.Config.PostgresPort,
			Database: app.Config.PostgresDB,
			Username: app.Config.PostgresUser,
			Password: app.Config.PostgresPassword,
			SSLMode:  app.Config.PostgresSSLMode,
		}
	default:
		app.Logger.Info("Token storage: SQLite", logging.Field{Key: "path", Value: app.Config.DatabasePath})
		cfg.SQLite = sqlite.Config{DatabasePath: app.Config.DatabasePath}
	}

	store, err := storage.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.Storage = store
	return nil
}
