package app

import (
	"fmt"

	"hubspot-proxy/internal/circuitbreaker"
	"hubspot-proxy/internal/common/errors"
	commonhttp "hubspot-proxy/internal/common/http"
	"hubspot-proxy/internal/common/logging"
	"hubspot-proxy/internal/common/ratelimit"
	"hubspot-proxy/internal/config"
	"hubspot-proxy/internal/crm"
	"hubspot-proxy/internal/crypto"
	"hubspot-proxy/internal/locks"
	"hubspot-proxy/internal/oauth2"
	"hubspot-proxy/internal/redis"
	"hubspot-proxy/internal/storage"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	Storage     storage.Storage
	RedisClient *redis.Client
	Encryptor   *crypto.Encryptor
	Locker      locks.Locker
	TokenStore  *oauth2.TokenStore
	Gateway     *oauth2.Gateway
	Contacts    *crm.Aggregator[crm.Contact]
	Accounts    *crm.Aggregator[crm.Account]
	Logger      logging.Logger
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.Field{Key: "component", Value: "app"}),
	}

	if err := app.initializeEncryption(); err != nil {
		return nil, err
	}

	if err := app.initializeRedis(); err != nil {
		if cfg.TokenStorage == config.StorageRedis {
			return nil, err
		}
		app.Logger.Warn("Redis initialization failed, continuing without Redis",
			logging.Field{Key: "error", Value: err.Error()})
	}

	if err := app.initializeTokenStore(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeGateway(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeAggregators(); err != nil {
		app.Cleanup()
		return nil, err
	}

	return app, nil
}

func (app *App) initializeEncryption() error {
	if app.Config.EncryptionKey == "" {
		app.Logger.Info("Token encryption: disabled")
		return nil
	}
	encryptor, err := crypto.NewEncryptor(app.Config.EncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize token encryption: %w", err)
	}
	app.Encryptor = encryptor
	app.Logger.Info("Token encryption: enabled")
	return nil
}

func (app *App) initializeGateway() error {
	oauthConfig := oauth2.Config{
		ClientID:     app.Config.ClientID,
		ClientSecret: app.Config.ClientSecret,
		RedirectURL:  app.Config.RedirectURI,
		AuthURL:      app.Config.AuthURL,
		TokenURL:     app.Config.TokenURL,
	}
	if err := oauthConfig.Validate(); err != nil {
		return errors.ConfigError(err.Error())
	}

	opts := []oauth2.GatewayOption{
		oauth2.WithHTTPClient(commonhttp.NewHTTPClientWithTimeout(app.Config.HTTPTimeout)),
		oauth2.WithCircuitBreaker(circuitbreaker.NewGoBreaker("hubspot-oauth", circuitbreaker.OAuthConfig, app.Logger)),
	}
	if app.Locker != nil {
		opts = append(opts, oauth2.WithLocker(app.Locker))
	}

	app.Gateway = oauth2.NewGateway(oauthConfig, app.TokenStore, opts...)
	return nil
}

func (app *App) initializeAggregators() error {
	limiter, err := ratelimit.NewLocalLimiter(ratelimit.Config{
		RequestsPerSecond: app.Config.RateLimitRPS,
		BurstSize:         app.Config.RateLimitBurst,
		Enabled:           true,
	})
	if err != nil {
		return errors.ConfigError(err.Error())
	}

	newWrapper := func(breaker string) *commonhttp.HTTPClientWrapper {
		return commonhttp.NewHTTPClientWrapper(commonhttp.WithTimeout(app.Config.HTTPTimeout)).
			WithCircuitBreaker(circuitbreaker.NewGoBreaker(breaker, circuitbreaker.APIConfig, app.Logger)).
			WithRateLimiter(limiter)
	}

	client := crm.NewClient(app.Config.APIBaseURL, newWrapper("hubspot-crm"),
		crm.WithAssociationsHTTPClient(newWrapper("hubspot-crm-associations")))
	opts := []crm.Option{crm.WithConcurrency(app.Config.AssociationConcurrency)}

	app.Contacts = crm.NewContactsAggregator(client, app.Gateway, opts...)
	app.Accounts = crm.NewAccountsAggregator(client, app.Gateway, opts...)

	app.Logger.Info("HubSpot client configured",
		logging.Field{Key: "base_url", Value: app.Config.APIBaseURL},
		logging.Field{Key: "timeout", Value: app.Config.HTTPTimeout.String()},
		logging.Field{Key: "association_concurrency", Value: app.Config.AssociationConcurrency},
	)
	return nil
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.Storage != nil {
		if err := app.Storage.Close(); err != nil {
			app.Logger.Warn("Failed to close storage", logging.Field{Key: "error", Value: err.Error()})
		}
	}
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.Logger.Warn("Failed to close Redis", logging.Field{Key: "error", Value: err.Error()})
		}
	}
}
