package oauth2

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	xoauth2 "golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"hubspot-proxy/internal/circuitbreaker"
	"hubspot-proxy/internal/common/errors"
	commonhttp "hubspot-proxy/internal/common/http"
	"hubspot-proxy/internal/common/logging"
	"hubspot-proxy/internal/locks"
	"hubspot-proxy/internal/metrics"
)

// HubSpot OAuth2 endpoints
const (
	DefaultAuthURL  = "https://app.hubspot.com/oauth/authorize"
	DefaultTokenURL = "https://api.hubapi.com/oauth/v1/token"
)

// DefaultScopes are requested on every authorization
var DefaultScopes = []string{
	"crm.objects.contacts.read",
	"crm.objects.companies.read",
	"crm.objects.deals.read",
}

const refreshFlightKey = "hubspot"

// Config holds the OAuth2 client registration
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	Scopes       []string
}

// Validate checks that the registration is usable
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("client ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("client secret is required")
	}
	if c.RedirectURL == "" {
		return fmt.Errorf("redirect URL is required")
	}
	return nil
}

// Gateway runs the authorization-code and refresh-token flows against
// HubSpot and keeps TokenStore current
type Gateway struct {
	oauth      *xoauth2.Config
	store      *TokenStore
	httpClient *http.Client
	breaker    *circuitbreaker.GoBreakerAdapter
	locker     locks.Locker
	refreshes  singleflight.Group
	logger     logging.Logger
	now        func() time.Time
}

// GatewayOption configures a Gateway
type GatewayOption func(*Gateway)

// WithHTTPClient sets the client used for token endpoint calls
func WithHTTPClient(client *http.Client) GatewayOption {
	return func(g *Gateway) {
		g.httpClient = client
	}
}

// WithCircuitBreaker guards token endpoint calls
func WithCircuitBreaker(cb *circuitbreaker.GoBreakerAdapter) GatewayOption {
	return func(g *Gateway) {
		g.breaker = cb
	}
}

// WithLocker serializes refreshes across instances
func WithLocker(locker locks.Locker) GatewayOption {
	return func(g *Gateway) {
		g.locker = locker
	}
}

// WithLogger sets the gateway logger
func WithLogger(logger logging.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// NewGateway creates a gateway for cfg storing tokens in store
func NewGateway(cfg Config, store *TokenStore, opts ...GatewayOption) *Gateway {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	g := &Gateway{
		oauth: &xoauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: xoauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: xoauth2.AuthStyleInParams,
			},
		},
		store:      store,
		httpClient: commonhttp.NewHTTPClient(),
		logger:     logging.GetGlobalLogger(),
		now:        store.now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AuthorizationURL returns the HubSpot consent URL
func (g *Gateway) AuthorizationURL() string {
	return g.oauth.AuthCodeURL("")
}

// ExchangeCode trades an authorization code for tokens and stores them.
// The store is left untouched when HubSpot rejects the code.
func (g *Gateway) ExchangeCode(ctx context.Context, code string) (*Tokens, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.ValidationError("Authorization code required")
	}

	var token *xoauth2.Token
	err := g.execute(ctx, func(ctx context.Context) error {
		t, err := g.oauth.Exchange(ctx, code)
		if err != nil {
			return upstreamError(err, "Failed to exchange code")
		}
		token = t
		return nil
	})
	metrics.TokenExchanges.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		g.logger.WithContext(ctx).Error("Token exchange failed", err)
		return nil, err
	}

	tokens := g.tokensFrom(token)
	if err := g.store.SetTokens(ctx, tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresIn); err != nil {
		return nil, err
	}

	g.logger.WithContext(ctx).Info("Tokens stored", logging.Field{Key: "expires_in", Value: tokens.ExpiresIn})
	return tokens, nil
}

// RefreshAccessToken spends the stored refresh token. Any failure clears the
// store so the user has to log in again.
func (g *Gateway) RefreshAccessToken(ctx context.Context) (string, error) {
	refreshToken, ok, err := g.store.RefreshToken(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.AuthError("No refresh token. Please login at /auth/login")
	}

	var token *xoauth2.Token
	err = g.execute(ctx, func(ctx context.Context) error {
		t, err := g.oauth.TokenSource(ctx, &xoauth2.Token{RefreshToken: refreshToken}).Token()
		if err != nil {
			return upstreamError(err, "Token refresh rejected")
		}
		token = t
		return nil
	})
	metrics.TokenRefreshes.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		g.logger.WithContext(ctx).Error("Token refresh failed", err)
		if clearErr := g.store.Clear(ctx); clearErr != nil {
			g.logger.WithContext(ctx).Error("Failed to clear tokens", clearErr)
		}
		return "", errors.AuthError(fmt.Sprintf(
			"Token refresh failed: %s. Please re-authenticate at /auth/login", failureMessage(err),
		)).WithCause(err)
	}

	tokens := g.tokensFrom(token)
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}
	if err := g.store.SetTokens(ctx, tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresIn); err != nil {
		return "", err
	}

	g.logger.WithContext(ctx).Info("Access token refreshed")
	return tokens.AccessToken, nil
}

// ValidAccessToken returns the stored access token, refreshing it once when
// it has expired. Concurrent callers share the refresh.
func (g *Gateway) ValidAccessToken(ctx context.Context) (string, error) {
	token, ok, err := g.store.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	if ok {
		return token, nil
	}

	g.logger.WithContext(ctx).Debug("Access token expired, refreshing")

	result, err, _ := g.refreshes.Do(refreshFlightKey, func() (interface{}, error) {
		return g.refreshExclusive(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (g *Gateway) refreshExclusive(ctx context.Context) (string, error) {
	if g.locker == nil {
		return g.RefreshAccessToken(ctx)
	}

	lock, err := g.locker.AcquireLock(ctx, locks.RefreshLockKey(refreshFlightKey), locks.RefreshLockExpiry)
	if err != nil {
		return "", errors.InternalError("failed to acquire token refresh lock", err)
	}
	defer func() {
		if releaseErr := lock.Release(ctx); releaseErr != nil {
			g.logger.WithContext(ctx).Warn("Failed to release token refresh lock", logging.Err(releaseErr))
		}
	}()

	// another instance may have refreshed while this one waited
	token, ok, err := g.store.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	if ok {
		return token, nil
	}
	return g.RefreshAccessToken(ctx)
}

// Logout forgets the session
func (g *Gateway) Logout(ctx context.Context) error {
	if err := g.store.Clear(ctx); err != nil {
		return err
	}
	g.logger.WithContext(ctx).Info("User logged out")
	return nil
}

// Status reports whether a session exists
func (g *Gateway) Status(ctx context.Context) (bool, error) {
	return g.store.IsAuthenticated(ctx)
}

func (g *Gateway) execute(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx = context.WithValue(ctx, xoauth2.HTTPClient, g.httpClient)
	if g.breaker == nil {
		return fn(ctx)
	}
	return g.breaker.Execute(ctx, func() error {
		return fn(ctx)
	})
}

func (g *Gateway) tokensFrom(token *xoauth2.Token) *Tokens {
	expiresIn := int(token.ExpiresIn)
	if expiresIn == 0 {
		if raw, ok := token.Extra("expires_in").(float64); ok {
			expiresIn = int(raw)
		} else if !token.Expiry.IsZero() {
			expiresIn = int(token.Expiry.Sub(g.now()).Round(time.Second).Seconds())
		}
	}
	return &Tokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    expiresIn,
		TokenType:    token.TokenType,
	}
}

// upstreamError converts a token endpoint failure into an upstream error
// carrying HubSpot's status and message
func upstreamError(err error, fallback string) error {
	var retrieveErr *xoauth2.RetrieveError
	if !stderrors.As(err, &retrieveErr) {
		return errors.UpstreamError(0, fallback, err)
	}

	status := 0
	if retrieveErr.Response != nil {
		status = retrieveErr.Response.StatusCode
	}
	message := commonhttp.MessageFromBody(retrieveErr.Body)
	if message == "" {
		message = retrieveErr.ErrorDescription
	}
	if message == "" {
		message = fallback
	}
	return errors.UpstreamError(status, message, err)
}

func failureMessage(err error) string {
	if appErr, ok := errors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}
