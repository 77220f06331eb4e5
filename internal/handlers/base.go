// Package handlers exposes the token gateway and the CRM aggregators over HTTP.
// Handlers hold no business logic: they parse the request, call one core
// operation and render its result or error as JSON.
package handlers

import (
	"context"

	"github.com/microcosm-cc/bluemonday"
	"hubspot-proxy/internal/common/logging"
	"hubspot-proxy/internal/crm"
	"hubspot-proxy/internal/oauth2"
)

// AuthService is the part of the OAuth2 gateway the auth routes need
type AuthService interface {
	AuthorizationURL() string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Tokens, error)
	Status(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
}

// Finder reads one CRM object type
type Finder[T any] interface {
	FindPage(ctx context.Context, filter crm.Filter) (*crm.PageResult[T], error)
	FindOne(ctx context.Context, id string) (*T, error)
}

// HealthChecker is a dependency reported by /health
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Handlers struct {
	auth     AuthService
	contacts Finder[crm.Contact]
	accounts Finder[crm.Account]
	checks   []namedCheck
	logger   logging.Logger
	policy   *bluemonday.Policy
}

type namedCheck struct {
	name    string
	checker HealthChecker
}

// Option configures Handlers
type Option func(*Handlers)

// WithHealthCheck adds a dependency to the /health report
func WithHealthCheck(name string, checker HealthChecker) Option {
	return func(h *Handlers) {
		if checker != nil {
			h.checks = append(h.checks, namedCheck{name: name, checker: checker})
		}
	}
}

// WithLogger overrides the global logger
func WithLogger(logger logging.Logger) Option {
	return func(h *Handlers) {
		h.logger = logger
	}
}

func New(auth AuthService, contacts Finder[crm.Contact], accounts Finder[crm.Account], opts ...Option) *Handlers {
	h := &Handlers{
		auth:     auth,
		contacts: contacts,
		accounts: accounts,
		logger:   logging.GetGlobalLogger(),
		policy:   bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
