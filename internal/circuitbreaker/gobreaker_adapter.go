// Package circuitbreaker guards calls to HubSpot with Sony's gobreaker
package circuitbreaker

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"hubspot-proxy/internal/common/errors"
	"hubspot-proxy/internal/common/logging"
	"hubspot-proxy/internal/metrics"
)

// Config holds the configuration for a circuit breaker
type Config struct {
	// MaxFailures is the number of consecutive failures that opens the circuit
	MaxFailures int
	// Timeout is how long the circuit stays open before going half-open
	Timeout time.Duration
	// MaxConcurrentRequests is the number of requests allowed while half-open
	MaxConcurrentRequests int
}

// DefaultConfig returns the configuration used when none is supplied
func DefaultConfig() Config {
	return Config{
		MaxFailures:           5,
		Timeout:               60 * time.Second,
		MaxConcurrentRequests: 1,
	}
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.MaxFailures <= 0 {
		return fmt.Errorf("MaxFailures must be positive, got %d", c.MaxFailures)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("Timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("MaxConcurrentRequests must be positive, got %d", c.MaxConcurrentRequests)
	}
	return nil
}

var (
	// APIConfig guards the CRM record and association clients
	APIConfig = Config{
		MaxFailures:           5,
		Timeout:               30 * time.Second,
		MaxConcurrentRequests: 2,
	}

	// OAuthConfig guards the token endpoint used by the OAuth gateway
	OAuthConfig = Config{
		MaxFailures:           3,
		Timeout:               60 * time.Second,
		MaxConcurrentRequests: 1,
	}
)

// State represents the current state of the circuit breaker
type State int

const (
	// StateClosed lets requests through
	StateClosed State = iota
	// StateOpen rejects requests
	StateOpen
	// StateHalfOpen lets a limited number of trial requests through
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// GoBreakerAdapter wraps Sony's gobreaker
type GoBreakerAdapter struct {
	name    string
	breaker *gobreaker.CircuitBreaker
	logger  logging.Logger
}

// NewGoBreaker creates a new circuit breaker using Sony's gobreaker implementation
func NewGoBreaker(name string, config Config, logger logging.Logger) *GoBreakerAdapter {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	if err := config.Validate(); err != nil {
		logger.Warn("Invalid circuit breaker config, using defaults",
			logging.Field{Key: "error", Value: err.Error()},
			logging.Field{Key: "name", Value: name},
		)
		config = DefaultConfig()
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(config.MaxConcurrentRequests),
		Interval:    time.Minute,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.MaxFailures)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				logging.Field{Key: "breaker", Value: name},
				logging.Field{Key: "from", Value: from.String()},
				logging.Field{Key: "to", Value: to.String()},
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(fromGoBreaker(to)))
		},
		IsSuccessful: isSuccessful,
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(StateClosed))

	return &GoBreakerAdapter{
		name:    name,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// isSuccessful reports whether err says nothing about upstream health.
// Caller mistakes and 4xx answers other than 429 do not count as failures.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}

	appErr, ok := errors.As(err)
	if !ok {
		return false
	}

	switch appErr.Type {
	case errors.ErrTypeValidation, errors.ErrTypeNotFound, errors.ErrTypeAuth:
		return true
	case errors.ErrTypeUpstream:
		return appErr.StatusCode >= 400 && appErr.StatusCode < 500 && appErr.StatusCode != 429
	}

	return false
}

// Execute runs fn within the circuit breaker
func (g *GoBreakerAdapter) Execute(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})

	if err == gobreaker.ErrOpenState {
		return errors.UpstreamError(0, fmt.Sprintf("circuit breaker '%s' is open", g.name), err)
	}
	if err == gobreaker.ErrTooManyRequests {
		return errors.UpstreamError(0, fmt.Sprintf("circuit breaker '%s' has too many requests", g.name), err)
	}

	return err
}

func fromGoBreaker(state gobreaker.State) State {
	switch state {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}
