// Package ratelimit paces outbound calls to HubSpot with a token bucket
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Config represents rate limiter configuration
type Config struct {
	RequestsPerSecond float64 `json:"requests_per_second"`
	BurstSize         int     `json:"burst_size"`
	Enabled           bool    `json:"enabled"`
}

// Validate validates the rate limiter configuration
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive, got %v", c.RequestsPerSecond)
	}
	if c.BurstSize <= 0 {
		return fmt.Errorf("burst size must be positive, got %d", c.BurstSize)
	}
	return nil
}

// Limiter paces callers
type Limiter interface {
	// Wait blocks until a request may proceed or ctx is done
	Wait(ctx context.Context) error
}

type localLimiter struct {
	enabled bool
	limiter *rate.Limiter
}

// NewLocalLimiter creates an in-process limiter backed by golang.org/x/time/rate
func NewLocalLimiter(config Config) (Limiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &localLimiter{
		enabled: config.Enabled,
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.BurstSize),
	}, nil
}

func (l *localLimiter) Wait(ctx context.Context) error {
	if !l.enabled {
		return nil
	}
	return l.limiter.Wait(ctx)
}
