// Package ratelimit throttles inbound API calls with a sliding window kept in
// Redis, so every proxy instance shares one budget per client.
package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hubspot-proxy/internal/common/errors"
	"hubspot-proxy/internal/common/logging"
)

// Counter records hits in a sliding window
type Counter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error)
}

type Limiter struct {
	counter Counter
	config  *Config
	logger  logging.Logger
}

type Config struct {
	DefaultLimit  int           `json:"default_limit"`
	DefaultWindow time.Duration `json:"default_window"`
	Enabled       bool          `json:"enabled"`
}

type RateLimit struct {
	Limit     int           `json:"limit"`
	Window    time.Duration `json:"window"`
	Remaining int           `json:"remaining"`
	ResetTime time.Time     `json:"reset_time"`
	Allowed   bool          `json:"allowed"`
}

func NewLimiter(counter Counter, config *Config) *Limiter {
	if config == nil {
		config = &Config{
			DefaultLimit:  100,
			DefaultWindow: time.Minute,
			Enabled:       true,
		}
	}

	return &Limiter{
		counter: counter,
		config:  config,
		logger:  logging.GetGlobalLogger(),
	}
}

func (l *Limiter) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (*RateLimit, error) {
	if !l.config.Enabled || l.counter == nil {
		return &RateLimit{
			Limit:     limit,
			Window:    window,
			Remaining: limit,
			ResetTime: time.Now().Add(window),
			Allowed:   true,
		}, nil
	}

	allowed, current, err := l.counter.CheckRateLimit(ctx, fmt.Sprintf("rate_limit:%s", key), limit, window)
	if err != nil {
		return nil, errors.InternalError("failed to check rate limit", err)
	}

	// current excludes this hit
	remaining := limit - current - 1
	if remaining < 0 {
		remaining = 0
	}

	return &RateLimit{
		Limit:     limit,
		Window:    window,
		Remaining: remaining,
		ResetTime: time.Now().Add(window),
		Allowed:   allowed,
	}, nil
}

func (l *Limiter) CheckDefaultLimit(ctx context.Context, key string) (*RateLimit, error) {
	return l.CheckLimit(ctx, key, l.config.DefaultLimit, l.config.DefaultWindow)
}

// HTTPMiddleware rejects requests over the default limit with a JSON 429.
// Requests are let through when Redis cannot be reached.
func (l *Limiter) HTTPMiddleware(keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			rateLimit, err := l.CheckDefaultLimit(r.Context(), key)
			if err != nil {
				l.logger.WithContext(r.Context()).Warn("Rate limit check failed, allowing request",
					logging.Field{Key: "key", Value: key},
					logging.Err(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rateLimit.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(rateLimit.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(rateLimit.ResetTime.Unix(), 10))

			if !rateLimit.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(rateLimit.Window.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"statusCode": http.StatusTooManyRequests,
					"error":      http.StatusText(http.StatusTooManyRequests),
					"message":    "Rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IPBasedKey keys on the first forwarded address, falling back to the peer
func IPBasedKey(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if i := strings.IndexByte(ip, ','); i >= 0 {
		ip = ip[:i]
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		ip = r.Header.Get("X-Real-IP")
	}
	if ip == "" {
		ip = r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
	}
	return fmt.Sprintf("ip:%s", ip)
}
