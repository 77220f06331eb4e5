package app

import (
	"net/http"

	"hubspot-proxy/internal/common/logging"
	"hubspot-proxy/internal/ratelimit"
)

// InitializeRateLimiter returns the inbound limiter middleware, or nil when
// Redis is unavailable or limiting is disabled
func (app *App) InitializeRateLimiter() func(http.Handler) http.Handler {
	if app.RedisClient == nil || !app.Config.APIRateLimitEnabled {
		return nil
	}

	limiter := ratelimit.NewLimiter(app.RedisClient, &ratelimit.Config{
		DefaultLimit:  app.Config.APIRateLimit,
		DefaultWindow: app.Config.APIRateLimitWindow,
		Enabled:       true,
	})

	app.Logger.Info("Rate Limiting: Enabled",
		logging.Field{Key: "limit", Value: app.Config.APIRateLimit},
		logging.Field{Key: "window", Value: app.Config.APIRateLimitWindow.String()},
	)
	return limiter.HTTPMiddleware(ratelimit.IPBasedKey)
}
