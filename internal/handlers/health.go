package handlers

import (
	"context"
	"net/http"
	"time"

	"hubspot-proxy/internal/common/logging"
)

const healthCheckTimeout = 3 * time.Second

// HealthCheck reports the state of the token backends
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	}
	code := http.StatusOK

	for _, check := range h.checks {
		if err := check.checker.Health(ctx); err != nil {
			h.logger.WithContext(r.Context()).Warn("Health check failed",
				logging.Field{Key: "dependency", Value: check.name},
				logging.Err(err),
			)
			status[check.name+"_status"] = "unhealthy"
			status[check.name+"_error"] = err.Error()
			status["status"] = "unhealthy"
			code = http.StatusServiceUnavailable
			continue
		}
		status[check.name+"_status"] = "healthy"
	}

	h.sendJSON(w, code, status)
}
