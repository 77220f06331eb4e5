package middleware

import (
	"net/http"

	"hubspot-proxy/internal/common/logging"
	"hubspot-proxy/internal/common/utils"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an ID, reusing the caller's when it is a
// well-formed UUID. The ID is echoed in the response and attached to the
// context for loggers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !utils.IsRequestID(id) {
			id = utils.GenerateRequestID()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}
