package handlers

import (
	"encoding/json"
	"html"
	"net/http"
	"net/url"
	"strings"

	"hubspot-proxy/internal/common/errors"
	"hubspot-proxy/internal/common/logging"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func (h *Handlers) sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", err)
	}
}

// sendJSONError logs err and renders it with the status its type maps to
func (h *Handlers) sendJSONError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	status := HTTPStatus(err)
	message := "Internal server error"
	if appErr, ok := errors.As(err); ok && (status < http.StatusInternalServerError || isUpstream(err)) {
		message = appErr.Message
	}

	logger := h.logger.WithContext(r.Context())
	fields := []logging.Field{{Key: "status", Value: status}, {Key: "path", Value: r.URL.Path}}
	if status >= http.StatusInternalServerError {
		logger.Error(logMsg, err, fields...)
	} else {
		logger.Warn(logMsg, append(fields, logging.Err(err))...)
	}

	h.sendJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// HTTPStatus maps an error to the status code the API answers with
func HTTPStatus(err error) int {
	switch errors.GetType(err) {
	case errors.ErrTypeValidation:
		return http.StatusBadRequest
	case errors.ErrTypeAuth:
		return http.StatusUnauthorized
	case errors.ErrTypeNotFound:
		return http.StatusNotFound
	case errors.ErrTypeRateLimit:
		return http.StatusTooManyRequests
	case errors.ErrTypeConnection:
		return http.StatusBadGateway
	case errors.ErrTypeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrTypeUpstream:
		if status := errors.StatusCode(err); status >= 400 && status <= 599 {
			return status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isUpstream(err error) bool {
	switch errors.GetType(err) {
	case errors.ErrTypeUpstream, errors.ErrTypeConnection, errors.ErrTypeTimeout:
		return true
	}
	return false
}

// sanitize strips markup from one inbound value. Entities are decoded
// before the policy runs so encoded tags are stripped as well.
func (h *Handlers) sanitize(value string) string {
	return strings.TrimSpace(h.policy.Sanitize(html.UnescapeString(value)))
}

// sanitizeQuery returns a copy of query with every value stripped of markup
func (h *Handlers) sanitizeQuery(query url.Values) url.Values {
	clean := make(url.Values, len(query))
	for key, values := range query {
		for _, v := range values {
			clean.Add(key, h.sanitize(v))
		}
	}
	return clean
}
