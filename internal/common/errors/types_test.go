package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		want     string
	}{
		{
			name: "basic error",
			appError: &AppError{
				Type:    ErrTypeValidation,
				Message: "Authorization code required",
			},
			want: "validation: Authorization code required",
		},
		{
			name: "error with code",
			appError: &AppError{
				Type:    ErrTypeAuth,
				Message: "token refresh failed",
				Code:    "invalid_grant",
			},
			want: "authentication: token refresh failed: code=invalid_grant",
		},
		{
			name: "upstream error with status and cause",
			appError: &AppError{
				Type:       ErrTypeUpstream,
				Message:    "search failed",
				StatusCode: 502,
				Cause:      errors.New("bad gateway"),
			},
			want: "upstream: search failed: status=502: cause=bad gateway",
		},
		{
			name: "error with context",
			appError: &AppError{
				Type:    ErrTypeNotFound,
				Message: "Contact 123 not found",
				Context: map[string]interface{}{
					"object_type": "contacts",
				},
			},
			want: "not_found: Contact 123 not found: context={object_type=contacts}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appError.Error()
			if got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Builders(t *testing.T) {
	cause := errors.New("refresh rejected")
	appError := AuthError("Token refresh failed").
		WithCode("invalid_grant").
		WithCause(cause).
		WithContext("grant_type", "refresh_token")

	if appError.Code != "invalid_grant" {
		t.Errorf("Code = %v, want invalid_grant", appError.Code)
	}
	if appError.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", appError.Unwrap(), cause)
	}
	if appError.Context["grant_type"] != "refresh_token" {
		t.Errorf("Context[grant_type] = %v, want refresh_token", appError.Context["grant_type"])
	}
}

func TestConstructors(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		name    string
		err     *AppError
		errType ErrorType
		message string
	}{
		{"validation", ValidationError("Invalid contact ID format"), ErrTypeValidation, "Invalid contact ID format"},
		{"auth", AuthError("No refresh token"), ErrTypeAuth, "No refresh token"},
		{"not found", NotFoundError("Contact 123"), ErrTypeNotFound, "Contact 123 not found"},
		{"upstream", UpstreamError(400, "bad filter", nil), ErrTypeUpstream, "bad filter"},
		{"connection", ConnectionError("request failed", cause), ErrTypeConnection, "request failed"},
		{"internal", InternalError("failed to decode", cause), ErrTypeInternal, "failed to decode"},
		{"timeout", TimeoutError("GET /crm/v3/objects/contacts"), ErrTypeTimeout, "timeout during GET /crm/v3/objects/contacts"},
		{"rate limit", RateLimitError("hubspot"), ErrTypeRateLimit, "rate limit exceeded for hubspot"},
		{"config", ConfigError("HUBSPOT_CLIENT_ID is required"), ErrTypeConfig, "HUBSPOT_CLIENT_ID is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.errType {
				t.Errorf("Type = %v, want %v", tt.err.Type, tt.errType)
			}
			if tt.err.Message != tt.message {
				t.Errorf("Message = %v, want %v", tt.err.Message, tt.message)
			}
		})
	}
}

func TestIsType(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{"matching type", AuthError("test"), ErrTypeAuth, true},
		{"non-matching type", AuthError("test"), ErrTypeNotFound, false},
		{"wrapped app error", fmt.Errorf("find page: %w", NotFoundError("Contact 1")), ErrTypeNotFound, true},
		{"non-app error", errors.New("regular error"), ErrTypeAuth, false},
		{"nil error", nil, ErrTypeAuth, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsType(tt.err, tt.errType)
			if got != tt.want {
				t.Errorf("IsType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"app error", UpstreamError(500, "boom", nil), ErrTypeUpstream},
		{"regular error", errors.New("regular error"), ErrTypeInternal},
		{"nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetType(tt.err)
			if got != tt.want {
				t.Errorf("GetType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	if got := StatusCode(UpstreamError(429, "slow down", nil)); got != 429 {
		t.Errorf("StatusCode() = %d, want 429", got)
	}
	if got := StatusCode(fmt.Errorf("wrapped: %w", UpstreamError(503, "down", nil))); got != 503 {
		t.Errorf("StatusCode() wrapped = %d, want 503", got)
	}
	if got := StatusCode(errors.New("plain")); got != 0 {
		t.Errorf("StatusCode() plain = %d, want 0", got)
	}
}

func TestErrorChaining(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := UpstreamError(0, "wrapped error", originalErr)

	if !errors.Is(wrappedErr, originalErr) {
		t.Error("errors.Is should work with wrapped AppError")
	}

	var appErr *AppError
	if !errors.As(wrappedErr, &appErr) {
		t.Error("errors.As should work with AppError")
	}

	if appErr.Type != ErrTypeUpstream {
		t.Errorf("Unwrapped AppError type = %v, want %v", appErr.Type, ErrTypeUpstream)
	}
}
