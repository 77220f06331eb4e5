package http

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"hubspot-proxy/internal/circuitbreaker"
	"hubspot-proxy/internal/common/errors"
	"hubspot-proxy/internal/common/ratelimit"
)

// DefaultTimeout bounds every outbound call
const DefaultTimeout = 15 * time.Second

// ClientConfig holds HTTP client configuration
type ClientConfig struct {
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// DefaultClientConfig returns default HTTP client configuration
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:             DefaultTimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}
}

// ClientOption is a function that modifies ClientConfig
type ClientOption func(*ClientConfig)

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// NewHTTPClient creates a new HTTP client with the given options
func NewHTTPClient(opts ...ClientOption) *http.Client {
	cfg := DefaultClientConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.IdleConnTimeout,
		},
	}
}

// NewHTTPClientWithTimeout creates a new HTTP client with the specified timeout
func NewHTTPClientWithTimeout(timeout time.Duration) *http.Client {
	return NewHTTPClient(WithTimeout(timeout))
}

// RequestOptions describes one outbound API call
type RequestOptions struct {
	Method      string
	URL         string
	Query       url.Values
	JSONBody    interface{}
	BearerToken string
}

// Response is a fully read upstream response
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	RawBody    []byte
	Duration   time.Duration
}

// Decode unmarshals the JSON body into v
func (r *Response) Decode(v interface{}) error {
	if len(r.RawBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.RawBody, v); err != nil {
		return errors.UpstreamError(r.StatusCode, "failed to decode upstream response", err)
	}
	return nil
}

// HTTPClientWrapper adds bearer auth, pacing and circuit breaking to an http.Client.
// Every call is attempted exactly once.
type HTTPClientWrapper struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.GoBreakerAdapter
	rateLimiter    ratelimit.Limiter
}

// NewHTTPClientWrapper creates a wrapped HTTP client
func NewHTTPClientWrapper(opts ...ClientOption) *HTTPClientWrapper {
	return &HTTPClientWrapper{
		client: NewHTTPClient(opts...),
	}
}

// WithCircuitBreaker adds circuit breaker integration
func (w *HTTPClientWrapper) WithCircuitBreaker(cb *circuitbreaker.GoBreakerAdapter) *HTTPClientWrapper {
	w.circuitBreaker = cb
	return w
}

// WithRateLimiter adds rate limiting
func (w *HTTPClientWrapper) WithRateLimiter(limiter ratelimit.Limiter) *HTTPClientWrapper {
	w.rateLimiter = limiter
	return w
}

// Request performs one HTTP request. A non-2xx answer returns both the
// response and an upstream error carrying its status code.
func (w *HTTPClientWrapper) Request(ctx context.Context, opts *RequestOptions) (*Response, error) {
	if w.rateLimiter != nil {
		if err := w.rateLimiter.Wait(ctx); err != nil {
			return nil, errors.RateLimitError("upstream API").WithCause(err)
		}
	}

	var bodyBytes []byte
	if opts.JSONBody != nil {
		var err error
		bodyBytes, err = json.Marshal(opts.JSONBody)
		if err != nil {
			return nil, errors.InternalError("failed to encode request body", err)
		}
	}

	if w.circuitBreaker == nil {
		return w.executeRequest(ctx, opts, bodyBytes)
	}

	var response *Response
	err := w.circuitBreaker.Execute(ctx, func() error {
		var reqErr error
		response, reqErr = w.executeRequest(ctx, opts, bodyBytes)
		return reqErr
	})
	return response, err
}

func (w *HTTPClientWrapper) executeRequest(ctx context.Context, opts *RequestOptions, bodyBytes []byte) (*Response, error) {
	start := time.Now()

	target := opts.URL
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	var bodyReader io.Reader
	if bodyBytes != nil {
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, target, bodyReader)
	if err != nil {
		return nil, errors.InternalError("failed to create request", err)
	}

	req.Header.Set("Accept", "application/json")
	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+opts.BearerToken)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, errors.TimeoutError(fmt.Sprintf("%s %s", opts.Method, opts.URL)).WithCause(err)
		}
		return nil, errors.ConnectionError("request failed", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ConnectionError("failed to read response body", err)
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Header,
		RawBody:    responseBody,
		Duration:   time.Since(start),
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return response, nil
	}

	return response, errors.UpstreamError(resp.StatusCode, ErrorMessage(responseBody, resp.StatusCode), nil)
}

// ErrorMessage extracts the message of a JSON error body, falling back to
// the status text.
func ErrorMessage(body []byte, statusCode int) string {
	if msg := MessageFromBody(body); msg != "" {
		return msg
	}
	if text := http.StatusText(statusCode); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}

// MessageFromBody returns the "message" or "error_description" field of a
// JSON error body, or "" when there is none.
func MessageFromBody(body []byte) string {
	var payload struct {
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.ErrorDescription
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
