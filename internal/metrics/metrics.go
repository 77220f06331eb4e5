// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hubspot_proxy"

var (
	// UpstreamRequests counts CRM API calls by operation and outcome
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "CRM API calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	// UpstreamDuration observes CRM API latency by operation
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "CRM API call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// AssociationFailures counts association lookups reported as AssociationErrors
	AssociationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "association_failures_total",
		Help:      "Association lookups that failed and were reported per record.",
	}, []string{"object_type", "association_type"})

	// TokenRefreshes counts refresh-token grants by outcome
	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "OAuth2 refresh attempts by outcome.",
	}, []string{"outcome"})

	// TokenExchanges counts authorization-code exchanges by outcome
	TokenExchanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_exchanges_total",
		Help:      "OAuth2 authorization code exchanges by outcome.",
	}, []string{"outcome"})

	// CircuitBreakerState reports each breaker's state: 0 closed, 1 open, 2 half-open
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state by breaker name (0 closed, 1 open, 2 half-open).",
	}, []string{"breaker"})
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Outcome maps an error to its outcome label
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
