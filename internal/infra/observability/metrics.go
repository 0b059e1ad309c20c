package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the client.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the debug /metrics listener can serve it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	tokenRefreshes  *prometheus.CounterVec
	requestRetries  prometheus.Counter
	staleDiscards   prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// client metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crmdesk_request_duration_seconds",
				Help:    "Duration of backend calls by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crmdesk_requests_total",
				Help: "Total backend calls by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		tokenRefreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crmdesk_token_refresh_total",
				Help: "Token refresh attempts by outcome.",
			},
			[]string{"outcome"},
		),
		requestRetries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "crmdesk_request_retries_total",
				Help: "Requests re-issued after a successful token refresh.",
			},
		),
		staleDiscards: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "crmdesk_list_loads_discarded_total",
				Help: "List responses discarded because a newer load superseded them.",
			},
		),
	}
}

// RecordRequestDuration records the duration of a backend call.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRequest counts a backend call outcome ("success" or "error").
func (m *Metrics) IncrRequest(operation, outcome string) {
	m.requestsTotal.WithLabelValues(operation, outcome).Inc()
}

// IncrTokenRefresh counts a refresh attempt ("success" or "failure").
func (m *Metrics) IncrTokenRefresh(outcome string) {
	m.tokenRefreshes.WithLabelValues(outcome).Inc()
}

// IncrRequestRetry counts a request retried after refresh.
func (m *Metrics) IncrRequestRetry() {
	m.requestRetries.Inc()
}

// IncrStaleListDiscard counts a discarded stale list response.
func (m *Metrics) IncrStaleListDiscard() {
	m.staleDiscards.Inc()
}
