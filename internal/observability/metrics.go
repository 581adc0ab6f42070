package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GatewayCallsTotal counts gateway round trips by gateway, method and outcome.
	GatewayCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "votecast_gateway_calls_total",
		Help: "Total number of gateway calls by gateway, method and outcome",
	}, []string{"gateway", "method", "outcome"})

	// GatewayCallLatency records gateway round-trip latency.
	GatewayCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "votecast_gateway_call_latency_seconds",
		Help:    "Gateway call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"gateway", "method"})

	// OptimisticRollbacks counts optimistic mutations that had to be reverted.
	OptimisticRollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "votecast_optimistic_rollbacks_total",
		Help: "Total number of optimistic mutations rolled back after a failed call",
	}, []string{"mutation"})

	// FeedPageLoads counts feed page loads by tab kind and kind of load.
	FeedPageLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "votecast_feed_page_loads_total",
		Help: "Total number of feed page loads by tab kind and load kind",
	}, []string{"tab_kind", "load"})
)

// GatewayMetrics records call counters and latency for one gateway.
type GatewayMetrics struct {
	gateway string
}

// NewGatewayMetrics returns a new GatewayMetrics instance.
func NewGatewayMetrics(gateway string) *GatewayMetrics {
	return &GatewayMetrics{gateway: gateway}
}

// TrackCall returns a function that records the call outcome and latency when
// invoked (e.g. defer).
func (m *GatewayMetrics) TrackCall(method string) func(outcome string) {
	start := time.Now()
	return func(outcome string) {
		GatewayCallsTotal.WithLabelValues(m.gateway, method, outcome).Inc()
		GatewayCallLatency.WithLabelValues(m.gateway, method).Observe(time.Since(start).Seconds())
	}
}
