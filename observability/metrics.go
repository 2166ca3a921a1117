// Package observability carries the prometheus instrumentation shared across
// the client.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics records contract-call gateway activity.
type GatewayMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	gatewayOnce sync.Once
	gatewayReg  *GatewayMetrics
)

// Gateway returns the lazily-initialised gateway metrics registry.
func Gateway() *GatewayMetrics {
	gatewayOnce.Do(func() {
		gatewayReg = &GatewayMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "oraclemarket",
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Total contract-call gateway requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "oraclemarket",
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for contract-call gateway requests.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
		}
		prometheus.MustRegister(gatewayReg.requests, gatewayReg.latency)
	})
	return gatewayReg
}

// Observe records one gateway call.
func (m *GatewayMetrics) Observe(method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.latency.WithLabelValues(method).Observe(elapsed.Seconds())
}
