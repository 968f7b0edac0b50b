package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type promMetrics struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	upstreamCalls    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	mirrorHealthy    *prometheus.GaugeVec
}

// newPromMetrics builds a private registry so several collectors (one per
// test, say) never collide on the global default registerer.
func newPromMetrics() *promMetrics {
	pm := &promMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Requests served, by endpoint, envelope code and HTTP status",
		}, []string{"endpoint", "code", "status"}),
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_upstream_requests_total",
			Help: "Outbound calls to the AI API, by endpoint, mirror and outcome",
		}, []string{"endpoint", "mirror", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_upstream_duration_seconds",
			Help:    "Latency of outbound calls to the AI API",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"endpoint"}),
		mirrorHealthy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gateway_mirror_healthy",
			Help: "1 when the upstream mirror passed its last probe",
		}, []string{"mirror"}),
	}

	pm.registry.MustRegister(
		pm.requests,
		pm.upstreamCalls,
		pm.upstreamDuration,
		pm.mirrorHealthy,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return pm
}
