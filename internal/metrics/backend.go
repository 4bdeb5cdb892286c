package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		backendCallsTotal,
		backendCallLatency,
		backendUp,
	)
}

var (
	backendCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splitleh_backend_calls_total",
			Help: "Backend API calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	backendCallLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "splitleh_backend_call_duration_seconds",
			Help:    "Backend API call latency by operation.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	backendUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "splitleh_backend_up",
			Help: "1 when the last backend health probe succeeded, 0 otherwise.",
		},
	)
)

// ObserveBackendCall records one backend call.
func ObserveBackendCall(operation, outcome string, took time.Duration) {
	backendCallsTotal.WithLabelValues(operation, outcome).Inc()
	backendCallLatency.WithLabelValues(operation).Observe(took.Seconds())
}

// SetBackendUp records the result of a health probe.
func SetBackendUp(up bool) {
	if up {
		backendUp.Set(1)
		return
	}
	backendUp.Set(0)
}
