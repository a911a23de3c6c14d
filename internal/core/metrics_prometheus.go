package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetricsRecorder exports service operation counters and latency
// histograms through a prometheus registerer.
type PrometheusMetricsRecorder struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewPrometheusMetricsRecorder registers the service collectors against the
// given registerer. A nil registerer uses the default registry; tests should
// pass a fresh prometheus.NewRegistry to avoid cross-test collisions.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusMetricsRecorder{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fleetcore",
				Subsystem: "service",
				Name:      "operations_total",
				Help:      "Service operations by outcome.",
			},
			[]string{"operation", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fleetcore",
				Subsystem: "service",
				Name:      "operation_duration_seconds",
				Help:      "Service operation latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.duration.WithLabelValues(operation).Observe(duration.Seconds())
}
