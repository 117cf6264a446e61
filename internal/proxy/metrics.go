package proxy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains upstream forwarding metrics.
type Metrics struct {
	// errorsTotal counts upstream failures by error type.
	errorsTotal *prometheus.CounterVec

	// upstreamDuration observes the full upstream exchange duration.
	upstreamDuration prometheus.Histogram
}

// NewMetrics creates new forwarder metrics registered with
// prometheus.DefaultRegisterer.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates a new Metrics instance with a custom
// registerer.
func NewMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "gateway"
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{}

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "errors_total",
			Help:      "Total number of upstream forwarding errors",
		},
		[]string{"error_type"},
	)

	m.upstreamDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "upstream_duration_seconds",
			Help:      "Duration of upstream exchanges",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	collectors := []prometheus.Collector{
		m.errorsTotal,
		m.upstreamDuration,
	}
	for _, c := range collectors {
		_ = registerer.Register(c)
	}

	return m
}

// RecordError records an upstream forwarding error.
func (m *Metrics) RecordError(errorType string) {
	if m == nil || m.errorsTotal == nil {
		return
	}
	m.errorsTotal.WithLabelValues(errorType).Inc()
}

// ObserveUpstreamDuration observes the duration of one upstream
// exchange.
func (m *Metrics) ObserveUpstreamDuration(d time.Duration) {
	if m == nil || m.upstreamDuration == nil {
		return
	}
	m.upstreamDuration.Observe(d.Seconds())
}
