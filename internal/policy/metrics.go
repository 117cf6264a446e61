package policy

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Classification decision labels.
const (
	decisionPublic    = "public"
	decisionProtected = "protected"
)

// Metrics contains path-policy classification metrics.
type Metrics struct {
	// decisionTotal counts classification decisions by outcome.
	decisionTotal *prometheus.CounterVec

	// gateMatchTotal counts role-gate matches by gate prefix.
	gateMatchTotal *prometheus.CounterVec

	// registrySize tracks the number of entries per registry.
	registrySize *prometheus.GaugeVec
}

// NewMetrics creates new path-policy metrics registered with
// prometheus.DefaultRegisterer.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates a new Metrics instance with a custom
// registerer so the metrics appear on the gateway's /metrics endpoint.
func NewMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "gateway"
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{}

	m.decisionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "policy",
			Name:      "decision_total",
			Help:      "Total number of path classification decisions",
		},
		[]string{"decision"},
	)

	m.gateMatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "policy",
			Name:      "gate_match_total",
			Help:      "Total number of role gate matches",
		},
		[]string{"gate"},
	)

	m.registrySize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "policy",
			Name:      "registry_size",
			Help:      "Number of entries in each policy registry",
		},
		[]string{"registry"},
	)

	collectors := []prometheus.Collector{
		m.decisionTotal,
		m.gateMatchTotal,
		m.registrySize,
	}
	for _, c := range collectors {
		_ = registerer.Register(c)
	}

	return m
}

// Init pre-initializes label combinations with zero values so the
// metrics appear in /metrics output immediately after startup.
func (m *Metrics) Init() {
	if m == nil {
		return
	}
	for _, decision := range []string{decisionPublic, decisionProtected} {
		m.decisionTotal.WithLabelValues(decision)
	}
}

// RecordDecision records a classification decision.
func (m *Metrics) RecordDecision(decision string) {
	if m == nil || m.decisionTotal == nil {
		return
	}
	m.decisionTotal.WithLabelValues(decision).Inc()
}

// RecordGateMatch records a role gate match.
func (m *Metrics) RecordGateMatch(gate string) {
	if m == nil || m.gateMatchTotal == nil {
		return
	}
	m.gateMatchTotal.WithLabelValues(gate).Inc()
}

// SetRegistrySizes sets the registry size gauges.
func (m *Metrics) SetRegistrySizes(public, gates int) {
	if m == nil || m.registrySize == nil {
		return
	}
	m.registrySize.WithLabelValues("public").Set(float64(public))
	m.registrySize.WithLabelValues("gates").Set(float64(gates))
}
