package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the dispatcher's instrumentation. Solves are labeled by
// engine and by coarse outcome (the native status would blow up
// cardinality with engine-specific strings).
type Metrics struct {
	SolvesTotal   *prometheus.CounterVec
	SolveDuration *prometheus.HistogramVec
}

// Outcome label values.
const (
	outcomeCompleted = "completed"
	outcomeTimeout   = "timeout"
	outcomeError     = "error"
)

// NewMetrics creates the dispatcher metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SolvesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "optiroute_solves_total",
			Help: "Engine invocations by engine and outcome",
		}, []string{"engine", "outcome"}),
		SolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "optiroute_solve_duration_seconds",
			Help:    "Wall-clock duration of engine invocations",
			Buckets: prometheus.DefBuckets,
		}, []string{"engine"}),
	}
	if reg != nil {
		reg.MustRegister(m.SolvesTotal, m.SolveDuration)
	}
	return m
}

func (m *Metrics) observe(engineName, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.SolvesTotal.WithLabelValues(engineName, outcome).Inc()
	m.SolveDuration.WithLabelValues(engineName).Observe(seconds)
}
