package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rdfmap"

// Metrics contains the engine-level metrics shared by the pipeline, the
// generator and the construction engine. A nil *Metrics is valid and records nothing.
type Metrics struct {
	MatcherOutcomes *prometheus.CounterVec
	MatcherDuration *prometheus.HistogramVec
	ColumnsAligned  *prometheus.CounterVec
	RowsProcessed   *prometheus.CounterVec
	TriplesEmitted  *prometheus.CounterVec
	Violations      *prometheus.CounterVec
	Materialized    *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
}

// NewMetrics creates the engine metrics
func NewMetrics() *Metrics {
	return &Metrics{
		MatcherOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "matcher",
				Name:      "outcomes_total",
				Help:      "Matcher invocations by outcome (matched, no_match, failed, timed_out)",
			},
			[]string{"matcher", "outcome"},
		),

		MatcherDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "matcher",
				Name:      "duration_seconds",
				Help:      "Time spent in a single matcher invocation",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"matcher"},
		),

		ColumnsAligned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "alignment",
				Name:      "columns_total",
				Help:      "Columns processed by the mapping generator",
			},
			[]string{"status"},
		),

		RowsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "construct",
				Name:      "rows_total",
				Help:      "Rows processed by the construction engine",
			},
			[]string{"status"},
		),

		TriplesEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "construct",
				Name:      "triples_total",
				Help:      "Triples written to the sink",
			},
			[]string{"mode"},
		),

		Violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "construct",
				Name:      "violations_total",
				Help:      "Structural violations observed during construction",
			},
			[]string{"kind"},
		),

		Materialized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "construct",
				Name:      "materialized_total",
				Help:      "Triples added by reasoning (supertype, inverse, symmetric, transitive)",
			},
			[]string{"kind"},
		),

		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of alignment and construction runs",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"operation", "status"},
		),
	}
}

func (m *Metrics) mustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		m.MatcherOutcomes,
		m.MatcherDuration,
		m.ColumnsAligned,
		m.RowsProcessed,
		m.TriplesEmitted,
		m.Violations,
		m.Materialized,
		m.RunDuration,
	)
}

// RecordMatcher records one matcher invocation
func (m *Metrics) RecordMatcher(matcher, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.MatcherOutcomes.WithLabelValues(matcher, outcome).Inc()
	m.MatcherDuration.WithLabelValues(matcher).Observe(d.Seconds())
}

// RecordColumn records a column alignment decision
func (m *Metrics) RecordColumn(status string) {
	if m == nil {
		return
	}
	m.ColumnsAligned.WithLabelValues(status).Inc()
}

// RecordRow records a processed row
func (m *Metrics) RecordRow(status string) {
	if m == nil {
		return
	}
	m.RowsProcessed.WithLabelValues(status).Inc()
}

// AddTriples records triples written in the given construction mode
func (m *Metrics) AddTriples(mode string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.TriplesEmitted.WithLabelValues(mode).Add(float64(n))
}

// RecordViolation records a structural violation
func (m *Metrics) RecordViolation(kind string) {
	if m == nil {
		return
	}
	m.Violations.WithLabelValues(kind).Inc()
}

// RecordMaterialized records a reasoning-derived triple
func (m *Metrics) RecordMaterialized(kind string) {
	if m == nil {
		return
	}
	m.Materialized.WithLabelValues(kind).Inc()
}

// ObserveRun records the duration of an alignment or construction run
func (m *Metrics) ObserveRun(operation, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.WithLabelValues(operation, status).Observe(d.Seconds())
}
