package passcheck

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors of a checker.
type Metrics struct {
	files       *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	warnings    *prometheus.CounterVec
	matches     *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics creates the checker collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passcheck_files_total",
				Help: "Documents checked, by outcome.",
			},
			[]string{"result"},
		),
		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passcheck_diagnostics_total",
				Help: "Diagnostics recorded, by code.",
			},
			[]string{"code"},
		),
		warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passcheck_warnings_total",
				Help: "Operator warnings emitted, by code and severity.",
			},
			[]string{"code", "severity"},
		),
		matches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passcheck_matches_total",
				Help: "Submission log lookups, by result.",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "passcheck_check_duration_seconds",
				Help:    "Time spent checking one document.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	for _, c := range []prometheus.Collector{m.files, m.diagnostics, m.warnings, m.matches, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) diagnostic(code string) {
	if m == nil {
		return
	}
	m.diagnostics.WithLabelValues(code).Inc()
}

func (m *Metrics) warning(w Warning) {
	if m == nil {
		return
	}
	m.warnings.WithLabelValues(w.Code, w.Severity.String()).Inc()
}

func (m *Metrics) matched(ev *Event) {
	if m == nil {
		return
	}
	result := "exact"
	if ev.IsSentinel() {
		result = "none"
	}
	m.matches.WithLabelValues(result).Inc()
}

func (m *Metrics) checked(rec *Record, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "clean"
	if !rec.Clean() {
		result = "flagged"
	}
	m.files.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) failed() {
	if m == nil {
		return
	}
	m.files.WithLabelValues("failed").Inc()
}
