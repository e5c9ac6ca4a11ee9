package audit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Write results.
const (
	ResultWritten = "written"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
	ResultDropped = "dropped"
)

// Metrics tracks audit write outcomes.
type Metrics struct {
	Writes       *prometheus.CounterVec
	WriteLatency prometheus.Histogram
	Pruned       prometheus.Counter
}

// NewMetrics registers audit metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Writes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loanapproval_audit_writes_total",
			Help: "Audit record writes by result",
		}, []string{"result"}), // result: "written", "skipped", "failed"
		WriteLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanapproval_audit_write_duration_seconds",
			Help:    "Duration of audit store writes",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		Pruned: f.NewCounter(prometheus.CounterOpts{
			Name: "loanapproval_audit_pruned_total",
			Help: "Expired audit records deleted by the pruner",
		}),
	}
}

// IncWrite records one write outcome.
func (m *Metrics) IncWrite(result string) {
	if m != nil {
		m.Writes.WithLabelValues(result).Inc()
	}
}

// ObserveWriteLatency records a store write duration.
func (m *Metrics) ObserveWriteLatency(d time.Duration) {
	if m != nil {
		m.WriteLatency.Observe(d.Seconds())
	}
}

// AddPruned counts records removed by a sweep.
func (m *Metrics) AddPruned(n int64) {
	if m != nil && n > 0 {
		m.Pruned.Add(float64(n))
	}
}
