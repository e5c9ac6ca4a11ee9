package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision module.
type Metrics struct {
	// Decision outcomes: "approved" or "declined"
	DecisionOutcome *prometheus.CounterVec

	// Distribution of computed scores
	Score prometheus.Histogram

	// Overall evaluation latency including the audit write
	EvaluateLatency prometheus.Histogram
}

// New creates a Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DecisionOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loanapproval_decision_outcomes_total",
			Help: "Total loan decisions by outcome",
		}, []string{"outcome"}),

		Score: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanapproval_decision_score",
			Help:    "Computed applicant scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}),

		EvaluateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanapproval_decision_evaluate_duration_seconds",
			Help:    "Duration of full decision evaluation including the audit write",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementOutcome records a decision outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(outcome).Inc()
	}
}

// ObserveScore records a computed score.
func (m *Metrics) ObserveScore(score int) {
	if m != nil {
		m.Score.Observe(float64(score))
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
