// Package metrics exposes prometheus collectors for decision cycles.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors. The zero value is not usable; call New.
type Metrics struct {
	Decisions        *prometheus.CounterVec
	DecisionDuration prometheus.Histogram
	Problems         *prometheus.CounterVec
	RiskScore        *prometheus.GaugeVec
	Failures         *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_decisions_total",
				Help: "Decision cycles completed, by chosen option type",
			},
			[]string{"option_type"},
		),
		DecisionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coach_decision_duration_seconds",
				Help:    "Wall time of a full decision cycle including storage",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),
		Problems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_problems_total",
				Help: "Problems detected during decision cycles, by severity",
			},
			[]string{"severity"},
		),
		RiskScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coach_risk_score",
				Help: "Most recent risk score per model",
			},
			[]string{"model"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_operation_failures_total",
				Help: "Service operations that returned an error",
			},
			[]string{"operation"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Decisions, m.DecisionDuration, m.Problems, m.RiskScore, m.Failures)
	}
	return m
}

// ObserveDecision records one completed cycle
func (m *Metrics) ObserveDecision(optionType string, took time.Duration) {
	m.Decisions.WithLabelValues(optionType).Inc()
	m.DecisionDuration.Observe(took.Seconds())
}

// ObserveProblem counts one detected problem
func (m *Metrics) ObserveProblem(severity string) {
	m.Problems.WithLabelValues(severity).Inc()
}

// SetRisk stores the latest score for a risk model
func (m *Metrics) SetRisk(model string, score float64) {
	m.RiskScore.WithLabelValues(model).Set(score)
}

// ObserveFailure counts a failed operation
func (m *Metrics) ObserveFailure(operation string) {
	m.Failures.WithLabelValues(operation).Inc()
}
