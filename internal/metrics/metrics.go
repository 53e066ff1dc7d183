package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters shared by the decision components.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reasoningRequests *prometheus.CounterVec
	decisions         *prometheus.CounterVec
	outcomes          *prometheus.CounterVec
	jobs              *prometheus.CounterVec
	logFailures       *prometheus.CounterVec
}

// New creates the counters and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reasoningRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reminder_reasoning_requests_total",
				Help: "Reasoning service calls by operation and result",
			},
			[]string{"operation", "result"},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reminder_decisions_total",
				Help: "Scheduling decisions by priority and reschedule flag",
			},
			[]string{"priority", "rescheduled"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reminder_outcomes_total",
				Help: "Reported task outcomes",
			},
			[]string{"outcome"},
		),
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reminder_jobs_total",
				Help: "Reminder job lifecycle events",
			},
			[]string{"event"},
		),
		logFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reminder_decision_log_failures_total",
				Help: "Decision log entries that could not be written",
			},
			[]string{"decision_type"},
		),
	}
	reg.MustRegister(m.reasoningRequests, m.decisions, m.outcomes, m.jobs, m.logFailures)
	return m
}

// ReasoningRequest counts one reasoning call
func (m *Metrics) ReasoningRequest(operation, result string) {
	if m == nil {
		return
	}
	m.reasoningRequests.WithLabelValues(operation, result).Inc()
}

// Decision counts one scheduling decision
func (m *Metrics) Decision(priority string, rescheduled bool) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(priority, strconv.FormatBool(rescheduled)).Inc()
}

// Outcome counts one reported outcome
func (m *Metrics) Outcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

// Job counts a reminder job event (scheduled, fired, canceled, failed)
func (m *Metrics) Job(event string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(event).Inc()
}

// DecisionLogFailure counts one audit entry that was dropped
func (m *Metrics) DecisionLogFailure(decisionType string) {
	if m == nil {
		return
	}
	m.logFailures.WithLabelValues(decisionType).Inc()
}
