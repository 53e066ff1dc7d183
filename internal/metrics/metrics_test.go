package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ReasoningRequest("suggest_time", "service_error")
	m.ReasoningRequest("suggest_time", "service_error")
	m.Decision("high", true)
	m.Outcome("completed")
	m.Job("scheduled")
	m.DecisionLogFailure("task_scheduling")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reasoningRequests.WithLabelValues("suggest_time", "service_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("high", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues("scheduled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logFailures.WithLabelValues("task_scheduling")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ReasoningRequest("x", "ok")
		m.Decision("normal", false)
		m.Outcome("failed")
		m.Job("fired")
		m.DecisionLogFailure("reminder_sent")
	})
}
