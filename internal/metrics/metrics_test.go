package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveDecision("training", 20*time.Millisecond)
	m.ObserveDecision("training", 10*time.Millisecond)
	m.ObserveDecision("rest", 5*time.Millisecond)
	m.ObserveProblem("critical")
	m.SetRisk("injury", 35)
	m.SetRisk("injury", 60)
	m.ObserveFailure("decide")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Decisions.WithLabelValues("training")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Decisions.WithLabelValues("rest")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Problems.WithLabelValues("critical")))
	assert.Equal(t, 60.0, testutil.ToFloat64(m.RiskScore.WithLabelValues("injury")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("decide")))

	n, err := testutil.GatherAndCount(reg, "coach_decision_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	expected := `
# HELP coach_decisions_total Decision cycles completed, by chosen option type
# TYPE coach_decisions_total counter
coach_decisions_total{option_type="rest"} 1
coach_decisions_total{option_type="training"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "coach_decisions_total"))
}

func TestNewWithoutRegistry(t *testing.T) {
	m := New(nil)
	m.ObserveProblem("moderate")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Problems.WithLabelValues("moderate")))
}
