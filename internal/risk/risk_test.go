package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coach/internal/models"
)

func f(v float64) *float64 { return &v }

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{0, Low},
		{24.9, Low},
		{25, Moderate},
		{50, High},
		{70, Critical},
		{100, Critical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.score), "score %v", tt.score)
	}
}

func TestCalculateInjury(t *testing.T) {
	tests := []struct {
		name      string
		in        InjuryInputs
		wantScore float64
		wantLevel Level
	}{
		{"no data", InjuryInputs{}, 0, Low},
		{"balanced", InjuryInputs{ACWR: f(1.0), Monotony: f(1.5), SleepAverage: f(8), Stress: f(5)}, 0, Low},
		{"spike", InjuryInputs{ACWR: f(1.6)}, 35, Moderate},
		{"undertrained", InjuryInputs{ACWR: f(0.6)}, 10, Low},
		{"everything", InjuryInputs{ACWR: f(1.7), Monotony: f(3), SleepAverage: f(5), Stress: f(9), PriorInjuries: 4}, 100, Critical},
		{"injuries capped", InjuryInputs{PriorInjuries: 10}, 15, Low},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateInjury(tt.in)
			require.NoError(t, err)
			assert.Equal(t, "injury", got.Model)
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.Equal(t, tt.wantLevel, got.Level)
		})
	}
}

func TestCalculateInjuryReasonsAndActions(t *testing.T) {
	got, err := CalculateInjury(InjuryInputs{ACWR: f(1.6), SleepAverage: f(5.5)})
	require.NoError(t, err)

	assert.Len(t, got.Reasons, 2)
	assert.Contains(t, got.Reasons[0], "1.60")
	require.NotEmpty(t, got.Actions)
	assert.Equal(t, PriorityImmediate, got.Actions[0].Priority)

	var hasDeload bool
	for _, a := range got.Actions {
		if a.Action == "immediate_deload" {
			hasDeload = true
		}
	}
	assert.True(t, hasDeload, "score %v should trigger an immediate deload", got.Score)
}

func TestCalculateInjuryMonotonicInACWR(t *testing.T) {
	prev := -1.0
	for acwr := 1.0; acwr <= 1.6001; acwr += 0.05 {
		got, err := CalculateInjury(InjuryInputs{ACWR: f(acwr), Monotony: f(2.2), SleepAverage: f(6.5)})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Score, prev, "acwr %.2f", acwr)
		prev = got.Score
	}
}

func TestNegativeInputs(t *testing.T) {
	_, err := CalculateInjury(InjuryInputs{PriorInjuries: -1})
	assert.ErrorIs(t, err, ErrNegativeInput)

	_, err = CalculateInjury(InjuryInputs{ACWR: f(-0.2)})
	assert.ErrorIs(t, err, ErrNegativeInput)

	_, err = CalculatePlateau(PlateauInputs{WeeksOnProgram: -3})
	assert.ErrorIs(t, err, ErrNegativeInput)

	_, err = CalculateBurnout(BurnoutInputs{ConsecutiveDays: -1})
	assert.ErrorIs(t, err, ErrNegativeInput)

	_, err = Run(models.Aggregates{WeeksSinceDeload: -1}, "")
	assert.ErrorIs(t, err, ErrNegativeInput)
}

func TestCalculatePlateau(t *testing.T) {
	got, err := CalculatePlateau(PlateauInputs{WeeksWithoutProgress: 7, WeeksOnProgram: 13, VarietyRatio: f(0.2), WeeksSinceDeload: 11})
	require.NoError(t, err)
	assert.InDelta(t, 100, got.Score, 1e-9)
	assert.Equal(t, Critical, got.Level)
	assert.Len(t, got.Reasons, 4)

	got, err = CalculatePlateau(PlateauInputs{WeeksWithoutProgress: 3, VarietyRatio: f(0.45)})
	require.NoError(t, err)
	assert.InDelta(t, 30, got.Score, 1e-9)
	assert.Equal(t, Moderate, got.Level)
}

func TestCalculateBurnout(t *testing.T) {
	got, err := CalculateBurnout(BurnoutInputs{AdherenceTrend: -0.5, AverageReadiness: f(45), AverageRPE: f(9), ConsecutiveDays: 12})
	require.NoError(t, err)
	assert.Equal(t, Critical, got.Level)
	assert.Equal(t, PriorityImmediate, got.Actions[0].Priority)

	got, err = CalculateBurnout(BurnoutInputs{AdherenceTrend: 0.2, AverageReadiness: f(80), AverageRPE: f(6), ConsecutiveDays: 2})
	require.NoError(t, err)
	assert.Zero(t, got.Score)
	assert.Empty(t, got.Reasons)
	assert.NotNil(t, got.Actions)
}

func TestRunAndAlerts(t *testing.T) {
	agg := models.Aggregates{
		ACWR:             f(1.7),
		Monotony:         f(2.8),
		SleepAverage:     f(5.5),
		ConsecutiveDays:  11,
		AverageReadiness: f(48),
		AdherenceTrend:   -0.3,
	}
	report, err := Run(agg, "very_high")
	require.NoError(t, err)

	alerts := report.Alerts()
	require.Len(t, alerts, 2)
	assert.GreaterOrEqual(t, alerts[0].Score, alerts[1].Score)
	assert.Equal(t, Low, report.Plateau.Level)

	empty, err := Run(models.Aggregates{}, "")
	require.NoError(t, err)
	assert.Empty(t, empty.Alerts())
}

func TestStressScore(t *testing.T) {
	assert.Equal(t, 3.0, StressScore("low"))
	assert.Equal(t, 5.0, StressScore(""))
	assert.Equal(t, 7.5, StressScore("HIGH"))
	assert.Equal(t, 9.0, StressScore("very_high"))
}
