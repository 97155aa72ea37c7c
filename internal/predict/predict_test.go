package predict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coach/internal/models"
	"coach/internal/recovery"
)

var testNow = time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)

func freshState() *recovery.State {
	return recovery.ComputeWithFactors(nil, recovery.NeutralFactors(), testNow)
}

func squatState() *recovery.State {
	history := []models.WorkoutRecord{{
		PerformedAt: testNow.Add(-20 * time.Hour),
		Exercises:   []models.Exercise{{Name: "Back Squat", Sets: 5}},
		Intensity:   models.Maximal,
	}}
	return recovery.ComputeWithFactors(history, recovery.NeutralFactors(), testNow)
}

func TestComputeImpact(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   Impact
	}{
		{"high normal", Params{Intensity: IntensityHigh, Volume: VolumeNormal}, Impact{35, 0.7, 0.7}},
		{"moderate reduced", Params{Intensity: IntensityModerate, Volume: VolumeReduced}, Impact{22 * 0.7, 0.45 * 0.7, 0.5 * 0.7}},
		{"rest", Params{Intensity: IntensityVeryLow, Volume: VolumeNone}, Impact{}},
		{"eccentric", Params{Intensity: IntensityLight, Volume: VolumeNormal, Methods: []string{"eccentric"}}, Impact{12, 0.35, 0.3}},
		{"drop sets", Params{Intensity: IntensityModerate, Volume: VolumeNormal, Methods: []string{"drop_set"}}, Impact{22, 0.45 * 1.15, 0.65}},
		{"unknown levels", Params{}, Impact{22, 0.45, 0.5}},
		{"damage capped", Params{Intensity: IntensityHigh, Volume: VolumeNormal, Methods: []string{"eccentric", "rest_pause"}}, Impact{35, 1, 0.91}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeImpact(tt.params)
			assert.InDelta(t, tt.want.CNSDepletion, got.CNSDepletion, 1e-9)
			assert.InDelta(t, tt.want.MuscularDamage, got.MuscularDamage, 1e-9)
			assert.InDelta(t, tt.want.MetabolicStress, got.MetabolicStress, 1e-9)
		})
	}
}

func TestPredictPostWorkoutHighSession(t *testing.T) {
	pred := PredictPostWorkout(freshState(), Params{Intensity: IntensityHigh, Volume: VolumeNormal}, nil)

	require.Len(t, pred.Timeline, len(Horizons))
	assert.InDelta(t, 65, pred.At(0).CNS, 1e-9)
	assert.InDelta(t, 65+25*6.0/24, pred.At(6).CNS, 1e-9)
	assert.InDelta(t, 90, pred.At(24).CNS, 1e-9)
	assert.Equal(t, 100.0, pred.At(48).CNS)
	assert.InDelta(t, 0.6*65+0.4*30, pred.At(0).Readiness, 1e-9)

	for i := 1; i < len(pred.Timeline); i++ {
		assert.GreaterOrEqual(t, pred.Timeline[i].Readiness, pred.Timeline[i-1].Readiness)
	}

	assert.Equal(t, SeverityModerate, pred.DOMS.Severity)
	assert.Equal(t, 36.0, pred.DOMS.PeakHours)
	assert.InDelta(t, 96*1.35, pred.MuscleRecoveryHours[recovery.Quadriceps], 1e-9)
	assert.Equal(t, BaseConfidence, pred.Confidence)
}

func TestPredictPostWorkoutRest(t *testing.T) {
	state := squatState()
	pred := PredictPostWorkout(state, Params{Intensity: IntensityVeryLow, Volume: VolumeNone}, nil)

	assert.Equal(t, SeverityNone, pred.DOMS.Severity)
	assert.InDelta(t, state.CNS.Percentage, pred.At(0).CNS, 1e-9)
	assert.Greater(t, pred.At(24).Readiness, pred.At(0).Readiness)
}

func TestImmediateCNSFloor(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		want    float64
	}{
		{"drop stops at floor", 30, MinImmediateCNS},
		{"above floor after drop", 80, 45},
		{"already below floor is not raised", 12, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := freshState()
			state.CNS.Percentage = tt.current
			pred := PredictPostWorkout(state, Params{Intensity: IntensityHigh, Volume: VolumeNormal}, nil)
			assert.InDelta(t, tt.want, pred.At(0).CNS, 1e-9)
		})
	}
}

func TestPredictPostWorkoutDetailedSession(t *testing.T) {
	state := squatState()
	session := &Session{Exercises: []models.Exercise{{Name: "Barbell Curl", Sets: 4}}}
	pred := PredictPostWorkout(state, Params{Intensity: IntensityModerate, Volume: VolumeNormal}, session)

	assert.InDelta(t, BaseConfidence+0.15, pred.Confidence, 1e-9)
	assert.Contains(t, pred.MuscleRecoveryHours, recovery.Biceps)
	assert.NotContains(t, pred.MuscleRecoveryHours, recovery.Quadriceps)

	// Untargeted quadriceps keep recovering on their own slope
	quads := state.Muscle(recovery.Quadriceps)
	next := pred.StateAfter(24).Muscle(recovery.Quadriceps)
	assert.InDelta(t, quads.Percentage+24*(100-quads.Percentage)/quads.HoursUntilRecovered, next.Percentage, 1e-6)

	// Targeted biceps lose fresh capacity
	biceps := pred.StateAfter(0).Muscle(recovery.Biceps)
	assert.InDelta(t, 55, biceps.Percentage, 1e-9)
	assert.Equal(t, recovery.Fatigued, biceps.Status)
}

func TestDOMSSeverity(t *testing.T) {
	assert.Equal(t, SeverityLight, doms(0.3, 1).Severity)
	assert.Equal(t, SeverityModerate, doms(0.5, 1).Severity)
	assert.Equal(t, SeveritySevere, doms(0.8, 1).Severity)
	assert.Equal(t, SeverityNone, doms(0, 1).Severity)
	assert.InDelta(t, 48*1.3, doms(0.8, 1.3).PeakHours, 1e-9)
}

func TestConfidence(t *testing.T) {
	mature := &models.LearningProfile{SampleSize: models.MinLearningSamples}
	tests := []struct {
		name     string
		src      Sources
		detailed bool
		want     float64
	}{
		{"floor", Sources{}, false, 0.4},
		{"check-in", Sources{CheckIn: true}, false, 0.55},
		{"short history", Sources{HistoryCount: 2}, false, 0.4},
		{"history", Sources{HistoryCount: 3}, false, 0.5},
		{"immature learning", Sources{Learning: &models.LearningProfile{SampleSize: 2}}, false, 0.4},
		{"everything", Sources{CheckIn: true, HistoryCount: 10, Learning: mature}, true, MaxConfidence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Confidence(tt.src, tt.detailed), 1e-9)
		})
	}
}

func TestPredictResult(t *testing.T) {
	res := Predict(Input{State: freshState(), Sources: Sources{CheckIn: true}},
		Params{Intensity: IntensityHigh, Volume: VolumeNormal, Methods: []string{"eccentric"}}, nil)

	require.NotNil(t, res.Prediction)
	assert.Equal(t, SeveritySevere, res.Prediction.DOMS.Severity)
	assert.NotEmpty(t, res.Recommendations)
	assert.Contains(t, res.Summary, "high intensity")
	assert.InDelta(t, 0.55, res.Prediction.Confidence, 1e-9)
}

func TestParamsFromOption(t *testing.T) {
	tests := []struct {
		intensity, volume float64
		wantI             IntensityLevel
		wantV             VolumeLevel
	}{
		{0.9, 0.85, IntensityHigh, VolumeNormal},
		{0.65, 0.6, IntensityModerate, VolumeReduced},
		{0.4, 0.3, IntensityLight, VolumeMinimal},
		{0, 0, IntensityVeryLow, VolumeNone},
		{0.2, 0.1, IntensityVeryLow, VolumeMinimal},
	}
	for _, tt := range tests {
		got := ParamsFromOption(tt.intensity, tt.volume, nil)
		assert.Equal(t, tt.wantI, got.Intensity, "intensity %v", tt.intensity)
		assert.Equal(t, tt.wantV, got.Volume, "volume %v", tt.volume)
	}
}

func TestCompareWhatIf(t *testing.T) {
	in := Input{State: freshState()}
	heavy := Params{Intensity: IntensityHigh, Volume: VolumeNormal}
	light := Params{Intensity: IntensityLight, Volume: VolumeReduced}

	w := CompareWhatIf(in, heavy, light, nil)
	assert.Equal(t, "B", w.Recommended)
	assert.Greater(t, w.ScoreB, w.ScoreA)
	assert.Contains(t, w.Reason, "next-day readiness")

	tie := CompareWhatIf(in, light, light, nil)
	assert.Equal(t, "A", tie.Recommended)

	near := CompareWhatIf(in, light, heavy, models.Int(2))
	assert.Equal(t, "A", near.Recommended)
	assert.InDelta(t, 0.7*near.A.At(24).CNS+0.3*near.A.At(24).Readiness, near.ScoreA, 1e-9)
	assert.Contains(t, near.Reason, "CNS preservation")
}

func TestSimulateWeek(t *testing.T) {
	in := Input{State: freshState()}
	heavy := Params{Intensity: IntensityHigh, Volume: VolumeNormal}

	days := SimulateWeek(in, []Params{heavy, heavy, heavy})
	require.Len(t, days, 3)
	assert.InDelta(t, 90, days[0].CNS, 1e-9)
	assert.InDelta(t, 80, days[1].CNS, 1e-9)
	assert.InDelta(t, 70, days[2].CNS, 1e-9)
	for i := 1; i < len(days); i++ {
		assert.Less(t, days[i].Readiness, days[i-1].Readiness, "fatigue should accumulate on day %d", days[i].Day)
	}

	rest := SimulateWeek(Input{State: squatState()}, RestPlan(7))
	require.Len(t, rest, 7)
	assert.Equal(t, 100.0, rest[6].CNS)
	for i := 1; i < len(rest); i++ {
		assert.GreaterOrEqual(t, rest[i].Readiness, rest[i-1].Readiness)
	}
	assert.Equal(t, recovery.Recovered, FinalState(nil, rest).Muscle(recovery.Quadriceps).Status)
}
