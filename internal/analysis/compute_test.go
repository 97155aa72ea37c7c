package analysis

import (
	"math"
	"testing"
	"time"

	"coach/internal/models"
)

var now = time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)

// session builds a workout with load sessionRPE * minutes
func session(daysAgo int, load float64) models.WorkoutRecord {
	return models.WorkoutRecord{
		PerformedAt:     now.AddDate(0, 0, -daysAgo).Add(-2 * time.Hour),
		Exercises:       []models.Exercise{{Name: "Back Squat", Sets: 5}},
		SessionRPE:      load / 60,
		DurationMinutes: 60,
	}
}

func everyDay(days int, load float64) []models.WorkoutRecord {
	var out []models.WorkoutRecord
	for d := 0; d < days; d++ {
		out = append(out, session(d, load))
	}
	return out
}

func TestACWR(t *testing.T) {
	tests := []struct {
		name     string
		history  []models.WorkoutRecord
		expected *float64
	}{
		{
			name:     "no history",
			history:  nil,
			expected: nil,
		},
		{
			name:     "steady load",
			history:  everyDay(28, 300),
			expected: models.Float(1.0),
		},
		{
			name: "acute spike",
			// 7 days at 600, 21 days at 300: acute 4200, chronic (4200+6300)/4 = 2625
			history:  append(everyDay(7, 600), shift(everyDay(21, 300), 7)...),
			expected: models.Float(1.6),
		},
		{
			name:     "only last week",
			history:  everyDay(7, 300),
			expected: models.Float(4.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ACWR(tt.history, now)
			if tt.expected == nil {
				if result != nil {
					t.Errorf("ACWR() = %v, want nil", *result)
				}
				return
			}
			if result == nil {
				t.Fatalf("ACWR() = nil, want %v", *tt.expected)
			}
			if math.Abs(*result-*tt.expected) > 0.01 {
				t.Errorf("ACWR() = %v, want %v", *result, *tt.expected)
			}
		})
	}
}

func shift(history []models.WorkoutRecord, days int) []models.WorkoutRecord {
	out := make([]models.WorkoutRecord, len(history))
	for i, w := range history {
		w.PerformedAt = w.PerformedAt.AddDate(0, 0, -days)
		out[i] = w
	}
	return out
}

func TestMonotony(t *testing.T) {
	if m := Monotony(everyDay(7, 300), now); m != nil {
		t.Errorf("constant load should have nil monotony, got %v", *m)
	}
	if m := Monotony(nil, now); m != nil {
		t.Errorf("empty history should have nil monotony, got %v", *m)
	}

	// 300 every other day: mean 171.4, stddev 148.5
	history := []models.WorkoutRecord{session(0, 300), session(2, 300), session(4, 300), session(6, 300)}
	m := Monotony(history, now)
	if m == nil {
		t.Fatal("Monotony() = nil")
	}
	if math.Abs(*m-1.155) > 0.01 {
		t.Errorf("Monotony() = %v, want ~1.155", *m)
	}

	strain := Strain(history, now)
	if math.Abs(strain-1200**m) > 0.01 {
		t.Errorf("Strain() = %v, want %v", strain, 1200**m)
	}
}

func TestConsecutiveDays(t *testing.T) {
	tests := []struct {
		name     string
		history  []models.WorkoutRecord
		expected int
	}{
		{"none", nil, 0},
		{"today only", []models.WorkoutRecord{session(0, 100)}, 1},
		{"yesterday streak", []models.WorkoutRecord{session(1, 100), session(2, 100), session(3, 100)}, 3},
		{"broken streak", []models.WorkoutRecord{session(0, 100), session(1, 100), session(3, 100)}, 2},
		{"ten days", everyDay(10, 100), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConsecutiveDays(tt.history, now); got != tt.expected {
				t.Errorf("ConsecutiveDays() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestWeeksSinceDeload(t *testing.T) {
	// Four hard weeks, then a light week two weeks ago, then two hard weeks
	var history []models.WorkoutRecord
	for d := 0; d < 14; d++ {
		history = append(history, session(d, 400))
	}
	history = append(history, session(15, 200))
	for d := 21; d < 49; d++ {
		history = append(history, session(d, 400))
	}

	if got := WeeksSinceDeload(history, now, 8); got != 2 {
		t.Errorf("WeeksSinceDeload() = %d, want 2", got)
	}

	steady := everyDay(35, 400)
	if got := WeeksSinceDeload(steady, now, 8); got != 5 {
		t.Errorf("WeeksSinceDeload(no deload) = %d, want 5", got)
	}

	if got := WeeksSinceDeload(nil, now, 8); got != 0 {
		t.Errorf("WeeksSinceDeload(empty) = %d, want 0", got)
	}
}

func TestWeeksWithoutProgress(t *testing.T) {
	// Load peaks three weeks ago and never beats it again
	var history []models.WorkoutRecord
	loads := []float64{500, 500, 500, 600, 400, 300}
	for week, load := range loads {
		for d := 0; d < 7; d++ {
			history = append(history, session(week*7+d, load))
		}
	}
	if got := WeeksWithoutProgress(history, now, 8); got != 3 {
		t.Errorf("WeeksWithoutProgress() = %d, want 3", got)
	}
}

func TestVarietyRatio(t *testing.T) {
	history := []models.WorkoutRecord{
		{PerformedAt: now, Exercises: []models.Exercise{{Name: "Squat"}, {Name: "Bench"}}},
		{PerformedAt: now.AddDate(0, 0, -2), Exercises: []models.Exercise{{Name: "squat"}, {Name: "Row"}}},
		{PerformedAt: now.AddDate(0, 0, -40), Exercises: []models.Exercise{{Name: "Curl"}}},
	}
	v := VarietyRatio(history, now)
	if v == nil || math.Abs(*v-0.75) > 0.001 {
		t.Errorf("VarietyRatio() = %v, want 0.75", v)
	}
	if VarietyRatio(nil, now) != nil {
		t.Error("VarietyRatio(empty) should be nil")
	}
}

func TestAdherenceTrend(t *testing.T) {
	var history []models.WorkoutRecord
	for _, d := range []int{1, 5, 16, 18, 20, 22} {
		history = append(history, session(d, 100))
	}
	// 2 recent vs 4 prior sessions
	if got := AdherenceTrend(history, now); math.Abs(got+0.5) > 0.001 {
		t.Errorf("AdherenceTrend() = %v, want -0.5", got)
	}
	if got := AdherenceTrend(everyDay(5, 100), now); got != 0 {
		t.Errorf("AdherenceTrend(no prior) = %v, want 0", got)
	}
}

func TestPhaseFor(t *testing.T) {
	tests := []struct {
		weeks    int
		event    *int
		expected models.Phase
	}{
		{0, nil, models.PhaseAccumulation},
		{2, nil, models.PhaseAccumulation},
		{3, nil, models.PhaseIntensification},
		{4, nil, models.PhaseRealization},
		{5, nil, models.PhaseDeload},
		{9, nil, models.PhaseDeload},
		{1, models.Int(5), models.PhaseRealization},
		{9, models.Int(0), models.PhaseRealization},
		{1, models.Int(10), models.PhaseAccumulation},
	}

	for _, tt := range tests {
		t.Run(string(tt.expected), func(t *testing.T) {
			if got := PhaseFor(tt.weeks, tt.event); got != tt.expected {
				t.Errorf("PhaseFor(%d) = %v, want %v", tt.weeks, got, tt.expected)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	history := everyDay(28, 300)
	history = append(history, models.WorkoutRecord{ID: "broken"})
	checkIns := []models.CheckIn{
		{RecordedAt: now, SleepHours: models.Float(6), Readiness: models.Int(60)},
		{RecordedAt: now.AddDate(0, 0, -1), SleepHours: models.Float(8)},
		{RecordedAt: now.AddDate(0, 0, -20), SleepHours: models.Float(2), Readiness: models.Int(10)},
	}

	agg := Summarize(history, checkIns, now, 8)

	if agg.WorkoutCount != 28 {
		t.Errorf("WorkoutCount = %d, want 28", agg.WorkoutCount)
	}
	if agg.ACWR == nil || math.Abs(*agg.ACWR-1) > 0.01 {
		t.Errorf("ACWR = %v, want 1", agg.ACWR)
	}
	if agg.SleepAverage == nil || *agg.SleepAverage != 7 {
		t.Errorf("SleepAverage = %v, want 7", agg.SleepAverage)
	}
	if agg.AverageReadiness == nil || *agg.AverageReadiness != 60 {
		t.Errorf("AverageReadiness = %v, want 60", agg.AverageReadiness)
	}
	if agg.ConsecutiveDays != 28 {
		t.Errorf("ConsecutiveDays = %d, want 28", agg.ConsecutiveDays)
	}
	if agg.WeeksOnProgram != 4 {
		t.Errorf("WeeksOnProgram = %d, want 4", agg.WeeksOnProgram)
	}
	if agg.Phase != models.PhaseRealization {
		t.Errorf("Phase = %v, want realization", agg.Phase)
	}
	if agg.AverageRPE == nil || math.Abs(*agg.AverageRPE-5) > 0.001 {
		t.Errorf("AverageRPE = %v, want 5", agg.AverageRPE)
	}
}
