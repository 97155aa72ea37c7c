package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "modernc.org/sqlite"

	"coach/internal/models"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// setupTestStore creates an in-memory database for testing
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Every connection to :memory: is a distinct database
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := migrate(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return NewTestStore(sqlDB, testNow)
}

func workout(athlete string, ago time.Duration, names ...string) models.WorkoutRecord {
	w := models.WorkoutRecord{
		AthleteID:   athlete,
		PerformedAt: testNow.Add(-ago),
		Goal:        "strength",
	}
	for _, n := range names {
		w.Exercises = append(w.Exercises, models.Exercise{Name: n, Sets: 4, Reps: 5, RPE: 8})
	}
	return w
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	if err := migrate(s.db); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
}

func TestSaveAndLoadHistory(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	recent := workout("a1", 20*time.Hour, "Back Squat", "Romanian Deadlift")
	recent.Muscles = []string{"quadriceps"}
	recent.Intensity = models.Heavy
	older := workout("a1", 3*24*time.Hour, "Bench Press")
	stale := workout("a1", 40*24*time.Hour, "Overhead Press")
	other := workout("a2", time.Hour, "Pull-up")

	for _, w := range []*models.WorkoutRecord{&recent, &older, &stale, &other} {
		if err := s.SaveWorkout(ctx, w); err != nil {
			t.Fatalf("SaveWorkout() error = %v", err)
		}
		if w.ID == "" {
			t.Fatal("SaveWorkout() did not assign an ID")
		}
	}

	got, err := s.LoadHistory(ctx, "a1", 28)
	if err != nil {
		t.Fatalf("LoadHistory() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LoadHistory() returned %d workouts, want 2", len(got))
	}
	if got[0].ID != recent.ID || got[1].ID != older.ID {
		t.Errorf("LoadHistory() order = %s, %s; want most recent first", got[0].ID, got[1].ID)
	}

	first := got[0]
	if !first.PerformedAt.Equal(recent.PerformedAt) {
		t.Errorf("PerformedAt = %v, want %v", first.PerformedAt, recent.PerformedAt)
	}
	if len(first.Exercises) != 2 || first.Exercises[0].Name != "Back Squat" || first.Exercises[1].Name != "Romanian Deadlift" {
		t.Errorf("Exercises = %+v, want squat then deadlift", first.Exercises)
	}
	if first.Exercises[0].RPE != 8 || first.Exercises[0].Sets != 4 {
		t.Errorf("exercise fields not round-tripped: %+v", first.Exercises[0])
	}
	if len(first.Muscles) != 1 || first.Muscles[0] != "quadriceps" {
		t.Errorf("Muscles = %v, want [quadriceps]", first.Muscles)
	}
	if first.Intensity != models.Heavy {
		t.Errorf("Intensity = %q, want heavy", first.Intensity)
	}
	if got[1].Muscles != nil {
		t.Errorf("untagged workout Muscles = %v, want nil", got[1].Muscles)
	}
}

func TestGetWorkout(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	w := workout("a1", time.Hour, "Deadlift")
	if err := s.SaveWorkout(ctx, &w); err != nil {
		t.Fatalf("SaveWorkout() error = %v", err)
	}

	got, err := s.GetWorkout(ctx, w.ID)
	if err != nil {
		t.Fatalf("GetWorkout() error = %v", err)
	}
	if got.Goal != "strength" || len(got.Exercises) != 1 {
		t.Errorf("GetWorkout() = %+v", got)
	}

	_, err = s.GetWorkout(ctx, "missing")
	if !errors.Is(err, ErrWorkoutNotFound) {
		t.Errorf("GetWorkout(missing) error = %v, want ErrWorkoutNotFound", err)
	}
}

func TestSaveWorkoutsStopsOnDuplicate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := workout("a1", time.Hour, "Squat")
	a.ID = "dup"
	b := workout("a1", 2*time.Hour, "Bench Press")
	b.ID = "dup"

	err := s.SaveWorkouts(ctx, []models.WorkoutRecord{a, b})
	if err == nil {
		t.Fatal("SaveWorkouts() with duplicate IDs should fail")
	}

	got, err := s.LoadHistory(ctx, "a1", 7)
	if err != nil {
		t.Fatalf("LoadHistory() error = %v", err)
	}
	if len(got) != 1 || got[0].Exercises[0].Name != "Squat" {
		t.Errorf("failed insert should roll back only the duplicate, got %+v", got)
	}
}

func TestCheckIns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.LatestCheckIn(ctx, "a1"); !errors.Is(err, ErrNoCheckIn) {
		t.Fatalf("LatestCheckIn() on empty store error = %v, want ErrNoCheckIn", err)
	}

	old := &models.CheckIn{
		Readiness:  models.Int(60),
		Stress:     "high",
		RecordedAt: testNow.Add(-10 * 24 * time.Hour),
	}
	yesterday := &models.CheckIn{
		Readiness:    models.Int(55),
		SleepHours:   models.Float(6.5),
		SleepQuality: "fair",
		RecordedAt:   testNow.Add(-24 * time.Hour),
	}
	today := &models.CheckIn{
		Fatigue:      "high",
		SoreMuscles:  []string{"quadriceps", "glutes"},
		ActiveInjury: true,
	}
	for _, c := range []*models.CheckIn{old, yesterday, today} {
		if _, err := s.SaveCheckIn(ctx, "a1", c); err != nil {
			t.Fatalf("SaveCheckIn() error = %v", err)
		}
	}
	if !today.RecordedAt.Equal(testNow) {
		t.Errorf("zero RecordedAt stamped as %v, want %v", today.RecordedAt, testNow)
	}

	latest, err := s.LatestCheckIn(ctx, "a1")
	if err != nil {
		t.Fatalf("LatestCheckIn() error = %v", err)
	}
	if latest.Readiness != nil || latest.SleepHours != nil {
		t.Errorf("unanswered fields should stay nil, got readiness=%v sleep=%v", latest.Readiness, latest.SleepHours)
	}
	if !latest.ActiveInjury || len(latest.SoreMuscles) != 2 || latest.Fatigue != "high" {
		t.Errorf("LatestCheckIn() = %+v", latest)
	}

	recent, err := s.RecentCheckIns(ctx, "a1", 7)
	if err != nil {
		t.Fatalf("RecentCheckIns() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("RecentCheckIns() returned %d, want 2", len(recent))
	}
	if recent[1].Readiness == nil || *recent[1].Readiness != 55 {
		t.Errorf("yesterday readiness = %v, want 55", recent[1].Readiness)
	}
	if recent[1].SleepHours == nil || *recent[1].SleepHours != 6.5 {
		t.Errorf("yesterday sleep = %v, want 6.5", recent[1].SleepHours)
	}
}

func TestDecisionLog(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := &Decision{
		AthleteID:  "a1",
		CreatedAt:  testNow.Add(-24 * time.Hour),
		OptionID:   "phase_accumulation",
		OptionType: "training",
		Intensity:  0.65,
		Volume:     0.85,
		TotalScore: 75.75,
		Confidence: 60,
		Reasoning:  "Readiness 75/100",
		Payload:    []byte(`{"decision":"phase_accumulation"}`),
	}
	second := &Decision{AthleteID: "a1", OptionID: "rest", OptionType: "rest", Confidence: 95}
	third := &Decision{AthleteID: "a2", OptionID: "rest", OptionType: "rest"}

	for _, d := range []*Decision{first, second, third} {
		if err := s.LogDecision(ctx, d); err != nil {
			t.Fatalf("LogDecision() error = %v", err)
		}
	}
	if second.ID == "" || !second.CreatedAt.Equal(testNow) {
		t.Errorf("LogDecision() should fill ID and CreatedAt, got %q %v", second.ID, second.CreatedAt)
	}

	got, err := s.GetDecision(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetDecision() error = %v", err)
	}
	if got.TotalScore != 75.75 || got.Reasoning != first.Reasoning || string(got.Payload) != string(first.Payload) {
		t.Errorf("GetDecision() = %+v", got)
	}
	if _, err := s.GetDecision(ctx, "missing"); !errors.Is(err, ErrDecisionNotFound) {
		t.Errorf("GetDecision(missing) error = %v, want ErrDecisionNotFound", err)
	}

	list, err := s.ListDecisions(ctx, "a1", 0)
	if err != nil {
		t.Fatalf("ListDecisions() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("ListDecisions() = %d entries, first %q; want 2 newest first", len(list), list[0].ID)
	}
	if string(list[0].Payload) != "{}" {
		t.Errorf("empty payload stored as %q, want {}", list[0].Payload)
	}

	limited, err := s.ListDecisions(ctx, "a1", 1)
	if err != nil {
		t.Fatalf("ListDecisions(limit 1) error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("ListDecisions(limit 1) returned %d", len(limited))
	}
}

func TestLearningProfile(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	empty, err := s.LearningProfile(ctx, "a1")
	if err != nil {
		t.Fatalf("LearningProfile() error = %v", err)
	}
	if empty.Mature() || empty.SampleSize != 0 || empty.MuscleMultipliers == nil {
		t.Errorf("empty LearningProfile() = %+v", empty)
	}

	obs := []Observation{
		{AthleteID: "a1", Muscle: "quadriceps", PredictedHours: 48, ActualHours: 60},
		{AthleteID: "a1", Muscle: "quadriceps", PredictedHours: 48, ActualHours: 72},
		{AthleteID: "a1", Muscle: "chest", PredictedHours: 48, ActualHours: 36},
		{AthleteID: "a1", Muscle: "chest", PredictedHours: 48, ActualHours: 36},
		{AthleteID: "a1", Muscle: "biceps", PredictedHours: 24, ActualHours: 24},
		{AthleteID: "a2", Muscle: "biceps", PredictedHours: 24, ActualHours: 48},
	}
	for i := range obs {
		if err := s.RecordObservation(ctx, &obs[i]); err != nil {
			t.Fatalf("RecordObservation() error = %v", err)
		}
	}
	if obs[0].ID == 0 {
		t.Error("RecordObservation() did not set ID")
	}

	lp, err := s.LearningProfile(ctx, "a1")
	if err != nil {
		t.Fatalf("LearningProfile() error = %v", err)
	}
	if lp.SampleSize != 5 || !lp.Mature() {
		t.Errorf("SampleSize = %d, want 5 and mature", lp.SampleSize)
	}
	tests := map[string]float64{"quadriceps": 1.375, "chest": 0.75, "biceps": 1}
	for muscle, want := range tests {
		if got := lp.MuscleMultipliers[muscle]; got < want-1e-9 || got > want+1e-9 {
			t.Errorf("multiplier[%s] = %v, want %v", muscle, got, want)
		}
	}

	bad := &Observation{AthleteID: "a1", Muscle: "chest", PredictedHours: 0, ActualHours: 10}
	if err := s.RecordObservation(ctx, bad); err == nil {
		t.Error("RecordObservation() with zero predicted hours should violate the check constraint")
	}
}

func TestObservationRatio(t *testing.T) {
	if got := (Observation{PredictedHours: 48, ActualHours: 72}).Ratio(); got != 1.5 {
		t.Errorf("Ratio() = %v, want 1.5", got)
	}
	if got := (Observation{}).Ratio(); got != 1 {
		t.Errorf("Ratio() with no prediction = %v, want 1", got)
	}
}

func TestSaveWorkoutDriverFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO workouts").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO exercises").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	s := NewTestStore(sqlDB, testNow)
	w := workout("a1", time.Hour, "Squat")
	err = s.SaveWorkout(context.Background(), &w)
	if err == nil {
		t.Fatal("SaveWorkout() should surface the driver error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLoadHistoryQueryFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectQuery("SELECT id, athlete_id, performed_at").
		WithArgs("a1", formatTime(testNow.Add(-7*24*time.Hour))).
		WillReturnError(sql.ErrConnDone)

	s := NewTestStore(sqlDB, testNow)
	if _, err := s.LoadHistory(context.Background(), "a1", 7); !errors.Is(err, sql.ErrConnDone) {
		t.Errorf("LoadHistory() error = %v, want wrapped ErrConnDone", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLatestCheckInScansRow(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer sqlDB.Close()

	cols := []string{"recorded_at", "readiness", "fatigue", "motivation", "stress",
		"sleep_hours", "sleep_quality", "sore_muscles", "active_injury"}
	mock.ExpectQuery("FROM checkins").
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("2024-03-15T08:00:00Z", 80, "low", "high", "low", 7.5, "good", `["calves"]`, false))

	s := NewTestStore(sqlDB, testNow)
	c, err := s.LatestCheckIn(context.Background(), "a1")
	if err != nil {
		t.Fatalf("LatestCheckIn() error = %v", err)
	}
	if c.Readiness == nil || *c.Readiness != 80 || c.SleepHours == nil || *c.SleepHours != 7.5 {
		t.Errorf("LatestCheckIn() = %+v", c)
	}
	if len(c.SoreMuscles) != 1 || c.SoreMuscles[0] != "calves" {
		t.Errorf("SoreMuscles = %v", c.SoreMuscles)
	}
}
