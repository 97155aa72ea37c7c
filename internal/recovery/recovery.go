package recovery

import (
	"fmt"
	"time"

	"coach/internal/models"
)

// WindowDays is the trailing history window considered for recovery
const WindowDays = 7

// PartialThreshold is the percentage at which a muscle is partially recovered
const PartialThreshold = 70.0

// Level is a coarse recovery status
type Level string

const (
	Recovered Level = "recovered"
	Partial   Level = "partial"
	Fatigued  Level = "fatigued"
)

// LevelFor maps a percentage onto a status. Only 100 counts as recovered.
func LevelFor(pct float64) Level {
	switch {
	case pct >= 100:
		return Recovered
	case pct >= PartialThreshold:
		return Partial
	default:
		return Fatigued
	}
}

// MuscleState is the recovery of one muscle group, or of the CNS
type MuscleState struct {
	Status              Level                `json:"status"`
	Percentage          float64              `json:"percentage"`
	HoursUntilRecovered float64              `json:"hours_until_recovered"`
	LastTrainedAt       *time.Time           `json:"last_trained_at,omitempty"`
	Intensity           models.IntensityTier `json:"intensity,omitempty"`
}

// State is the full recovery picture at a point in time
type State struct {
	Muscles    map[string]MuscleState `json:"muscles"`
	CNS        MuscleState            `json:"cns"`
	CNSLoad    float64                `json:"cns_load"`
	Factors    Factors                `json:"-"`
	ComputedAt time.Time              `json:"computed_at"`
}

// Muscle returns the state of m, treating unknown muscles as recovered
func (s *State) Muscle(m string) MuscleState {
	if ms, ok := s.Muscles[m]; ok {
		return ms
	}
	return fullyRecovered()
}

// AverageMuscle returns the mean recovery percentage across all muscle groups
func (s *State) AverageMuscle() float64 {
	if len(s.Muscles) == 0 {
		return 100
	}
	var sum float64
	for _, ms := range s.Muscles {
		sum += ms.Percentage
	}
	return sum / float64(len(s.Muscles))
}

// Fatigued returns the muscles below the partial threshold, in MuscleGroups order
func (s *State) Fatigued() []string {
	var out []string
	for _, m := range MuscleGroups {
		if s.Muscle(m).Status == Fatigued {
			out = append(out, m)
		}
	}
	return out
}

// ComputeState derives recovery from history using the profile's personalization factors
func ComputeState(history []models.WorkoutRecord, profile *models.Profile, now time.Time) (*State, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("computing recovery state: %w", err)
	}
	return ComputeWithFactors(history, Personalize(*profile, "", nil), now), nil
}

// ComputeWithFactors derives recovery from history using precomputed factors.
// Malformed entries and entries older than the window are ignored.
func ComputeWithFactors(history []models.WorkoutRecord, f Factors, now time.Time) *State {
	sessions := qualifying(history, now)

	latest := make(map[string]models.WorkoutRecord)
	for _, w := range sessions {
		for _, m := range SessionMuscles(w) {
			prev, ok := latest[m]
			if !ok || w.PerformedAt.After(prev.PerformedAt) {
				latest[m] = w
			}
		}
	}

	state := &State{
		Muscles:    make(map[string]MuscleState, len(MuscleGroups)),
		Factors:    f,
		ComputedAt: now,
	}
	for _, m := range MuscleGroups {
		state.Muscles[m] = fullyRecovered()
	}
	for m, w := range latest {
		tier := IntensityOf(w)
		required := BaseHours(m, tier) * f.Muscle(m)
		at := w.PerformedAt
		state.Muscles[m] = newMuscleState(hoursSince(w.PerformedAt, now), required, &at, tier)
	}

	state.CNS, state.CNSLoad = cnsState(sessions, f, now)
	return state
}

func qualifying(history []models.WorkoutRecord, now time.Time) []models.WorkoutRecord {
	cutoff := now.Add(-WindowDays * 24 * time.Hour)
	out := make([]models.WorkoutRecord, 0, len(history))
	for _, w := range history {
		if w.Malformed() || w.PerformedAt.Before(cutoff) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func fullyRecovered() MuscleState {
	return MuscleState{Status: Recovered, Percentage: 100}
}

func newMuscleState(hours, required float64, at *time.Time, tier models.IntensityTier) MuscleState {
	pct := 100.0
	if required > 0 {
		pct = clamp(100*hours/required, 0, 100)
	}
	until := required - hours
	if until < 0 {
		until = 0
	}
	return MuscleState{
		Status:              LevelFor(pct),
		Percentage:          pct,
		HoursUntilRecovered: until,
		LastTrainedAt:       at,
		Intensity:           tier,
	}
}

// hoursSince treats timestamps in the future as just performed
func hoursSince(t, now time.Time) float64 {
	h := now.Sub(t).Hours()
	if h < 0 {
		return 0
	}
	return h
}
