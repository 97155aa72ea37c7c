package recovery

import (
	"math"
	"time"

	"coach/internal/models"
)

// CNS model constants
const (
	CNSHalfLifeHours = 72.0
	MinCNSHours      = 24.0
	MaxCNSHours      = 96.0
	cnsHoursPerLoad  = 24.0
)

// ExerciseLoad returns the CNS load one exercise contributes within a session of the given tier
func ExerciseLoad(ex models.Exercise, tier models.IntensityTier) float64 {
	fraction := tier.Fraction()
	if ex.RPE > 0 {
		fraction = math.Min(ex.RPE, 10) / 10
	}
	sets := float64(ex.Sets)
	if sets <= 0 {
		sets = 3
	}
	return Impact(PatternOf(ex)) * fraction * clamp(sets/4, 0.5, 2)
}

// SessionLoad sums the CNS load of all exercises in a workout
func SessionLoad(w models.WorkoutRecord) float64 {
	tier := IntensityOf(w)
	var total float64
	for _, ex := range w.Exercises {
		total += ExerciseLoad(ex, tier)
	}
	return total
}

// decay returns the remaining share of a load after the given hours
func decay(hours float64) float64 {
	return math.Pow(0.5, hours/CNSHalfLifeHours)
}

// RequiredCNSHours converts an accumulated load into hours needed to fully recover
func RequiredCNSHours(load, global float64) float64 {
	return clamp((MinCNSHours+cnsHoursPerLoad*load)*global, MinCNSHours, MaxCNSHours)
}

// cnsState folds decayed loads from every qualifying session into one CNS entry
func cnsState(sessions []models.WorkoutRecord, f Factors, now time.Time) (MuscleState, float64) {
	var load float64
	var latest *models.WorkoutRecord
	for i := range sessions {
		w := &sessions[i]
		load += SessionLoad(*w) * decay(hoursSince(w.PerformedAt, now))
		if latest == nil || w.PerformedAt.After(latest.PerformedAt) {
			latest = w
		}
	}
	if latest == nil {
		return fullyRecovered(), 0
	}

	required := RequiredCNSHours(load, f.Global)
	hours := hoursSince(latest.PerformedAt, now)
	at := latest.PerformedAt
	return newMuscleState(hours, required, &at, IntensityOf(*latest)), load
}
