package recovery

import (
	"strings"

	"coach/internal/models"
)

// baseHours is the recovery time in hours per muscle, indexed light/moderate/heavy/maximal.
// Larger muscle groups and higher tiers take longer.
var baseHours = map[string][4]float64{
	Quadriceps: {48, 72, 96, 120},
	Hamstrings: {48, 72, 96, 120},
	LowerBack:  {48, 72, 96, 120},
	Glutes:     {36, 60, 84, 108},
	Back:       {36, 60, 84, 108},
	Chest:      {36, 48, 72, 96},
	Shoulders:  {24, 48, 60, 84},
	Biceps:     {24, 48, 60, 72},
	Triceps:    {24, 48, 60, 72},
	Calves:     {24, 36, 48, 60},
	Core:       {24, 36, 48, 60},
}

// defaultBaseHours is used for muscle tags outside the table
var defaultBaseHours = [4]float64{36, 48, 72, 96}

func tierIndex(t models.IntensityTier) int {
	switch t {
	case models.Light:
		return 0
	case models.Heavy:
		return 2
	case models.Maximal:
		return 3
	default:
		return 1
	}
}

// BaseHours returns the unpersonalized recovery time for a muscle at a tier
func BaseHours(muscle string, tier models.IntensityTier) float64 {
	row, ok := baseHours[muscle]
	if !ok {
		row = defaultBaseHours
	}
	return row[tierIndex(tier)]
}

var difficultyTiers = map[string]models.IntensityTier{
	"easy":      models.Light,
	"light":     models.Light,
	"recovery":  models.Light,
	"moderate":  models.Moderate,
	"medium":    models.Moderate,
	"normal":    models.Moderate,
	"hard":      models.Heavy,
	"heavy":     models.Heavy,
	"very_hard": models.Maximal,
	"max":       models.Maximal,
	"maximal":   models.Maximal,
}

var goalTiers = map[string]models.IntensityTier{
	"strength":    models.Heavy,
	"power":       models.Heavy,
	"hypertrophy": models.Moderate,
	"endurance":   models.Light,
	"mobility":    models.Light,
	"recovery":    models.Light,
}

// IntensityOf classifies a session's tier. An explicit tier wins, then mean
// exercise RPE, then the difficulty keyword, then the goal.
func IntensityOf(w models.WorkoutRecord) models.IntensityTier {
	if w.Intensity.Valid() {
		return w.Intensity
	}

	var sum float64
	var n int
	for _, ex := range w.Exercises {
		if ex.RPE > 0 {
			sum += ex.RPE
			n++
		}
	}
	if n == 0 && w.SessionRPE > 0 {
		sum, n = w.SessionRPE, 1
	}
	if n > 0 {
		avg := sum / float64(n)
		switch {
		case avg >= 9:
			return models.Maximal
		case avg >= 7.5:
			return models.Heavy
		case avg >= 5.5:
			return models.Moderate
		default:
			return models.Light
		}
	}

	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(w.Difficulty)), " ", "_")
	if t, ok := difficultyTiers[key]; ok {
		return t
	}
	if t, ok := goalTiers[strings.ToLower(strings.TrimSpace(w.Goal))]; ok {
		return t
	}
	return models.Moderate
}
