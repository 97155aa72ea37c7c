package recovery

import (
	"strings"

	"coach/internal/models"
)

// Personalization clamps
const (
	MinGlobalFactor  = 0.6
	MaxGlobalFactor  = 2.0
	MinMuscleFactor  = 0.6
	MaxMuscleFactor  = 1.6
	BaseCNSRate      = 25.0 // percent per day for a neutral athlete
	MinCNSRatePerDay = 10.0
	MaxCNSRatePerDay = 50.0
)

// Factors is the multiplier bundle applied to base recovery times
type Factors struct {
	Global                float64
	CNSRecoveryRatePerDay float64
	PerMuscle             map[string]float64
}

// Muscle returns the combined multiplier for a muscle
func (f Factors) Muscle(m string) float64 {
	v := f.Global
	if pm, ok := f.PerMuscle[m]; ok {
		v *= pm
	}
	return v
}

// NeutralFactors returns factors that leave base tables untouched
func NeutralFactors() Factors {
	return Factors{Global: 1, CNSRecoveryRatePerDay: BaseCNSRate, PerMuscle: map[string]float64{}}
}

// ExperienceMultiplier returns the recovery multiplier for an experience tier
func ExperienceMultiplier(t models.ExperienceTier) float64 {
	switch models.ParseExperience(string(t)) {
	case models.Beginner:
		return 1.3
	case models.Advanced:
		return 0.85
	case models.Elite:
		return 0.8
	default:
		return 1.0
	}
}

// AgeMultiplier returns the recovery multiplier for an age bracket. Unknown age (0) is neutral.
func AgeMultiplier(age int) float64 {
	switch {
	case age <= 0:
		return 1.0
	case age < 25:
		return 0.9
	case age < 35:
		return 1.0
	case age < 45:
		return 1.15
	default:
		return 1.3
	}
}

// BodyWeightMultiplier returns the recovery multiplier for a body-weight bracket
func BodyWeightMultiplier(kg float64) float64 {
	switch {
	case kg <= 0:
		return 1.0
	case kg > 110:
		return 1.25
	case kg > 95:
		return 1.1
	case kg < 55:
		return 0.92
	default:
		return 1.0
	}
}

// SleepMultiplier returns the recovery multiplier for a reported sleep quality
func SleepMultiplier(quality string) float64 {
	switch strings.ToLower(quality) {
	case "poor":
		return 1.15
	case "fair":
		return 1.05
	case "excellent":
		return 0.95
	default:
		return 1.0
	}
}

// Personalize builds factors from the profile, an optional sleep quality and an optional learning profile.
// A nil or immature learning profile contributes nothing.
func Personalize(p models.Profile, sleepQuality string, learning *models.LearningProfile) Factors {
	global := ExperienceMultiplier(p.Experience) *
		AgeMultiplier(p.Age) *
		BodyWeightMultiplier(p.BodyWeightKg) *
		SleepMultiplier(sleepQuality)
	global = clamp(global, MinGlobalFactor, MaxGlobalFactor)

	f := Factors{
		Global:                global,
		CNSRecoveryRatePerDay: clamp(BaseCNSRate/global, MinCNSRatePerDay, MaxCNSRatePerDay),
		PerMuscle:             make(map[string]float64),
	}

	if learning.Mature() {
		for m, v := range learning.MuscleMultipliers {
			if v <= 0 {
				continue
			}
			f.PerMuscle[m] = clamp(v, MinMuscleFactor, MaxMuscleFactor)
		}
	}

	return f
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
