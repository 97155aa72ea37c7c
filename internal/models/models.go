package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNilProfile is returned when an operation requires an athlete profile and none was given
var ErrNilProfile = errors.New("athlete profile is required")

// ErrInvalidProfile is returned when a profile carries impossible values
var ErrInvalidProfile = errors.New("invalid athlete profile")

// ExperienceTier classifies how long an athlete has been training seriously
type ExperienceTier string

const (
	Beginner     ExperienceTier = "beginner"
	Intermediate ExperienceTier = "intermediate"
	Advanced     ExperienceTier = "advanced"
	Elite        ExperienceTier = "elite"
)

// ParseExperience maps free text onto a tier, falling back to intermediate
func ParseExperience(s string) ExperienceTier {
	switch ExperienceTier(strings.ToLower(strings.TrimSpace(s))) {
	case Beginner:
		return Beginner
	case Advanced:
		return Advanced
	case Elite:
		return Elite
	default:
		return Intermediate
	}
}

// IntensityTier is the coarse load class of a session
type IntensityTier string

const (
	Light    IntensityTier = "light"
	Moderate IntensityTier = "moderate"
	Heavy    IntensityTier = "heavy"
	Maximal  IntensityTier = "maximal"
)

// IntensityTiers lists the tiers from lowest to highest
var IntensityTiers = []IntensityTier{Light, Moderate, Heavy, Maximal}

// Valid reports whether t is one of the known tiers
func (t IntensityTier) Valid() bool {
	switch t {
	case Light, Moderate, Heavy, Maximal:
		return true
	}
	return false
}

// Fraction returns the share of maximal effort the tier represents
func (t IntensityTier) Fraction() float64 {
	switch t {
	case Light:
		return 0.4
	case Heavy:
		return 0.8
	case Maximal:
		return 1.0
	default:
		return 0.6
	}
}

// Profile describes the athlete. It is read-only for the duration of an analysis run.
type Profile struct {
	ID              string         `json:"id"`
	Age             int            `json:"age"`
	Experience      ExperienceTier `json:"experience"`
	BodyWeightKg    float64        `json:"body_weight_kg"`
	Sport           string         `json:"sport"`
	Goal            string         `json:"goal"`
	Injuries        []string       `json:"injuries,omitempty"`
	LikedMethods    []string       `json:"liked_methods,omitempty"`
	DislikedMethods []string       `json:"disliked_methods,omitempty"`
}

// DefaultProfile returns a neutral intermediate adult
func DefaultProfile() Profile {
	return Profile{
		ID:           "default",
		Age:          30,
		Experience:   Intermediate,
		BodyWeightKg: 75,
		Sport:        "general",
		Goal:         "general_fitness",
	}
}

// Validate checks for caller contract violations
func (p *Profile) Validate() error {
	if p == nil {
		return ErrNilProfile
	}
	if p.Age < 0 {
		return fmt.Errorf("%w: age %d is negative", ErrInvalidProfile, p.Age)
	}
	if p.BodyWeightKg < 0 {
		return fmt.Errorf("%w: body weight %v is negative", ErrInvalidProfile, p.BodyWeightKg)
	}
	return nil
}

// Exercise is one movement performed in a session
type Exercise struct {
	Name string  `json:"name"`
	Sets int     `json:"sets"`
	Reps int     `json:"reps,omitempty"`
	RPE  float64 `json:"rpe,omitempty"`  // 0-10, 0 when not reported
	Type string  `json:"type,omitempty"` // optional tag, e.g. "olympic", "mobility"
}

// WorkoutRecord is one historical session
type WorkoutRecord struct {
	ID              string        `json:"id"`
	AthleteID       string        `json:"athlete_id"`
	PerformedAt     time.Time     `json:"performed_at"`
	Exercises       []Exercise    `json:"exercises"`
	Muscles         []string      `json:"muscles,omitempty"`   // explicit tags win over inference
	Intensity       IntensityTier `json:"intensity,omitempty"` // empty when not classified
	Goal            string        `json:"goal,omitempty"`
	Difficulty      string        `json:"difficulty,omitempty"`
	DurationMinutes int           `json:"duration_minutes,omitempty"`
	SessionRPE      float64       `json:"session_rpe,omitempty"`
}

// Malformed reports whether the record lacks the data recovery math needs
func (w WorkoutRecord) Malformed() bool {
	return w.PerformedAt.IsZero() || len(w.Exercises) == 0
}

// CheckIn holds the athlete's subjective answers for the day. Nil fields were not answered.
type CheckIn struct {
	Readiness    *int      `json:"readiness,omitempty"`     // 0-100
	Fatigue      string    `json:"fatigue,omitempty"`       // low, moderate, high, very_high
	Motivation   string    `json:"motivation,omitempty"`    // low, moderate, high
	Stress       string    `json:"stress,omitempty"`        // low, moderate, high, very_high
	SleepHours   *float64  `json:"sleep_hours,omitempty"`   // hours
	SleepQuality string    `json:"sleep_quality,omitempty"` // poor, fair, good, excellent
	SoreMuscles  []string  `json:"sore_muscles,omitempty"`
	ActiveInjury bool      `json:"active_injury,omitempty"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Schedule holds calendar facts for the decision day
type Schedule struct {
	DaysToEvent      *int         `json:"days_to_event,omitempty"` // nil when no event is planned
	AvailableMinutes int          `json:"available_minutes,omitempty"`
	DayOfWeek        time.Weekday `json:"day_of_week"`
}

// Phase is a periodization block
type Phase string

const (
	PhaseAccumulation    Phase = "accumulation"
	PhaseIntensification Phase = "intensification"
	PhaseRealization     Phase = "realization"
	PhaseDeload          Phase = "deload"
)

// Phases lists the blocks in their cycle order
var Phases = []Phase{PhaseAccumulation, PhaseIntensification, PhaseRealization, PhaseDeload}

// Aggregates are training-load statistics derived from the history window. Nil pointers are unknown.
type Aggregates struct {
	ACWR                 *float64 `json:"acwr,omitempty"`
	Monotony             *float64 `json:"monotony,omitempty"`
	Strain               float64  `json:"strain"`
	SleepAverage         *float64 `json:"sleep_average,omitempty"`
	PriorInjuries        int      `json:"prior_injuries"`
	ConsecutiveDays      int      `json:"consecutive_days"`
	WeeksSinceDeload     int      `json:"weeks_since_deload"`
	WeeksWithoutProgress int      `json:"weeks_without_progress"`
	WeeksOnProgram       int      `json:"weeks_on_program"`
	VarietyRatio         *float64 `json:"variety_ratio,omitempty"`
	AdherenceTrend       float64  `json:"adherence_trend"` // fractional change in session count, negative when declining
	AverageReadiness     *float64 `json:"average_readiness,omitempty"`
	AverageRPE           *float64 `json:"average_rpe,omitempty"`
	WorkoutCount         int      `json:"workout_count"`
	Phase                Phase    `json:"phase,omitempty"`
}

// MinLearningSamples is the sample size at which a learning profile is trusted
const MinLearningSamples = 5

// LearningProfile holds per-athlete recovery corrections learned from past observations
type LearningProfile struct {
	AthleteID         string             `json:"athlete_id"`
	MuscleMultipliers map[string]float64 `json:"muscle_multipliers"`
	SampleSize        int                `json:"sample_size"`
}

// Mature reports whether the profile has enough samples to influence predictions
func (l *LearningProfile) Mature() bool {
	return l != nil && l.SampleSize >= MinLearningSamples
}

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }
