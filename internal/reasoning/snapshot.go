// Package reasoning turns an athlete's context into a ranked, explained training decision.
//
// A decision cycle runs snapshot -> problems -> options -> evaluated options -> decision.
// Every step is a pure function of the previous one.
package reasoning

import (
	"strings"
	"time"

	"coach/internal/analysis"
	"coach/internal/models"
	"coach/internal/recovery"
	"coach/internal/risk"
)

// Neutral defaults for missing optional inputs
const (
	DefaultReadiness        = 75.0
	DefaultSleepHours       = 7.0
	DefaultCategory         = "moderate"
	DefaultSleepQuality     = "good"
	DefaultAvailableMinutes = 60
	DefaultACWR             = 1.0
	DefaultMonotony         = 1.5
)

// Context is everything the caller knows about today besides the profile and history
type Context struct {
	CheckIn    *models.CheckIn
	Schedule   models.Schedule
	Aggregates *models.Aggregates      // computed from history when nil
	Learning   *models.LearningProfile // optional per-athlete corrections
}

// Indicators are categorical readings derived from the snapshot
type Indicators struct {
	ReadinessLevel          string `json:"readiness_level"`
	IntensityRecommendation string `json:"intensity_recommendation"`
	MatchPhase              string `json:"match_phase"`
	RecoveryStatus          string `json:"recovery_status"`
	MethodComplexity        string `json:"method_complexity"`
}

// Snapshot is the normalized, read-only view every later step works from
type Snapshot struct {
	Profile          models.Profile `json:"profile"`
	Readiness        float64        `json:"readiness"`
	Fatigue          string         `json:"fatigue"`
	Motivation       string         `json:"motivation"`
	Stress           string         `json:"stress"`
	SleepHours       float64        `json:"sleep_hours"`
	SleepQuality     string         `json:"sleep_quality"`
	SoreMuscles      []string       `json:"sore_muscles"`
	ActiveInjury     bool           `json:"active_injury"`
	DaysToEvent      *int           `json:"days_to_event,omitempty"`
	AvailableMinutes int            `json:"available_minutes"`
	DayOfWeek        time.Weekday   `json:"day_of_week"`
	ACWR             float64        `json:"acwr"`
	Monotony         float64        `json:"monotony"`
	Phase            models.Phase   `json:"phase"`
	CNS              float64        `json:"cns"`
	FatiguedMuscles  []string       `json:"fatigued_muscles"`
	InjuryRisk       risk.Level     `json:"injury_risk"`
	Indicators       Indicators     `json:"indicators"`
}

func category(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return DefaultCategory
	}
	return strings.ReplaceAll(v, " ", "_")
}

// BuildSnapshot normalizes the inputs, substituting neutral defaults for anything missing.
// state and report may be nil.
func BuildSnapshot(profile models.Profile, ctx Context, agg models.Aggregates, state *recovery.State, report *risk.Report) Snapshot {
	s := Snapshot{
		Profile:          profile,
		Readiness:        DefaultReadiness,
		Fatigue:          DefaultCategory,
		Motivation:       DefaultCategory,
		Stress:           DefaultCategory,
		SleepHours:       DefaultSleepHours,
		SleepQuality:     DefaultSleepQuality,
		SoreMuscles:      []string{},
		DaysToEvent:      ctx.Schedule.DaysToEvent,
		AvailableMinutes: ctx.Schedule.AvailableMinutes,
		DayOfWeek:        ctx.Schedule.DayOfWeek,
		ACWR:             DefaultACWR,
		Monotony:         DefaultMonotony,
		Phase:            agg.Phase,
		CNS:              100,
		FatiguedMuscles:  []string{},
		InjuryRisk:       risk.Low,
	}

	s.Profile.Experience = models.ParseExperience(string(profile.Experience))

	if c := ctx.CheckIn; c != nil {
		if c.Readiness != nil {
			s.Readiness = clamp(float64(*c.Readiness), 0, 100)
		}
		s.Fatigue = category(c.Fatigue)
		s.Motivation = category(c.Motivation)
		s.Stress = category(c.Stress)
		if c.SleepHours != nil {
			s.SleepHours = *c.SleepHours
		}
		if c.SleepQuality != "" {
			s.SleepQuality = strings.ToLower(c.SleepQuality)
		}
		for _, m := range c.SoreMuscles {
			s.SoreMuscles = append(s.SoreMuscles, strings.ToLower(m))
		}
		s.ActiveInjury = c.ActiveInjury
	}

	if s.AvailableMinutes <= 0 {
		s.AvailableMinutes = DefaultAvailableMinutes
	}
	if agg.ACWR != nil {
		s.ACWR = *agg.ACWR
	}
	if agg.Monotony != nil {
		s.Monotony = *agg.Monotony
	}
	if _, ok := phaseTable[s.Phase]; !ok {
		s.Phase = models.PhaseAccumulation
	}
	if s.DaysToEvent != nil && *s.DaysToEvent >= 0 && *s.DaysToEvent <= analysis.EventRealizationDay {
		s.Phase = analysis.PhaseFor(agg.WeeksSinceDeload, s.DaysToEvent)
	}

	if state != nil {
		s.CNS = state.CNS.Percentage
		s.FatiguedMuscles = append(s.FatiguedMuscles, state.Fatigued()...)
	}
	if report != nil {
		s.InjuryRisk = report.Injury.Level
	}

	s.Indicators = deriveIndicators(s)
	return s
}

func deriveIndicators(s Snapshot) Indicators {
	return Indicators{
		ReadinessLevel:          readinessLevel(s.Readiness),
		IntensityRecommendation: intensityRecommendation(s.Readiness, s.CNS),
		MatchPhase:              matchPhase(s.DaysToEvent),
		RecoveryStatus:          recoveryStatus(s.CNS, len(s.FatiguedMuscles)),
		MethodComplexity:        methodComplexity(s),
	}
}

func readinessLevel(r float64) string {
	switch {
	case r >= 80:
		return "high"
	case r >= 65:
		return "good"
	case r >= 50:
		return "moderate"
	case r >= 35:
		return "low"
	default:
		return "very_low"
	}
}

func intensityRecommendation(readiness, cns float64) string {
	switch {
	case readiness >= 85 && cns >= 90:
		return "push"
	case readiness >= 65:
		return "normal"
	case readiness >= 50:
		return "reduced"
	case readiness >= 35:
		return "minimal"
	default:
		return "rest"
	}
}

func matchPhase(days *int) string {
	if days == nil || *days < 0 {
		return "none"
	}
	switch d := *days; {
	case d == 0:
		return "match_day"
	case d == 1:
		return "pre_match"
	case d <= 3:
		return "taper"
	case d <= 7:
		return "build"
	default:
		return "none"
	}
}

func recoveryStatus(cns float64, fatigued int) string {
	switch {
	case cns < 50 || fatigued >= 3:
		return "fatigued"
	case cns < 80 || fatigued > 0:
		return "partial"
	default:
		return "recovered"
	}
}

func methodComplexity(s Snapshot) string {
	stressed := s.Stress == "high" || s.Stress == "very_high"
	switch {
	case s.Profile.Experience == models.Beginner || stressed || s.Readiness < 50:
		return "simple"
	case (s.Profile.Experience == models.Advanced || s.Profile.Experience == models.Elite) && s.Readiness >= 70:
		return "advanced"
	default:
		return "standard"
	}
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
