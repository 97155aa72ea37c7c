// Package risk scores injury, plateau and burnout risk from training-load aggregates.
// Every model is a pure function from an input struct to an Assessment.
package risk

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"coach/internal/models"
)

// ErrNegativeInput is returned when a count or ratio that cannot be negative is
var ErrNegativeInput = errors.New("risk input must not be negative")

// Level is the coarse classification of a risk score
type Level string

const (
	Low      Level = "low"
	Moderate Level = "moderate"
	High     Level = "high"
	Critical Level = "critical"
)

// LevelFor classifies a 0..100 score
func LevelFor(score float64) Level {
	switch {
	case score >= 70:
		return Critical
	case score >= 50:
		return High
	case score >= 25:
		return Moderate
	default:
		return Low
	}
}

// Severe reports whether the level warrants an alert
func (l Level) Severe() bool {
	return l == High || l == Critical
}

// Priority orders recommended actions
type Priority string

const (
	PriorityImmediate Priority = "immediate"
	PriorityHigh      Priority = "high"
	PriorityMedium    Priority = "medium"
	PriorityLow       Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityImmediate:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// Action is a recommended response to a risk factor
type Action struct {
	Priority    Priority `json:"priority"`
	Action      string   `json:"action"`
	Description string   `json:"description"`
}

// Assessment is the output shared by all risk models
type Assessment struct {
	Model   string   `json:"model"`
	Score   float64  `json:"risk_score"`
	Level   Level    `json:"risk_level"`
	Reasons []string `json:"contributing_reasons"`
	Actions []Action `json:"recommended_actions"`
}

// scorer accumulates factor points for one model
type scorer struct {
	model   string
	score   float64
	reasons []string
	actions []Action
}

func (s *scorer) add(points float64, reason string, action Action) {
	s.score += points
	s.reasons = append(s.reasons, reason)
	if action.Action != "" {
		s.actions = append(s.actions, action)
	}
}

func (s *scorer) finish() Assessment {
	score := s.score
	if score > 100 {
		score = 100
	}
	actions := append([]Action(nil), s.actions...)
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Priority.rank() < actions[j].Priority.rank()
	})
	reasons := s.reasons
	if reasons == nil {
		reasons = []string{}
	}
	if actions == nil {
		actions = []Action{}
	}
	return Assessment{
		Model:   s.model,
		Score:   score,
		Level:   LevelFor(score),
		Reasons: reasons,
		Actions: actions,
	}
}

// StressScore maps a categorical stress answer onto a 0..10 scale. Unknown answers are moderate.
func StressScore(category string) float64 {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "low":
		return 3
	case "high":
		return 7.5
	case "very_high", "very high":
		return 9
	default:
		return 5
	}
}

// Report bundles the three independent assessments
type Report struct {
	Injury  Assessment `json:"injury_risk"`
	Plateau Assessment `json:"plateau_risk"`
	Burnout Assessment `json:"burnout_risk"`
}

// All returns the assessments in a fixed order
func (r Report) All() []Assessment {
	return []Assessment{r.Injury, r.Plateau, r.Burnout}
}

// Alerts returns the high and critical assessments, highest score first
func (r Report) Alerts() []Assessment {
	var out []Assessment
	for _, a := range r.All() {
		if a.Level.Severe() {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Run evaluates all three models from aggregates and a categorical stress answer
func Run(agg models.Aggregates, stress string) (Report, error) {
	s := StressScore(stress)
	injury, err := CalculateInjury(InjuryInputs{
		ACWR:          agg.ACWR,
		Monotony:      agg.Monotony,
		SleepAverage:  agg.SleepAverage,
		Stress:        &s,
		PriorInjuries: agg.PriorInjuries,
	})
	if err != nil {
		return Report{}, fmt.Errorf("injury risk: %w", err)
	}

	plateau, err := CalculatePlateau(PlateauInputs{
		WeeksWithoutProgress: agg.WeeksWithoutProgress,
		WeeksOnProgram:       agg.WeeksOnProgram,
		VarietyRatio:         agg.VarietyRatio,
		WeeksSinceDeload:     agg.WeeksSinceDeload,
	})
	if err != nil {
		return Report{}, fmt.Errorf("plateau risk: %w", err)
	}

	burnout, err := CalculateBurnout(BurnoutInputs{
		AdherenceTrend:   agg.AdherenceTrend,
		AverageReadiness: agg.AverageReadiness,
		AverageRPE:       agg.AverageRPE,
		ConsecutiveDays:  agg.ConsecutiveDays,
	})
	if err != nil {
		return Report{}, fmt.Errorf("burnout risk: %w", err)
	}

	return Report{Injury: injury, Plateau: plateau, Burnout: burnout}, nil
}

func nonNegative(name string, v float64) error {
	if v < 0 {
		return fmt.Errorf("%w: %s = %v", ErrNegativeInput, name, v)
	}
	return nil
}
