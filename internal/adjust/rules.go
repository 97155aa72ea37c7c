// Package adjust rewrites session parameters from independent trigger rules.
package adjust

import (
	"fmt"
	"sort"
	"strings"

	"coach/internal/models"
	"coach/internal/reasoning"
	"coach/internal/recovery"
)

// Priority orders adjustments
type Priority string

const (
	PriorityHigh     Priority = "high"
	PriorityModerate Priority = "moderate"
	PriorityLow      Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityModerate:
		return 1
	default:
		return 2
	}
}

// Context is the rule input
type Context struct {
	ACWR             float64
	WeeksSinceDeload int
	DaysToEvent      *int
	SleepHours       float64
	Readiness        float64
	AverageRPE       *float64
	Stress           string
	ActiveInjury     bool
	Injuries         []string
	SoreMuscles      []string
}

// ContextFromSnapshot builds the rule input from a reasoning snapshot and the aggregates behind it
func ContextFromSnapshot(s reasoning.Snapshot, agg models.Aggregates) Context {
	return Context{
		ACWR:             s.ACWR,
		WeeksSinceDeload: agg.WeeksSinceDeload,
		DaysToEvent:      s.DaysToEvent,
		SleepHours:       s.SleepHours,
		Readiness:        s.Readiness,
		AverageRPE:       agg.AverageRPE,
		Stress:           s.Stress,
		ActiveInjury:     s.ActiveInjury,
		Injuries:         s.Profile.Injuries,
		SoreMuscles:      s.SoreMuscles,
	}
}

// Adjustment is the output of one fired rule. Multipliers of 1 leave a field unchanged.
type Adjustment struct {
	RuleID              string   `json:"rule_id"`
	Priority            Priority `json:"priority"`
	Reason              string   `json:"reason"`
	VolumeMultiplier    float64  `json:"volume_multiplier"`
	IntensityMultiplier float64  `json:"intensity_multiplier"`
	WarmupMultiplier    float64  `json:"warmup_multiplier"`
	ExcludeMuscles      []string `json:"exclude_muscles,omitempty"`
	MaxMethods          int      `json:"max_methods,omitempty"`
	PreferMethods       []string `json:"prefer_methods,omitempty"`
	DurationDays        int      `json:"duration_days,omitempty"`
}

func neutral(id string, p Priority, reason string) Adjustment {
	return Adjustment{
		RuleID:              id,
		Priority:            p,
		Reason:              reason,
		VolumeMultiplier:    1,
		IntensityMultiplier: 1,
		WarmupMultiplier:    1,
	}
}

// Rule is a trigger paired with the adjustment it produces
type Rule struct {
	ID       string
	Priority Priority
	Applies  func(c Context) bool
	Build    func(c Context) Adjustment
}

// Rule thresholds
const (
	DeloadACWR          = 1.4
	DeloadMinWeeks      = 3
	TaperDays           = 4
	SleepDeprivedHours  = 5.0
	WarmupReadiness     = 60.0
	OverloadReadiness   = 85.0
	OverloadMaxRPE      = 7.0
	StressedMaxMethods  = 2
	DeloadDurationInDay = 7
)

// injuryAreas maps common injury locations onto the muscles to keep unloaded
var injuryAreas = map[string][]string{
	"knee":       {recovery.Quadriceps, recovery.Hamstrings},
	"hamstring":  {recovery.Hamstrings},
	"hip":        {recovery.Glutes, recovery.Hamstrings},
	"groin":      {recovery.Glutes, recovery.Quadriceps},
	"ankle":      {recovery.Calves},
	"achilles":   {recovery.Calves},
	"calf":       {recovery.Calves},
	"lower_back": {recovery.LowerBack, recovery.Back},
	"back":       {recovery.Back, recovery.LowerBack},
	"shoulder":   {recovery.Shoulders, recovery.Chest},
	"elbow":      {recovery.Biceps, recovery.Triceps},
	"wrist":      {recovery.Biceps, recovery.Triceps},
	"neck":       {recovery.Shoulders},
	"abdominal":  {recovery.Core},
}

// InjuredMuscles resolves injury tags onto muscle groups. Tags that already name a muscle pass through.
func InjuredMuscles(injuries []string) []string {
	known := make(map[string]bool, len(recovery.MuscleGroups))
	for _, m := range recovery.MuscleGroups {
		known[m] = true
	}

	set := make(map[string]bool)
	for _, inj := range injuries {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(inj)), " ", "_")
		if known[key] {
			set[key] = true
			continue
		}
		for area, muscles := range injuryAreas {
			if strings.Contains(key, area) {
				for _, m := range muscles {
					set[m] = true
				}
			}
		}
	}

	var out []string
	for _, m := range recovery.MuscleGroups {
		if set[m] {
			out = append(out, m)
		}
	}
	return out
}

// Rules is the full rule set, in declaration order
var Rules = []Rule{
	{
		ID: "acwr_deload", Priority: PriorityHigh,
		Applies: func(c Context) bool { return c.ACWR > DeloadACWR && c.WeeksSinceDeload >= DeloadMinWeeks },
		Build: func(c Context) Adjustment {
			a := neutral("acwr_deload", PriorityHigh,
				fmt.Sprintf("Workload ratio %.2f with %d weeks since the last deload: halve volume for a week", c.ACWR, c.WeeksSinceDeload))
			a.VolumeMultiplier = 0.5
			a.DurationDays = DeloadDurationInDay
			return a
		},
	},
	{
		ID: "event_taper", Priority: PriorityHigh,
		Applies: func(c Context) bool {
			return c.DaysToEvent != nil && *c.DaysToEvent >= 0 && *c.DaysToEvent <= TaperDays
		},
		Build: func(c Context) Adjustment {
			d := *c.DaysToEvent
			a := neutral("event_taper", PriorityHigh, fmt.Sprintf("Event in %d day(s): taper volume and intensity", d))
			if d == 0 {
				a.VolumeMultiplier, a.IntensityMultiplier = 0.3, 0.6
				return a
			}
			a.VolumeMultiplier = 0.5 + 0.1*float64(d-1)
			a.IntensityMultiplier = 0.8 + 0.05*float64(d-1)
			return a
		},
	},
	{
		ID: "sleep_deprivation", Priority: PriorityHigh,
		Applies: func(c Context) bool { return c.SleepHours < SleepDeprivedHours },
		Build: func(c Context) Adjustment {
			a := neutral("sleep_deprivation", PriorityHigh, fmt.Sprintf("Only %.1fh of sleep: cut intensity by 40%%", c.SleepHours))
			a.IntensityMultiplier = 0.6
			return a
		},
	},
	{
		ID: "injury_exclusion", Priority: PriorityHigh,
		Applies: func(c Context) bool { return len(InjuredMuscles(c.Injuries)) > 0 },
		Build: func(c Context) Adjustment {
			muscles := InjuredMuscles(c.Injuries)
			a := neutral("injury_exclusion", PriorityHigh, "Keep injured areas unloaded: "+strings.Join(muscles, ", "))
			a.ExcludeMuscles = muscles
			return a
		},
	},
	{
		ID: "high_stress", Priority: PriorityModerate,
		Applies: func(c Context) bool { return c.Stress == "high" || c.Stress == "very_high" },
		Build: func(c Context) Adjustment {
			a := neutral("high_stress", PriorityModerate, "High life stress: at most two methods, biased toward steady-state work")
			a.MaxMethods = StressedMaxMethods
			a.PreferMethods = []string{"steady_state"}
			return a
		},
	},
	{
		ID: "low_readiness_warmup", Priority: PriorityModerate,
		Applies: func(c Context) bool { return c.Readiness < WarmupReadiness },
		Build: func(c Context) Adjustment {
			a := neutral("low_readiness_warmup", PriorityModerate, fmt.Sprintf("Readiness %.0f: extend the warm-up by half", c.Readiness))
			a.WarmupMultiplier = 1.5
			return a
		},
	},
	{
		ID: "sore_muscle_exclusion", Priority: PriorityModerate,
		Applies: func(c Context) bool { return len(c.SoreMuscles) > 0 },
		Build: func(c Context) Adjustment {
			a := neutral("sore_muscle_exclusion", PriorityModerate, "Skip sore muscle groups: "+strings.Join(c.SoreMuscles, ", "))
			a.ExcludeMuscles = append([]string(nil), c.SoreMuscles...)
			return a
		},
	},
	{
		ID: "progressive_overload", Priority: PriorityLow,
		Applies: func(c Context) bool {
			return c.Readiness > OverloadReadiness && c.AverageRPE != nil && *c.AverageRPE < OverloadMaxRPE
		},
		Build: func(c Context) Adjustment {
			a := neutral("progressive_overload", PriorityLow,
				fmt.Sprintf("Readiness %.0f with recent effort RPE %.1f: small overload boost", c.Readiness, *c.AverageRPE))
			a.VolumeMultiplier = 1.1
			a.IntensityMultiplier = 1.05
			return a
		},
	},
}

// Evaluate runs every rule against the same context and returns what fired, high priority first.
// Rules of equal priority keep their declaration order.
func Evaluate(c Context) []Adjustment {
	return EvaluateRules(Rules, c)
}

// EvaluateRules is Evaluate over a caller-supplied rule set
func EvaluateRules(rules []Rule, c Context) []Adjustment {
	out := []Adjustment{}
	for _, r := range rules {
		if r.Applies(c) {
			out = append(out, r.Build(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.rank() < out[j].Priority.rank()
	})
	return out
}
