package reasoning

import (
	"strings"

	"coach/internal/models"
)

// OptionType is the kind of action an option proposes
type OptionType string

const (
	OptionRest          OptionType = "rest"
	OptionRecovery      OptionType = "recovery"
	OptionTraining      OptionType = "training"
	OptionSportSpecific OptionType = "sport_specific"
)

// Structure is the session shape handed to the content layer
type Structure struct {
	RepRange        string   `json:"rep_range,omitempty"`
	Sets            int      `json:"sets,omitempty"`
	RestSeconds     int      `json:"rest_seconds,omitempty"`
	DurationMinutes int      `json:"duration_minutes"`
	Focus           string   `json:"focus,omitempty"`
	AvoidMuscles    []string `json:"avoid_muscles,omitempty"`
}

// Option is one candidate course of action
type Option struct {
	ID               string       `json:"id"`
	Type             OptionType   `json:"type"`
	Name             string       `json:"name"`
	Rationale        string       `json:"rationale"`
	Intensity        float64      `json:"intensity"`
	Volume           float64      `json:"volume"`
	PreferredMethods []string     `json:"preferred_methods"`
	Structure        Structure    `json:"structure"`
	Phase            models.Phase `json:"phase,omitempty"`
}

type phaseDefaults struct {
	intensity, volume float64
	repRange          string
	sets, rest        int
	minutes           int
	methods           []string
	focus             string
}

var phaseTable = map[models.Phase]phaseDefaults{
	models.PhaseAccumulation:    {0.65, 0.85, "8-12", 4, 90, 60, []string{"straight_sets", "supersets"}, "volume and work capacity"},
	models.PhaseIntensification: {0.8, 0.65, "4-6", 4, 150, 55, []string{"straight_sets", "cluster_sets"}, "strength under heavier loads"},
	models.PhaseRealization:     {0.9, 0.4, "1-3", 3, 180, 45, []string{"straight_sets", "heavy_singles"}, "peak expression of strength"},
	models.PhaseDeload:          {0.5, 0.4, "8-10", 2, 60, 35, []string{"straight_sets", "tempo"}, "recovery while keeping movement quality"},
}

// Express session threshold and limits applied to reduced options
const (
	ExpressThresholdMinutes = 40
	maxReducedIntensity     = 0.45
)

// Sleep below RestedSleepHours scales training intensity down by SleepIntensityStep per missing hour
const (
	RestedSleepHours   = 7.0
	SleepIntensityStep = 0.1
	MinSleepIntensity  = 0.6
)

// SleepIntensityFactor is the share of planned intensity a night of the given length supports
func SleepIntensityFactor(hours float64) float64 {
	if hours >= RestedSleepHours {
		return 1
	}
	return clamp(1-SleepIntensityStep*(RestedSleepHours-hours), MinSleepIntensity, 1)
}

type sportStructure struct {
	focus   string
	methods []string
}

var sportStructures = map[string]sportStructure{
	"football":      {"speed, change of direction and repeat sprint ability", []string{"plyometrics", "sprints", "intervals"}},
	"basketball":    {"jumping, landing and lateral agility", []string{"plyometrics", "agility", "intervals"}},
	"rugby":         {"contact strength and repeat efforts", []string{"strongman", "intervals", "plyometrics"}},
	"tennis":        {"rotational power and footwork", []string{"med_ball", "agility", "intervals"}},
	"running":       {"running economy and posterior chain resilience", []string{"tempo_runs", "plyometrics", "steady_state"}},
	"cycling":       {"leg strength endurance", []string{"intervals", "steady_state"}},
	"swimming":      {"shoulder stability and pulling endurance", []string{"circuit", "steady_state"}},
	"combat":        {"grip, neck and anaerobic conditioning", []string{"circuit", "intervals"}},
	"weightlifting": {"snatch and clean & jerk technique", []string{"technique", "heavy_singles"}},
	"powerlifting":  {"competition lift specificity", []string{"straight_sets", "pause_reps"}},
}

var sportAliases = map[string]string{
	"soccer":     "football",
	"futbol":     "football",
	"hoops":      "basketball",
	"track":      "running",
	"marathon":   "running",
	"bjj":        "combat",
	"mma":        "combat",
	"boxing":     "combat",
	"wrestling":  "combat",
	"olympic":    "weightlifting",
	"powerlift":  "powerlifting",
	"triathlon":  "cycling",
	"swim":       "swimming",
	"road_cycle": "cycling",
}

// SportCategory resolves a sport key, falling back to "general" for unknown sports
func SportCategory(sport string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(sport)), " ", "_")
	if alias, ok := sportAliases[key]; ok {
		key = alias
	}
	if _, ok := sportStructures[key]; ok {
		return key
	}
	return "general"
}

var simpleMethods = map[string]bool{
	"straight_sets": true, "steady_state": true, "mobility": true, "technique": true,
	"tempo": true, "activation": true, "breathing": true, "intervals": true,
}

// simplify replaces advanced methods with straight sets when the athlete needs low complexity
func simplify(methods []string, complexity string) []string {
	if complexity != "simple" {
		return methods
	}
	out := []string{}
	seen := make(map[string]bool)
	for _, m := range methods {
		if !simpleMethods[m] {
			m = "straight_sets"
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

func avoidList(s Snapshot) []string {
	set := make(map[string]bool)
	var out []string
	for _, list := range [][]string{s.SoreMuscles, s.FatiguedMuscles} {
		for _, m := range list {
			if !set[m] {
				set[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}

// GenerateOptions builds candidates according to the most severe problem class present
func GenerateOptions(s Snapshot, problems []Problem) []Option {
	counts := Count(problems)
	switch {
	case counts.Critical > 0:
		return restOptions(s, problems)
	case counts.Important > 0:
		return reducedOptions(s, problems)
	default:
		return trainingOptions(s)
	}
}

func restOptions(s Snapshot, problems []Problem) []Option {
	opts := []Option{{
		ID:               "rest",
		Type:             OptionRest,
		Name:             "Full rest",
		Rationale:        "A critical constraint rules out training load today",
		PreferredMethods: []string{},
		Structure:        Structure{DurationMinutes: 0, Focus: "recovery"},
	}}

	if has(problems, "match_day") {
		return append(opts, Option{
			ID:               "match_primer",
			Type:             OptionRecovery,
			Name:             "Pre-competition primer",
			Rationale:        "Short activation to prime movement without fatigue on competition day",
			Intensity:        0,
			Volume:           0.1,
			PreferredMethods: []string{"activation", "mobility"},
			Structure:        Structure{DurationMinutes: 15, Focus: "activation and mobility"},
		})
	}

	return append(opts, Option{
		ID:               "active_recovery",
		Type:             OptionRecovery,
		Name:             "Active recovery",
		Rationale:        "Light movement to promote blood flow while a critical constraint is present",
		Intensity:        0.2,
		Volume:           0.3,
		PreferredMethods: []string{"mobility", "steady_state"},
		Structure:        Structure{DurationMinutes: 30, Focus: "mobility and easy aerobic work", AvoidMuscles: avoidList(s)},
	})
}

func reducedOptions(s Snapshot, problems []Problem) []Option {
	pd := phaseTable[s.Phase]
	avoid := avoidList(s)

	sleep := SleepIntensityFactor(s.SleepHours)
	reducedIntensity := pd.intensity * 0.65
	if reducedIntensity > maxReducedIntensity {
		reducedIntensity = maxReducedIntensity
	}
	reducedIntensity *= sleep

	opts := []Option{
		{
			ID:               "reduced_session",
			Type:             OptionTraining,
			Name:             "Reduced " + string(s.Phase) + " session",
			Rationale:        "Keep the training habit with load cut to respect today's constraints",
			Intensity:        reducedIntensity,
			Volume:           pd.volume * 0.6,
			PreferredMethods: simplify(pd.methods, s.Indicators.MethodComplexity),
			Structure: Structure{
				RepRange:        pd.repRange,
				Sets:            max(2, pd.sets-1),
				RestSeconds:     pd.rest,
				DurationMinutes: int(float64(pd.minutes) * 0.7),
				Focus:           pd.focus,
				AvoidMuscles:    avoid,
			},
			Phase: s.Phase,
		},
		{
			ID:               "modified_focus",
			Type:             OptionTraining,
			Name:             "Modified focus session",
			Rationale:        "Shift work to fresh muscle groups and technique",
			Intensity:        0.4 * sleep,
			Volume:           0.5,
			PreferredMethods: []string{"technique", "tempo"},
			Structure: Structure{
				RepRange:        "8-12",
				Sets:            3,
				RestSeconds:     75,
				DurationMinutes: 40,
				Focus:           "technique and fresh muscle groups",
				AvoidMuscles:    avoid,
			},
		},
	}

	if has(problems, "pre_match") {
		opts = append(opts, Option{
			ID:               "pre_match_primer",
			Type:             OptionSportSpecific,
			Name:             "Pre-match sharpening",
			Rationale:        "Brief sport-specific sharpening the day before competition",
			Intensity:        0.45 * sleep,
			Volume:           0.25,
			PreferredMethods: []string{"activation", "agility"},
			Structure:        Structure{DurationMinutes: 30, Focus: "speed and sharpness at low volume"},
		})
	}
	return opts
}

func trainingOptions(s Snapshot) []Option {
	sleep := SleepIntensityFactor(s.SleepHours)
	var opts []Option
	for _, ph := range models.Phases {
		pd := phaseTable[ph]
		rationale := "Periodized " + string(ph) + " work targeting " + pd.focus
		if ph == s.Phase {
			rationale = "Matches the current " + string(ph) + " phase: " + pd.focus
		}
		opts = append(opts, Option{
			ID:               "phase_" + string(ph),
			Type:             OptionTraining,
			Name:             strings.ToUpper(string(ph[:1])) + string(ph[1:]) + " training",
			Rationale:        rationale,
			Intensity:        pd.intensity * sleep,
			Volume:           pd.volume,
			PreferredMethods: simplify(pd.methods, s.Indicators.MethodComplexity),
			Structure: Structure{
				RepRange:        pd.repRange,
				Sets:            pd.sets,
				RestSeconds:     pd.rest,
				DurationMinutes: pd.minutes,
				Focus:           pd.focus,
				AvoidMuscles:    s.SoreMuscles,
			},
			Phase: ph,
		})
	}

	if cat := SportCategory(s.Profile.Sport); cat != "general" {
		ss := sportStructures[cat]
		opts = append(opts, Option{
			ID:               "sport_" + cat,
			Type:             OptionSportSpecific,
			Name:             "Sport-specific " + cat + " session",
			Rationale:        "Transfers strength into " + ss.focus,
			Intensity:        0.7 * sleep,
			Volume:           0.6,
			PreferredMethods: simplify(ss.methods, s.Indicators.MethodComplexity),
			Structure:        Structure{RepRange: "3-6", Sets: 4, RestSeconds: 90, DurationMinutes: 50, Focus: ss.focus, AvoidMuscles: s.SoreMuscles},
		})
	}

	if s.AvailableMinutes < ExpressThresholdMinutes {
		opts = append(opts, Option{
			ID:               "express",
			Type:             OptionTraining,
			Name:             "Express session",
			Rationale:        "Dense session that fits a short time window",
			Intensity:        0.7 * sleep,
			Volume:           0.4,
			PreferredMethods: simplify([]string{"supersets", "circuit"}, s.Indicators.MethodComplexity),
			Structure:        Structure{RepRange: "6-10", Sets: 3, RestSeconds: 45, DurationMinutes: 25, Focus: "compound lifts in supersets", AvoidMuscles: s.SoreMuscles},
			Phase:            s.Phase,
		})
	}

	return opts
}
