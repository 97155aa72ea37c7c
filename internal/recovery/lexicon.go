package recovery

import (
	"sort"
	"strings"

	"coach/internal/models"
)

// LexiconVersion identifies the keyword table below. Bump it whenever a rule changes.
const LexiconVersion = "4"

// Muscle group keys
const (
	Quadriceps = "quadriceps"
	Hamstrings = "hamstrings"
	Glutes     = "glutes"
	LowerBack  = "lower_back"
	Back       = "back"
	Chest      = "chest"
	Shoulders  = "shoulders"
	Biceps     = "biceps"
	Triceps    = "triceps"
	Calves     = "calves"
	Core       = "core"
)

// MuscleGroups lists every muscle key the model reports on
var MuscleGroups = []string{
	Quadriceps, Hamstrings, Glutes, LowerBack, Back, Chest,
	Shoulders, Biceps, Triceps, Calves, Core,
}

// Pattern is the movement class of an exercise, used for CNS cost
type Pattern string

const (
	PatternOlympic    Pattern = "olympic"
	PatternDeadlift   Pattern = "deadlift"
	PatternSquat      Pattern = "squat"
	PatternPlyometric Pattern = "plyometric"
	PatternCompound   Pattern = "compound"
	PatternIsolation  Pattern = "isolation"
	PatternCore       Pattern = "core"
	PatternMobility   Pattern = "mobility"
	PatternUnknown    Pattern = "unknown"
)

// cnsImpact is the per-pattern CNS cost coefficient
var cnsImpact = map[Pattern]float64{
	PatternOlympic:    1.0,
	PatternDeadlift:   1.0,
	PatternSquat:      0.85,
	PatternPlyometric: 0.7,
	PatternCompound:   0.6,
	PatternIsolation:  0.3,
	PatternCore:       0.15,
	PatternMobility:   0.1,
	PatternUnknown:    0.4,
}

// Impact returns the CNS coefficient for p
func Impact(p Pattern) float64 {
	if v, ok := cnsImpact[p]; ok {
		return v
	}
	return cnsImpact[PatternUnknown]
}

// keywordRule maps name keywords onto muscles and a movement pattern.
// Muscles accumulate over every matching rule; the first match decides the pattern,
// so specific rules must stay above generic ones.
type keywordRule struct {
	keywords []string
	exclude  []string
	muscles  []string
	pattern  Pattern
}

var lexicon = []keywordRule{
	{keywords: []string{"clean", "snatch", "jerk"}, muscles: []string{Quadriceps, Glutes, Back, Shoulders}, pattern: PatternOlympic},
	{keywords: []string{"romanian", "rdl", "stiff leg"}, muscles: []string{Hamstrings, Glutes, LowerBack}, pattern: PatternDeadlift},
	{keywords: []string{"deadlift"}, muscles: []string{Hamstrings, Glutes, LowerBack, Back}, pattern: PatternDeadlift},
	{keywords: []string{"leg press", "hack squat"}, muscles: []string{Quadriceps, Glutes}, pattern: PatternCompound},
	{keywords: []string{"lunge", "split squat", "step up", "step-up"}, muscles: []string{Quadriceps, Glutes}, pattern: PatternCompound},
	{keywords: []string{"squat"}, muscles: []string{Quadriceps, Glutes}, pattern: PatternSquat},
	{keywords: []string{"hip thrust", "glute bridge"}, muscles: []string{Glutes, Hamstrings}, pattern: PatternCompound},
	{keywords: []string{"leg curl", "nordic"}, muscles: []string{Hamstrings}, pattern: PatternIsolation},
	{keywords: []string{"leg extension"}, muscles: []string{Quadriceps}, pattern: PatternIsolation},
	{keywords: []string{"jump", "bound", "sprint", "plyo"}, muscles: []string{Quadriceps, Calves, Glutes}, pattern: PatternPlyometric},
	{keywords: []string{"bench", "push-up", "push up", "pushup", "chest press", "dip"}, exclude: []string{"tricep dip"}, muscles: []string{Chest, Triceps, Shoulders}, pattern: PatternCompound},
	{keywords: []string{"fly", "flye", "crossover"}, muscles: []string{Chest}, pattern: PatternIsolation},
	{keywords: []string{"overhead press", "military", "shoulder press", "push press"}, muscles: []string{Shoulders, Triceps}, pattern: PatternCompound},
	{keywords: []string{"pull-up", "pullup", "pull up", "chin-up", "chinup", "chin up", "lat pulldown", "pulldown"}, muscles: []string{Back, Biceps}, pattern: PatternCompound},
	{keywords: []string{"row"}, muscles: []string{Back, Biceps}, pattern: PatternCompound},
	{keywords: []string{"lateral raise", "front raise", "rear delt", "face pull"}, muscles: []string{Shoulders}, pattern: PatternIsolation},
	{keywords: []string{"curl"}, exclude: []string{"leg curl"}, muscles: []string{Biceps}, pattern: PatternIsolation},
	{keywords: []string{"tricep", "skull", "pushdown", "extension"}, exclude: []string{"leg extension", "back extension", "hip extension", "hyperextension"}, muscles: []string{Triceps}, pattern: PatternIsolation},
	{keywords: []string{"calf"}, muscles: []string{Calves}, pattern: PatternIsolation},
	{keywords: []string{"back extension", "hyperextension", "good morning"}, muscles: []string{LowerBack, Hamstrings}, pattern: PatternIsolation},
	{keywords: []string{"plank", "crunch", "sit-up", "situp", "ab ", "abs", "core", "pallof", "carry"}, muscles: []string{Core}, pattern: PatternCore},
	{keywords: []string{"stretch", "mobility", "yoga", "foam", "flow"}, pattern: PatternMobility},
}

// typePatterns maps explicit exercise type tags onto patterns
var typePatterns = map[string]Pattern{
	"olympic":    PatternOlympic,
	"plyometric": PatternPlyometric,
	"compound":   PatternCompound,
	"isolation":  PatternIsolation,
	"core":       PatternCore,
	"mobility":   PatternMobility,
}

func (r keywordRule) matches(name string) bool {
	for _, ex := range r.exclude {
		if strings.Contains(name, ex) {
			return false
		}
	}
	for _, kw := range r.keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Classify infers the muscle groups an exercise name trains. The result is sorted.
func Classify(name string) []string {
	n := " " + strings.ToLower(name) + " "
	set := make(map[string]bool)
	for _, r := range lexicon {
		if !r.matches(n) {
			continue
		}
		for _, m := range r.muscles {
			set[m] = true
		}
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// PatternOf returns the movement pattern of an exercise
func PatternOf(ex models.Exercise) Pattern {
	if p, ok := typePatterns[strings.ToLower(ex.Type)]; ok {
		return p
	}
	n := " " + strings.ToLower(ex.Name) + " "
	for _, r := range lexicon {
		if r.matches(n) {
			return r.pattern
		}
	}
	return PatternUnknown
}

// SessionMuscles returns the muscles a workout trained, using explicit tags when present
func SessionMuscles(w models.WorkoutRecord) []string {
	set := make(map[string]bool)
	if len(w.Muscles) > 0 {
		for _, m := range w.Muscles {
			set[strings.ToLower(m)] = true
		}
	} else {
		for _, ex := range w.Exercises {
			for _, m := range Classify(ex.Name) {
				set[m] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
