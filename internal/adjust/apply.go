package adjust

import (
	"math"

	"coach/internal/reasoning"
)

// DefaultWarmupMinutes is used when a session template declares no warm-up
const DefaultWarmupMinutes = 10

// Session is the parameter template the content layer builds exercises from
type Session struct {
	Intensity     float64  `json:"intensity"`
	Volume        float64  `json:"volume"`
	WarmupMinutes int      `json:"warmup_minutes"`
	Methods       []string `json:"methods"`
	Muscles       []string `json:"muscles,omitempty"`
	AvoidMuscles  []string `json:"avoid_muscles"`
}

// SessionFromOption turns a chosen option into an adjustable template
func SessionFromOption(o reasoning.Option) Session {
	warmup := DefaultWarmupMinutes
	if o.Type == reasoning.OptionRest {
		warmup = 0
	}
	return Session{
		Intensity:     o.Intensity,
		Volume:        o.Volume,
		WarmupMinutes: warmup,
		Methods:       append([]string{}, o.PreferredMethods...),
		AvoidMuscles:  append([]string{}, o.Structure.AvoidMuscles...),
	}
}

// Applied is one audit trail entry
type Applied struct {
	RuleID   string   `json:"rule_id"`
	Priority Priority `json:"priority"`
	Reason   string   `json:"reason"`
}

// ModifiedSession is the adjusted template with the original kept for comparison
type ModifiedSession struct {
	Session
	Original     Session   `json:"original"`
	DurationDays int       `json:"duration_days,omitempty"`
	Applied      []Applied `json:"applied"`
}

// Reasons lists the audit trail as text
func (m ModifiedSession) Reasons() []string {
	out := make([]string, 0, len(m.Applied))
	for _, a := range m.Applied {
		out = append(out, a.Reason)
	}
	return out
}

// Apply folds adjustments into the session in order. Multipliers compound, exclusions accumulate
// and the tightest method cap wins. The input session is not modified.
func Apply(s Session, adjustments []Adjustment) ModifiedSession {
	cur := copySession(s)
	m := ModifiedSession{Original: copySession(s), Applied: []Applied{}}

	maxMethods := 0
	var prefer []string
	warmup := float64(cur.WarmupMinutes)

	for _, a := range adjustments {
		cur.Volume *= a.VolumeMultiplier
		cur.Intensity *= a.IntensityMultiplier
		warmup *= a.WarmupMultiplier

		for _, muscle := range a.ExcludeMuscles {
			if !contains(cur.AvoidMuscles, muscle) {
				cur.AvoidMuscles = append(cur.AvoidMuscles, muscle)
			}
		}
		if a.MaxMethods > 0 && (maxMethods == 0 || a.MaxMethods < maxMethods) {
			maxMethods = a.MaxMethods
		}
		for _, p := range a.PreferMethods {
			if !contains(prefer, p) {
				prefer = append(prefer, p)
			}
		}
		if a.DurationDays > m.DurationDays {
			m.DurationDays = a.DurationDays
		}
		m.Applied = append(m.Applied, Applied{RuleID: a.RuleID, Priority: a.Priority, Reason: a.Reason})
	}

	cur.Intensity = clamp01(cur.Intensity)
	cur.Volume = clamp01(cur.Volume)
	cur.WarmupMinutes = int(math.Round(warmup))
	cur.Methods = capMethods(cur.Methods, prefer, maxMethods)
	cur.Muscles = without(cur.Muscles, cur.AvoidMuscles)

	m.Session = cur
	return m
}

// capMethods moves preferred methods to the front, then truncates to limit (0 means no cap)
func capMethods(methods, prefer []string, limit int) []string {
	out := []string{}
	if len(prefer) > 0 && limit > 0 {
		out = append(out, prefer...)
	}
	for _, m := range methods {
		if !contains(out, m) {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func copySession(s Session) Session {
	c := s
	c.Methods = append([]string{}, s.Methods...)
	c.AvoidMuscles = append([]string{}, s.AvoidMuscles...)
	if s.Muscles != nil {
		c.Muscles = append([]string{}, s.Muscles...)
	}
	return c
}

func without(list, drop []string) []string {
	if list == nil {
		return nil
	}
	out := []string{}
	for _, v := range list {
		if !contains(drop, v) {
			out = append(out, v)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
