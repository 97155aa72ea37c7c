package reasoning

import (
	"fmt"
	"strings"
)

// MaxAxisScore is the ceiling of each scoring axis
const MaxAxisScore = 25.0

// Scores are the four independent axes
type Scores struct {
	Safety        float64 `json:"safety"`
	Effectiveness float64 `json:"effectiveness"`
	Feasibility   float64 `json:"feasibility"`
	Adherence     float64 `json:"adherence"`
}

// Total sums the axes
func (s Scores) Total() float64 {
	return s.Safety + s.Effectiveness + s.Feasibility + s.Adherence
}

// EvaluatedOption is an option with its scores and trade-offs
type EvaluatedOption struct {
	Option
	Scores     Scores   `json:"scores"`
	TotalScore float64  `json:"total_score"`
	Pros       []string `json:"pros"`
	Cons       []string `json:"cons"`
}

// needsRecovery reports whether the snapshot favors recovery-type options
func needsRecovery(s Snapshot, c ProblemCounts) bool {
	return c.Critical > 0 || c.Important > 0 || s.Readiness < 50 || s.CNS < 50
}

func safetyScore(o Option, s Snapshot, c ProblemCounts) float64 {
	load := 1 + (100-s.Readiness)/100 + (100-s.CNS)/200
	penalty := 12*o.Intensity*load + o.Intensity*float64(6*c.Critical+3*c.Important+c.Moderate)
	return clamp(MaxAxisScore-penalty, 0, MaxAxisScore)
}

func effectivenessScore(o Option, s Snapshot, c ProblemCounts) float64 {
	v := 8 + 10*(o.Intensity+o.Volume)/2
	if o.Phase != "" && o.Phase == s.Phase {
		v += 5
	}
	if o.Type == OptionSportSpecific {
		v += 4
	}
	if (o.Type == OptionRest || o.Type == OptionRecovery) && needsRecovery(s, c) {
		v += 8
	}
	return clamp(v, 0, MaxAxisScore)
}

func feasibilityScore(o Option, s Snapshot) float64 {
	over := float64(o.Structure.DurationMinutes - s.AvailableMinutes)
	if over <= 0 {
		return MaxAxisScore
	}
	penalty := over / 2
	if penalty > 20 {
		penalty = 20
	}
	return MaxAxisScore - penalty
}

func matches(list []string, method string) bool {
	for _, m := range list {
		if strings.EqualFold(strings.TrimSpace(m), method) {
			return true
		}
	}
	return false
}

func adherenceScore(o Option, s Snapshot) (float64, []string, []string) {
	v := 15.0
	var liked, disliked []string
	for _, m := range o.PreferredMethods {
		if matches(s.Profile.LikedMethods, m) {
			v += 4
			liked = append(liked, m)
		}
		if matches(s.Profile.DislikedMethods, m) {
			v -= 5
			disliked = append(disliked, m)
		}
	}

	training := o.Type == OptionTraining || o.Type == OptionSportSpecific
	switch s.Motivation {
	case "high", "very_high":
		if training {
			v += 3
		}
	case "low", "very_low":
		if training && o.Intensity >= 0.7 {
			v -= 3
		}
		if !training {
			v += 3
		}
	}
	return clamp(v, 0, MaxAxisScore), liked, disliked
}

// Evaluate scores every option on safety, effectiveness, feasibility and adherence
func Evaluate(s Snapshot, problems []Problem, options []Option) []EvaluatedOption {
	c := Count(problems)
	out := make([]EvaluatedOption, 0, len(options))
	for _, o := range options {
		adherence, liked, disliked := adherenceScore(o, s)
		sc := Scores{
			Safety:        safetyScore(o, s, c),
			Effectiveness: effectivenessScore(o, s, c),
			Feasibility:   feasibilityScore(o, s),
			Adherence:     adherence,
		}
		eo := EvaluatedOption{Option: o, Scores: sc, TotalScore: sc.Total()}
		eo.Pros, eo.Cons = tradeoffs(o, s, c, sc, liked, disliked)
		out = append(out, eo)
	}
	return out
}

func tradeoffs(o Option, s Snapshot, c ProblemCounts, sc Scores, liked, disliked []string) ([]string, []string) {
	pros, cons := []string{}, []string{}

	switch {
	case sc.Safety >= 20:
		pros = append(pros, "Low injury risk at current readiness")
	case sc.Safety < 12:
		cons = append(cons, "High load relative to current readiness")
	}

	switch {
	case sc.Effectiveness >= 20:
		pros = append(pros, "Strong stimulus for today's priorities")
	case sc.Effectiveness < 12:
		cons = append(cons, "Limited training stimulus")
	}

	if o.Phase != "" && o.Phase == s.Phase {
		pros = append(pros, fmt.Sprintf("Aligned with the %s phase", s.Phase))
	}
	if o.Type == OptionSportSpecific {
		pros = append(pros, "Transfers directly to "+SportCategory(s.Profile.Sport))
	}
	if (o.Type == OptionRest || o.Type == OptionRecovery) && needsRecovery(s, c) {
		pros = append(pros, "Prioritizes recovery")
	}

	if sc.Feasibility < MaxAxisScore {
		cons = append(cons, fmt.Sprintf("Needs about %d min but only %d available", o.Structure.DurationMinutes, s.AvailableMinutes))
	} else if o.Structure.DurationMinutes > 0 {
		pros = append(pros, "Fits in the available time")
	}

	if len(liked) > 0 {
		pros = append(pros, "Uses methods you enjoy: "+strings.Join(liked, ", "))
	}
	if len(disliked) > 0 {
		cons = append(cons, "Includes methods you dislike: "+strings.Join(disliked, ", "))
	}
	return pros, cons
}
