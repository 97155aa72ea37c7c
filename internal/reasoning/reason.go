package reasoning

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"coach/internal/analysis"
	"coach/internal/models"
	"coach/internal/recovery"
	"coach/internal/risk"
)

// HistoryWindowWeeks bounds the aggregates computed from history when none are supplied
const HistoryWindowWeeks = 8

// Decision is the chosen option with its runners-up and explanation
type Decision struct {
	Decision     EvaluatedOption   `json:"decision"`
	Alternatives []EvaluatedOption `json:"alternatives"`
	Reasoning    string            `json:"reasoning"`
	Confidence   float64           `json:"confidence"`
}

// Result carries every intermediate product of a decision cycle
type Result struct {
	Snapshot   Snapshot          `json:"snapshot"`
	Problems   []Problem         `json:"problems"`
	Options    []EvaluatedOption `json:"options"`
	Decision   Decision          `json:"decision"`
	Recovery   *recovery.State   `json:"recovery"`
	Risk       risk.Report       `json:"risk"`
	Aggregates models.Aggregates `json:"aggregates"`
}

// ConfidenceFromGap maps the lead of the winner over the runner-up onto a 0..100 confidence
func ConfidenceFromGap(gap float64) float64 {
	switch {
	case gap > 15:
		return 95
	case gap > 10:
		return 85
	case gap > 5:
		return 75
	default:
		return 60
	}
}

// Rank sorts options best first: total score, then safety, then lower intensity, then id
func Rank(options []EvaluatedOption) []EvaluatedOption {
	ranked := append([]EvaluatedOption(nil), options...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.Scores.Safety != b.Scores.Safety {
			return a.Scores.Safety > b.Scores.Safety
		}
		if a.Intensity != b.Intensity {
			return a.Intensity < b.Intensity
		}
		return a.ID < b.ID
	})
	return ranked
}

// Decide picks the top-ranked option. options must not be empty.
func Decide(s Snapshot, problems []Problem, options []EvaluatedOption) Decision {
	ranked := Rank(options)
	d := Decision{Decision: ranked[0], Alternatives: []EvaluatedOption{}}

	end := 3
	if end > len(ranked) {
		end = len(ranked)
	}
	d.Alternatives = append(d.Alternatives, ranked[1:end]...)

	d.Confidence = 95
	if len(ranked) > 1 {
		d.Confidence = ConfidenceFromGap(ranked[0].TotalScore - ranked[1].TotalScore)
	}
	d.Reasoning = explain(s, problems, d)
	return d
}

func explain(s Snapshot, problems []Problem, d Decision) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Readiness %.0f/100 (%s), CNS %.0f%%, sleep %.1fh, stress %s, phase %s.",
		s.Readiness, s.Indicators.ReadinessLevel, s.CNS, s.SleepHours, s.Stress, s.Phase)
	if s.DaysToEvent != nil {
		fmt.Fprintf(&b, " Next event in %d day(s).", *s.DaysToEvent)
	}
	b.WriteString("\n")

	if len(problems) == 0 {
		b.WriteString("No constraints detected.\n")
	} else {
		parts := make([]string, 0, len(problems))
		for _, p := range problems {
			parts = append(parts, fmt.Sprintf("[%s] %s", p.Severity, p.Description))
		}
		fmt.Fprintf(&b, "Constraints: %s.\n", strings.Join(parts, "; "))
	}

	o := d.Decision
	fmt.Fprintf(&b, "Chosen: %s (%s, intensity %.0f%%, volume %.0f%%) scoring %.1f/100.\n",
		o.Name, o.Type, o.Intensity*100, o.Volume*100, o.TotalScore)
	if len(o.Pros) > 0 {
		fmt.Fprintf(&b, "Pros: %s.\n", strings.Join(o.Pros, "; "))
	}
	if len(o.Cons) > 0 {
		fmt.Fprintf(&b, "Cons: %s.\n", strings.Join(o.Cons, "; "))
	}
	if len(d.Alternatives) > 0 {
		alts := make([]string, 0, len(d.Alternatives))
		for _, a := range d.Alternatives {
			alts = append(alts, fmt.Sprintf("%s (%.1f)", a.Name, a.TotalScore))
		}
		fmt.Fprintf(&b, "Alternatives: %s.\n", strings.Join(alts, ", "))
	}
	fmt.Fprintf(&b, "Confidence %.0f%%.", d.Confidence)
	return b.String()
}

// Reason runs a full decision cycle. Only a nil or invalid profile is an error;
// every other missing input falls back to a neutral default.
func Reason(profile *models.Profile, ctx Context, history []models.WorkoutRecord, now time.Time) (*Result, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("reasoning: %w", err)
	}

	sleepQuality := ""
	var checkIns []models.CheckIn
	if ctx.CheckIn != nil {
		sleepQuality = ctx.CheckIn.SleepQuality
		checkIns = []models.CheckIn{*ctx.CheckIn}
	}

	factors := recovery.Personalize(*profile, sleepQuality, ctx.Learning)
	state := recovery.ComputeWithFactors(history, factors, now)

	var agg models.Aggregates
	if ctx.Aggregates != nil {
		agg = *ctx.Aggregates
	} else {
		agg = analysis.Summarize(history, checkIns, now, HistoryWindowWeeks)
	}
	if agg.PriorInjuries == 0 {
		agg.PriorInjuries = len(profile.Injuries)
	}

	stress := ""
	if ctx.CheckIn != nil {
		stress = ctx.CheckIn.Stress
	}
	report, err := risk.Run(agg, stress)
	if err != nil {
		return nil, fmt.Errorf("reasoning: %w", err)
	}

	snap := BuildSnapshot(*profile, ctx, agg, state, &report)
	problems := IdentifyProblems(snap)
	options := GenerateOptions(snap, problems)
	evaluated := Evaluate(snap, problems, options)

	return &Result{
		Snapshot:   snap,
		Problems:   problems,
		Options:    Rank(evaluated),
		Decision:   Decide(snap, problems, evaluated),
		Recovery:   state,
		Risk:       report,
		Aggregates: agg,
	}, nil
}
