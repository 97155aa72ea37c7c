package reasoning

import (
	"fmt"
	"strings"
)

// Severity ranks a problem
type Severity string

const (
	SeverityCritical  Severity = "critical"
	SeverityImportant Severity = "important"
	SeverityModerate  Severity = "moderate"
)

// Problem is a constraint detected in the snapshot
type Problem struct {
	ID          string   `json:"id"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Constraint  string   `json:"constraint"`
	Resolution  string   `json:"resolution_tag"`
}

// check is one independent predicate in the problem battery
type check struct {
	id         string
	severity   Severity
	category   string
	resolution string
	fires      func(s *Snapshot) bool
	describe   func(s *Snapshot) (description, constraint string)
}

// Problem thresholds
const (
	ACWRSpike          = 1.5
	MinSleepHours      = 5.0
	LowReadiness       = 40.0
	SoreMuscleLimit    = 3
	DepletedCNS        = 40.0
	ShortSessionMinute = 30
	HighMonotony       = 2.0
)

func daysToEventIs(s *Snapshot, d int) bool {
	return s.DaysToEvent != nil && *s.DaysToEvent == d
}

// battery lists every check. Order does not matter; none suppresses another.
var battery = []check{
	{
		id: "active_injury", severity: SeverityCritical, category: "injury", resolution: "rest_or_rehab",
		fires: func(s *Snapshot) bool { return s.ActiveInjury },
		describe: func(s *Snapshot) (string, string) {
			return "Active injury reported", "No loading of the injured area"
		},
	},
	{
		id: "acwr_spike", severity: SeverityCritical, category: "load", resolution: "deload",
		fires: func(s *Snapshot) bool { return s.ACWR > ACWRSpike },
		describe: func(s *Snapshot) (string, string) {
			return fmt.Sprintf("Acute:chronic workload ratio %.2f exceeds %.1f", s.ACWR, ACWRSpike), "No additional training load today"
		},
	},
	{
		id: "match_day", severity: SeverityCritical, category: "competition", resolution: "match_primer",
		fires: func(s *Snapshot) bool { return daysToEventIs(s, 0) },
		describe: func(s *Snapshot) (string, string) {
			return "Competition day", "Only activation or rest before competing"
		},
	},
	{
		id: "pre_match", severity: SeverityImportant, category: "competition", resolution: "taper",
		fires: func(s *Snapshot) bool { return daysToEventIs(s, 1) },
		describe: func(s *Snapshot) (string, string) {
			return "Competition tomorrow", "Keep volume low and avoid new stimuli"
		},
	},
	{
		id: "sleep_deprivation", severity: SeverityImportant, category: "sleep", resolution: "reduce_intensity",
		fires: func(s *Snapshot) bool { return s.SleepHours < MinSleepHours },
		describe: func(s *Snapshot) (string, string) {
			return fmt.Sprintf("Only %.1fh of sleep", s.SleepHours), "Cut intensity substantially"
		},
	},
	{
		id: "low_readiness", severity: SeverityImportant, category: "readiness", resolution: "reduce_load",
		fires: func(s *Snapshot) bool { return s.Readiness < LowReadiness },
		describe: func(s *Snapshot) (string, string) {
			return fmt.Sprintf("Readiness %.0f is below %.0f", s.Readiness, LowReadiness), "Reduce both volume and intensity"
		},
	},
	{
		id: "muscle_soreness", severity: SeverityImportant, category: "soreness", resolution: "avoid_sore_muscles",
		fires: func(s *Snapshot) bool { return len(s.SoreMuscles) >= SoreMuscleLimit },
		describe: func(s *Snapshot) (string, string) {
			return fmt.Sprintf("%d sore muscle groups (%s)", len(s.SoreMuscles), strings.Join(s.SoreMuscles, ", ")), "Avoid loading sore muscle groups"
		},
	},
	{
		id: "cns_depleted", severity: SeverityImportant, category: "recovery", resolution: "avoid_heavy_compounds",
		fires: func(s *Snapshot) bool { return s.CNS < DepletedCNS },
		describe: func(s *Snapshot) (string, string) {
			return fmt.Sprintf("CNS recovery at %.0f%%", s.CNS), "Avoid heavy compound and explosive work"
		},
	},
	{
		id: "elevated_injury_risk", severity: SeverityImportant, category: "injury", resolution: "reduce_load",
		fires: func(s *Snapshot) bool { return s.InjuryRisk.Severe() },
		describe: func(s *Snapshot) (string, string) {
			return fmt.Sprintf("Injury risk is %s", s.InjuryRisk), "Reduce load until risk factors ease"
		},
	},
	{
		id: "time_constrained", severity: SeverityModerate, category: "schedule", resolution: "express_session",
		fires: func(s *Snapshot) bool { return s.AvailableMinutes < ShortSessionMinute },
		describe: func(s *Snapshot) (string, string) {
			return fmt.Sprintf("Only %d minutes available", s.AvailableMinutes), "Session must fit the available time"
		},
	},
	{
		id: "high_stress", severity: SeverityModerate, category: "stress", resolution: "simplify_methods",
		fires: func(s *Snapshot) bool { return s.Stress == "high" || s.Stress == "very_high" },
		describe: func(s *Snapshot) (string, string) {
			return fmt.Sprintf("Stress is %s", strings.ReplaceAll(s.Stress, "_", " ")), "Keep methods simple and steady"
		},
	},
	{
		id: "high_monotony", severity: SeverityModerate, category: "load", resolution: "vary_load",
		fires: func(s *Snapshot) bool { return s.Monotony > HighMonotony },
		describe: func(s *Snapshot) (string, string) {
			return fmt.Sprintf("Training monotony %.2f is high", s.Monotony), "Vary today's load from recent sessions"
		},
	},
}

// IdentifyProblems runs the full battery against the snapshot
func IdentifyProblems(s Snapshot) []Problem {
	problems := []Problem{}
	for _, c := range battery {
		if !c.fires(&s) {
			continue
		}
		desc, constraint := c.describe(&s)
		problems = append(problems, Problem{
			ID:          c.id,
			Severity:    c.severity,
			Category:    c.category,
			Description: desc,
			Constraint:  constraint,
			Resolution:  c.resolution,
		})
	}
	return problems
}

// ProblemCounts tallies problems by severity
type ProblemCounts struct {
	Critical, Important, Moderate int
}

// Count tallies problems by severity
func Count(problems []Problem) ProblemCounts {
	var c ProblemCounts
	for _, p := range problems {
		switch p.Severity {
		case SeverityCritical:
			c.Critical++
		case SeverityImportant:
			c.Important++
		case SeverityModerate:
			c.Moderate++
		}
	}
	return c
}

func has(problems []Problem, id string) bool {
	for _, p := range problems {
		if p.ID == id {
			return true
		}
	}
	return false
}
