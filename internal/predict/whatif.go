package predict

import (
	"fmt"

	"coach/internal/recovery"
)

// EventProximityDays is the window in which what-if scoring favors CNS preservation
const EventProximityDays = 3

// WhatIf is the comparison of two candidate sessions
type WhatIf struct {
	A           *Prediction `json:"a"`
	B           *Prediction `json:"b"`
	ScoreA      float64     `json:"score_a"`
	ScoreB      float64     `json:"score_b"`
	Recommended string      `json:"recommended"` // "A" or "B"
	Reason      string      `json:"reason"`
}

// CompareWhatIf projects both candidates and recommends the one with better next-day readiness.
// With an event within three days the score is weighted toward CNS. Ties go to A.
func CompareWhatIf(in Input, a, b Params, daysToEvent *int) WhatIf {
	pa := project(in.State, a, nil, in.Sources)
	pb := project(in.State, b, nil, in.Sources)

	nearEvent := daysToEvent != nil && *daysToEvent >= 0 && *daysToEvent <= EventProximityDays
	score := func(p *Prediction) float64 {
		tp := p.At(24)
		if nearEvent {
			return 0.7*tp.CNS + 0.3*tp.Readiness
		}
		return tp.Readiness
	}

	w := WhatIf{A: pa, B: pb, ScoreA: score(pa), ScoreB: score(pb), Recommended: "A"}
	if w.ScoreB > w.ScoreA {
		w.Recommended = "B"
	}

	basis := "next-day readiness"
	if nearEvent {
		basis = "CNS preservation before the event"
	}
	winner, loser := w.ScoreA, w.ScoreB
	if w.Recommended == "B" {
		winner, loser = loser, winner
	}
	w.Reason = fmt.Sprintf("Option %s scores %.1f vs %.1f on %s", w.Recommended, winner, loser, basis)
	return w
}

// DayForecast is one day of a simulated plan
type DayForecast struct {
	Day        int         `json:"day"`
	Params     Params      `json:"params"`
	Prediction *Prediction `json:"prediction"`
	CNS        float64     `json:"cns"`       // at the start of the next day
	Readiness  float64     `json:"readiness"` // at the start of the next day
}

// SimulateWeek chains single-day projections, feeding each day's +24h state into the next day
func SimulateWeek(in Input, plan []Params) []DayForecast {
	state := in.State
	out := make([]DayForecast, 0, len(plan))
	for i, p := range plan {
		pred := project(state, p, nil, in.Sources)
		tp := pred.At(24)
		out = append(out, DayForecast{
			Day:        i + 1,
			Params:     p,
			Prediction: pred,
			CNS:        tp.CNS,
			Readiness:  tp.Readiness,
		})
		state = pred.StateAfter(24)
	}
	return out
}

// RestPlan returns a plan of n rest days
func RestPlan(n int) []Params {
	plan := make([]Params, n)
	for i := range plan {
		plan[i] = Params{Intensity: IntensityVeryLow, Volume: VolumeNone}
	}
	return plan
}

// FinalState returns the state after the last simulated day, or start when the plan is empty
func FinalState(start *recovery.State, days []DayForecast) *recovery.State {
	if len(days) == 0 {
		return start
	}
	return days[len(days)-1].Prediction.StateAfter(24)
}
