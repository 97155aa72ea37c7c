package risk

import "fmt"

// InjuryInputs feed the injury model. Nil pointers are unknown and contribute nothing.
type InjuryInputs struct {
	ACWR          *float64
	Monotony      *float64
	SleepAverage  *float64
	Stress        *float64 // 0..10
	PriorInjuries int
}

// CalculateInjury scores injury risk from workload ratio, monotony, sleep, stress and injury history
func CalculateInjury(in InjuryInputs) (Assessment, error) {
	for name, v := range map[string]*float64{"acwr": in.ACWR, "monotony": in.Monotony, "sleep_average": in.SleepAverage, "stress": in.Stress} {
		if v != nil {
			if err := nonNegative(name, *v); err != nil {
				return Assessment{}, err
			}
		}
	}
	if err := nonNegative("prior_injuries", float64(in.PriorInjuries)); err != nil {
		return Assessment{}, err
	}

	s := &scorer{model: "injury"}

	if in.ACWR != nil {
		acwr := *in.ACWR
		switch {
		case acwr > 1.5:
			s.add(35, fmt.Sprintf("Acute:chronic workload ratio %.2f is in the danger zone (>1.5)", acwr),
				Action{PriorityImmediate, "deload", "Cut weekly volume by about half until the ratio drops below 1.3"})
		case acwr > 1.3:
			s.add(20, fmt.Sprintf("Acute:chronic workload ratio %.2f is elevated (>1.3)", acwr),
				Action{PriorityHigh, "reduce_volume", "Hold or reduce volume this week instead of progressing"})
		case acwr < 0.8:
			s.add(10, fmt.Sprintf("Acute:chronic workload ratio %.2f means you are undertrained relative to your baseline", acwr),
				Action{PriorityLow, "rebuild_gradually", "Build load back gradually rather than jumping to previous volumes"})
		}
	}

	if in.Monotony != nil {
		m := *in.Monotony
		switch {
		case m > 2.5:
			s.add(20, fmt.Sprintf("Training monotony %.2f is very high", m),
				Action{PriorityHigh, "vary_load", "Alternate hard and easy days to break up identical daily loads"})
		case m > 2.0:
			s.add(10, fmt.Sprintf("Training monotony %.2f is high", m),
				Action{PriorityMedium, "vary_load", "Add an easier day between hard sessions"})
		}
	}

	if in.SleepAverage != nil {
		sl := *in.SleepAverage
		switch {
		case sl < 6:
			s.add(20, fmt.Sprintf("Average sleep %.1fh is well below recovery needs", sl),
				Action{PriorityHigh, "prioritize_sleep", "Aim for at least 7 hours before adding intensity"})
		case sl < 7:
			s.add(10, fmt.Sprintf("Average sleep %.1fh is slightly short", sl),
				Action{PriorityMedium, "prioritize_sleep", "Add 30-60 minutes of sleep where possible"})
		}
	}

	if in.Stress != nil {
		st := *in.Stress
		switch {
		case st >= 8:
			s.add(15, fmt.Sprintf("Life stress is very high (%.1f/10)", st),
				Action{PriorityMedium, "manage_stress", "Favor steady-state work and shorter sessions"})
		case st >= 6:
			s.add(8, fmt.Sprintf("Life stress is elevated (%.1f/10)", st),
				Action{PriorityLow, "manage_stress", "Keep session complexity low"})
		}
	}

	if in.PriorInjuries > 0 {
		pts := 5 * float64(in.PriorInjuries)
		if pts > 15 {
			pts = 15
		}
		s.add(pts, fmt.Sprintf("%d prior injuries on record", in.PriorInjuries),
			Action{PriorityMedium, "prehab", "Include targeted prehab for previously injured areas"})
	}

	if s.score >= 50 {
		s.actions = append(s.actions, Action{PriorityImmediate, "immediate_deload", "Combined injury risk is high: take a deload week now"})
	}
	return s.finish(), nil
}

// PlateauInputs feed the plateau model
type PlateauInputs struct {
	WeeksWithoutProgress int
	WeeksOnProgram       int
	VarietyRatio         *float64 // distinct exercises / total exercises
	WeeksSinceDeload     int
}

// CalculatePlateau scores the risk of stalled progress
func CalculatePlateau(in PlateauInputs) (Assessment, error) {
	for name, v := range map[string]int{
		"weeks_without_progress": in.WeeksWithoutProgress,
		"weeks_on_program":       in.WeeksOnProgram,
		"weeks_since_deload":     in.WeeksSinceDeload,
	} {
		if err := nonNegative(name, float64(v)); err != nil {
			return Assessment{}, err
		}
	}
	if in.VarietyRatio != nil {
		if err := nonNegative("variety_ratio", *in.VarietyRatio); err != nil {
			return Assessment{}, err
		}
	}

	s := &scorer{model: "plateau"}

	switch w := in.WeeksWithoutProgress; {
	case w >= 6:
		s.add(35, fmt.Sprintf("No measurable progress for %d weeks", w),
			Action{PriorityHigh, "change_stimulus", "Switch rep ranges or main lifts for the next block"})
	case w >= 3:
		s.add(20, fmt.Sprintf("Progress has stalled for %d weeks", w),
			Action{PriorityMedium, "adjust_progression", "Use smaller load jumps or add a back-off set"})
	}

	switch w := in.WeeksOnProgram; {
	case w >= 12:
		s.add(25, fmt.Sprintf("Same program for %d weeks", w),
			Action{PriorityHigh, "new_program", "Start a new training block with different emphasis"})
	case w >= 8:
		s.add(15, fmt.Sprintf("Same program for %d weeks", w),
			Action{PriorityMedium, "vary_program", "Rotate accessory exercises"})
	}

	if in.VarietyRatio != nil {
		switch v := *in.VarietyRatio; {
		case v < 0.3:
			s.add(20, fmt.Sprintf("Exercise variety is very low (%.0f%%)", v*100),
				Action{PriorityMedium, "add_variety", "Introduce new exercise variations"})
		case v < 0.5:
			s.add(10, fmt.Sprintf("Exercise variety is limited (%.0f%%)", v*100),
				Action{PriorityLow, "add_variety", "Swap one or two accessories"})
		}
	}

	switch w := in.WeeksSinceDeload; {
	case w >= 10:
		s.add(20, fmt.Sprintf("%d weeks since the last deload", w),
			Action{PriorityHigh, "schedule_deload", "Plan a deload week to allow supercompensation"})
	case w >= 6:
		s.add(10, fmt.Sprintf("%d weeks since the last deload", w),
			Action{PriorityLow, "schedule_deload", "Schedule a deload within the next two weeks"})
	}

	if s.score >= 50 {
		s.actions = append(s.actions, Action{PriorityHigh, "program_variation", "Plateau risk is high: vary the program and change the stimulus"})
	}
	return s.finish(), nil
}

// BurnoutInputs feed the burnout model
type BurnoutInputs struct {
	AdherenceTrend   float64 // change in sessions per week, negative when declining
	AverageReadiness *float64
	AverageRPE       *float64
	ConsecutiveDays  int
}

// CalculateBurnout scores the risk of overreaching and motivational burnout
func CalculateBurnout(in BurnoutInputs) (Assessment, error) {
	if err := nonNegative("consecutive_days", float64(in.ConsecutiveDays)); err != nil {
		return Assessment{}, err
	}
	for name, v := range map[string]*float64{"average_readiness": in.AverageReadiness, "average_rpe": in.AverageRPE} {
		if v != nil {
			if err := nonNegative(name, *v); err != nil {
				return Assessment{}, err
			}
		}
	}

	s := &scorer{model: "burnout"}

	switch t := in.AdherenceTrend; {
	case t < -0.1:
		s.add(25, "Adherence is declining sharply",
			Action{PriorityHigh, "reduce_commitment", "Drop to fewer, shorter sessions you can sustain"})
	case t < 0:
		s.add(10, "Adherence is slipping",
			Action{PriorityLow, "check_motivation", "Revisit goals and favorite training methods"})
	}

	if in.AverageReadiness != nil {
		switch r := *in.AverageReadiness; {
		case r < 50:
			s.add(25, fmt.Sprintf("Average readiness %.0f is low", r),
				Action{PriorityHigh, "rest", "Take two or more full rest days"})
		case r < 65:
			s.add(12, fmt.Sprintf("Average readiness %.0f is below normal", r),
				Action{PriorityMedium, "lighten_week", "Keep intensity moderate this week"})
		}
	}

	if in.AverageRPE != nil {
		switch e := *in.AverageRPE; {
		case e >= 8.5:
			s.add(20, fmt.Sprintf("Average session effort is very high (RPE %.1f)", e),
				Action{PriorityHigh, "lower_effort", "Leave more reps in reserve"})
		case e >= 7.5:
			s.add(10, fmt.Sprintf("Average session effort is high (RPE %.1f)", e),
				Action{PriorityLow, "lower_effort", "Add easier sessions between hard ones"})
		}
	}

	switch d := in.ConsecutiveDays; {
	case d >= 10:
		s.add(30, fmt.Sprintf("%d consecutive training days without rest", d),
			Action{PriorityImmediate, "rest_day", "Take a rest day today"})
	case d >= 6:
		s.add(15, fmt.Sprintf("%d consecutive training days without rest", d),
			Action{PriorityMedium, "rest_day", "Schedule a rest day in the next 48 hours"})
	}

	if s.score >= 50 {
		s.actions = append(s.actions, Action{PriorityImmediate, "mandatory_rest", "Burnout risk is high: mandatory rest followed by a volume reset"})
	}
	return s.finish(), nil
}
