package analysis

import (
	"math"
	"strings"
	"time"

	"coach/internal/models"
)

// Deload detection and phase thresholds
const (
	DeloadLoadRatio     = 0.6 // a week below 60% of the preceding average counts as a deload
	EventRealizationDay = 7
)

// dayIndex returns how many calendar days before now t falls, 0 for today
func dayIndex(t, now time.Time) int {
	y1, m1, d1 := now.Date()
	y2, m2, d2 := t.In(now.Location()).Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(math.Round(a.Sub(b).Hours() / 24))
}

// dailySeries returns loads for the last n days, index 0 being today
func dailySeries(history []models.WorkoutRecord, now time.Time, n int) []float64 {
	series := make([]float64, n)
	for _, w := range history {
		if w.Malformed() {
			continue
		}
		i := dayIndex(w.PerformedAt, now)
		if i < 0 || i >= n {
			continue
		}
		series[i] += SessionLoad(w)
	}
	return series
}

func sum(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}

// ACWR calculates the acute:chronic workload ratio: 7-day load over the weekly average of the last 28 days.
// Returns nil when there is no chronic load.
func ACWR(history []models.WorkoutRecord, now time.Time) *float64 {
	series := dailySeries(history, now, 28)
	chronic := sum(series) / 4
	if chronic == 0 {
		return nil
	}
	r := sum(series[:7]) / chronic
	return &r
}

// Monotony calculates mean / standard deviation of the last 7 daily loads (Foster).
// Returns nil when loads are constant.
func Monotony(history []models.WorkoutRecord, now time.Time) *float64 {
	series := dailySeries(history, now, 7)
	mean := sum(series) / 7

	var variance float64
	for _, x := range series {
		variance += (x - mean) * (x - mean)
	}
	stddev := math.Sqrt(variance / 7)
	if stddev == 0 {
		return nil
	}
	m := mean / stddev
	return &m
}

// Strain is weekly load multiplied by monotony
func Strain(history []models.WorkoutRecord, now time.Time) float64 {
	m := Monotony(history, now)
	if m == nil {
		return 0
	}
	return sum(dailySeries(history, now, 7)) * *m
}

// weeklyLoads returns rolling 7-day loads, index 0 being the week ending today
func weeklyLoads(history []models.WorkoutRecord, now time.Time, weeks int) []float64 {
	series := dailySeries(history, now, weeks*7)
	out := make([]float64, weeks)
	for i := range out {
		out[i] = sum(series[i*7 : (i+1)*7])
	}
	return out
}

// trainedWeeks counts the weeks from the oldest session in the window up to now
func trainedWeeks(history []models.WorkoutRecord, now time.Time, maxWeeks int) int {
	oldest := -1
	for _, w := range history {
		if w.Malformed() {
			continue
		}
		if i := dayIndex(w.PerformedAt, now); i >= 0 && i > oldest {
			oldest = i
		}
	}
	if oldest < 0 {
		return 0
	}
	weeks := oldest/7 + 1
	if weeks > maxWeeks {
		weeks = maxWeeks
	}
	return weeks
}

// WeeksSinceDeload finds the most recent week whose load fell below 60% of the average of the weeks before it.
// Without such a week it returns the number of trained weeks in the window.
func WeeksSinceDeload(history []models.WorkoutRecord, now time.Time, windowWeeks int) int {
	trained := trainedWeeks(history, now, windowWeeks)
	weeks := weeklyLoads(history, now, trained)
	for k := 0; k < len(weeks)-1; k++ {
		prior := weeks[k+1:]
		mean := sum(prior) / float64(len(prior))
		if mean > 0 && weeks[k] < DeloadLoadRatio*mean {
			return k
		}
	}
	return trained
}

// WeeksWithoutProgress counts weeks since the weekly load last set a new high
func WeeksWithoutProgress(history []models.WorkoutRecord, now time.Time, windowWeeks int) int {
	weeks := weeklyLoads(history, now, trainedWeeks(history, now, windowWeeks))
	best := -1.0
	since := 0
	for k := len(weeks) - 1; k >= 0; k-- {
		if weeks[k] > best {
			best = weeks[k]
			since = 0
			continue
		}
		since++
	}
	return since
}

// ConsecutiveDays counts training days in a row ending today, or yesterday when today is a rest day so far
func ConsecutiveDays(history []models.WorkoutRecord, now time.Time) int {
	trained := make([]bool, 60)
	for _, w := range history {
		if w.Malformed() {
			continue
		}
		if i := dayIndex(w.PerformedAt, now); i >= 0 && i < len(trained) {
			trained[i] = true
		}
	}

	start := 0
	if !trained[0] {
		start = 1
	}
	n := 0
	for i := start; i < len(trained) && trained[i]; i++ {
		n++
	}
	return n
}

// VarietyRatio is distinct exercise names over total exercises in the last 28 days
func VarietyRatio(history []models.WorkoutRecord, now time.Time) *float64 {
	distinct := make(map[string]bool)
	var total int
	for _, w := range history {
		if w.Malformed() {
			continue
		}
		if i := dayIndex(w.PerformedAt, now); i < 0 || i >= 28 {
			continue
		}
		for _, ex := range w.Exercises {
			distinct[strings.ToLower(strings.TrimSpace(ex.Name))] = true
			total++
		}
	}
	if total == 0 {
		return nil
	}
	r := float64(len(distinct)) / float64(total)
	return &r
}

// AdherenceTrend is the fractional change in sessions between the last two weeks and the two weeks before
func AdherenceTrend(history []models.WorkoutRecord, now time.Time) float64 {
	var recent, prior float64
	for _, w := range history {
		if w.Malformed() {
			continue
		}
		switch i := dayIndex(w.PerformedAt, now); {
		case i >= 0 && i < 14:
			recent++
		case i >= 14 && i < 28:
			prior++
		}
	}
	if prior == 0 {
		return 0
	}
	return (recent - prior) / prior
}

// AverageRPE is the mean reported effort over the last 14 days. Session RPE wins over per-exercise RPE.
func AverageRPE(history []models.WorkoutRecord, now time.Time) *float64 {
	var total float64
	var n int
	for _, w := range history {
		if w.Malformed() {
			continue
		}
		if i := dayIndex(w.PerformedAt, now); i < 0 || i >= 14 {
			continue
		}
		if w.SessionRPE > 0 {
			total += w.SessionRPE
			n++
			continue
		}
		for _, ex := range w.Exercises {
			if ex.RPE > 0 {
				total += ex.RPE
				n++
			}
		}
	}
	if n == 0 {
		return nil
	}
	avg := total / float64(n)
	return &avg
}

// PhaseFor maps weeks since the last deload onto a periodization block.
// An event within a week forces realization.
func PhaseFor(weeksSinceDeload int, daysToEvent *int) models.Phase {
	if daysToEvent != nil && *daysToEvent >= 0 && *daysToEvent <= EventRealizationDay {
		return models.PhaseRealization
	}
	switch {
	case weeksSinceDeload <= 2:
		return models.PhaseAccumulation
	case weeksSinceDeload == 3:
		return models.PhaseIntensification
	case weeksSinceDeload == 4:
		return models.PhaseRealization
	default:
		return models.PhaseDeload
	}
}

// Summarize computes every aggregate the risk and reasoning layers consume.
// Check-ins from the last 7 days feed sleep and readiness averages.
func Summarize(history []models.WorkoutRecord, checkIns []models.CheckIn, now time.Time, windowWeeks int) models.Aggregates {
	agg := models.Aggregates{
		ACWR:                 ACWR(history, now),
		Monotony:             Monotony(history, now),
		Strain:               Strain(history, now),
		ConsecutiveDays:      ConsecutiveDays(history, now),
		WeeksSinceDeload:     WeeksSinceDeload(history, now, windowWeeks),
		WeeksWithoutProgress: WeeksWithoutProgress(history, now, windowWeeks),
		WeeksOnProgram:       trainedWeeks(history, now, windowWeeks),
		VarietyRatio:         VarietyRatio(history, now),
		AdherenceTrend:       AdherenceTrend(history, now),
		AverageRPE:           AverageRPE(history, now),
	}

	for _, w := range history {
		if !w.Malformed() {
			agg.WorkoutCount++
		}
	}

	var sleep, ready float64
	var nSleep, nReady int
	for _, c := range checkIns {
		if i := dayIndex(c.RecordedAt, now); i < 0 || i >= 7 {
			continue
		}
		if c.SleepHours != nil {
			sleep += *c.SleepHours
			nSleep++
		}
		if c.Readiness != nil {
			ready += float64(*c.Readiness)
			nReady++
		}
	}
	if nSleep > 0 {
		agg.SleepAverage = models.Float(sleep / float64(nSleep))
	}
	if nReady > 0 {
		agg.AverageReadiness = models.Float(ready / float64(nReady))
	}

	agg.Phase = PhaseFor(agg.WeeksSinceDeload, nil)
	return agg
}
