package analysis

import (
	"sort"
	"time"

	"coach/internal/models"
)

// Default effort assumed for sets without a reported RPE
const defaultSetRPE = 6.0

// setLoadScale brings sets x RPE into the range of session RPE x minutes
const setLoadScale = 5

// EMA windows in days for the fitness and fatigue curves
const (
	ChronicDays = 42
	AcuteDays   = 7
)

// SessionLoad calculates the training load of a workout in arbitrary units.
// Session RPE x duration (Foster) when both are known, otherwise sets x RPE scaled to a comparable range.
func SessionLoad(w models.WorkoutRecord) float64 {
	if w.SessionRPE > 0 && w.DurationMinutes > 0 {
		return w.SessionRPE * float64(w.DurationMinutes)
	}

	var load float64
	for _, ex := range w.Exercises {
		sets := float64(ex.Sets)
		if sets <= 0 {
			sets = 1
		}
		rpe := ex.RPE
		if rpe <= 0 {
			rpe = defaultSetRPE
		}
		load += sets * rpe
	}
	return load * setLoadScale
}

// DailyLoad is the summed session load of one calendar day
type DailyLoad struct {
	Date time.Time
	Load float64
}

// FitnessMetrics is the state of the load curves at the end of a day
type FitnessMetrics struct {
	Date time.Time `json:"date"`
	CTL  float64   `json:"ctl"` // chronic load, "fitness"
	ATL  float64   `json:"atl"` // acute load, "fatigue"
	TSB  float64   `json:"tsb"` // CTL - ATL, "form"
}

func emaWeight(days int) float64 {
	return 2.0 / (float64(days) + 1)
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FitnessTrend runs both EMAs day by day from the first to the last loaded day.
// Sessions on the same day are summed and days without sessions count as zero load.
func FitnessTrend(loads []DailyLoad) []FitnessMetrics {
	if len(loads) == 0 {
		return nil
	}

	byDay := make(map[time.Time]float64, len(loads))
	days := make([]time.Time, 0, len(loads))
	for _, l := range loads {
		d := dayOf(l.Date)
		if _, seen := byDay[d]; !seen {
			days = append(days, d)
		}
		byDay[d] += l.Load
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	chronic, acute := emaWeight(ChronicDays), emaWeight(AcuteDays)
	first, last := days[0], days[len(days)-1]

	trend := make([]FitnessMetrics, 0, int(last.Sub(first).Hours()/24)+1)
	var ctl, atl float64
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		load := byDay[d]
		ctl += chronic * (load - ctl)
		atl += acute * (load - atl)
		trend = append(trend, FitnessMetrics{Date: d, CTL: ctl, ATL: atl, TSB: ctl - atl})
	}
	return trend
}

// CurrentFitness returns the last day of the trend, or zero metrics without any load
func CurrentFitness(loads []DailyLoad) FitnessMetrics {
	trend := FitnessTrend(loads)
	if len(trend) == 0 {
		return FitnessMetrics{}
	}
	return trend[len(trend)-1]
}

// FormDescription reads TSB as advice for a lifter
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Well rested, but a long layoff costs strength"
	case tsb > 10:
		return "Fresh: a good day to test a max"
	case tsb > 0:
		return "Balanced: train as planned"
	case tsb > -10:
		return "Carrying some fatigue"
	case tsb > -25:
		return "Accumulating fatigue: productive if a deload is coming"
	default:
		return "Overreached: deload now"
	}
}

// LoadsFromHistory converts workouts into per-session daily loads, skipping malformed entries
func LoadsFromHistory(history []models.WorkoutRecord) []DailyLoad {
	var loads []DailyLoad
	for _, w := range history {
		if w.Malformed() {
			continue
		}
		loads = append(loads, DailyLoad{Date: w.PerformedAt, Load: SessionLoad(w)})
	}
	return loads
}
