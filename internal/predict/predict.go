package predict

import (
	"fmt"
	"math"
	"time"

	"coach/internal/models"
	"coach/internal/recovery"
)

// Projection horizons in hours after the session
var Horizons = []float64{0, 6, 24, 48, 72}

// MinImmediateCNS is the floor for CNS right after a session
const MinImmediateCNS = 20.0

// TimePoint is the projected state at a horizon
type TimePoint struct {
	Hours     float64 `json:"hours"`
	CNS       float64 `json:"cns"`
	Readiness float64 `json:"readiness"`
}

// Severity is a DOMS tier
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityLight    Severity = "light"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// DOMS is the expected soreness profile
type DOMS struct {
	OnsetHours    float64  `json:"onset_hours"`
	PeakHours     float64  `json:"peak_hours"`
	DurationHours float64  `json:"duration_hours"`
	Severity      Severity `json:"severity"`
}

var domsBase = map[Severity]DOMS{
	SeverityLight:    {6, 24, 48, SeverityLight},
	SeverityModerate: {8, 36, 72, SeverityModerate},
	SeveritySevere:   {12, 48, 96, SeveritySevere},
}

// Prediction is the projected outcome of a candidate session
type Prediction struct {
	Params              Params             `json:"params"`
	Impact              Impact             `json:"impact"`
	Timeline            []TimePoint        `json:"timeline"`
	DOMS                DOMS               `json:"doms"`
	MuscleRecoveryHours map[string]float64 `json:"muscle_recovery_hours"`
	Confidence          float64            `json:"confidence"`

	start   *recovery.State
	targets []string
}

// At returns the timeline point at the given horizon, or a zero point when it is not projected
func (p *Prediction) At(hours float64) TimePoint {
	for _, tp := range p.Timeline {
		if tp.Hours == hours {
			return tp
		}
	}
	return TimePoint{Hours: hours}
}

// Sources records which corroborating inputs are available
type Sources struct {
	CheckIn      bool
	HistoryCount int
	Learning     *models.LearningProfile
}

// Confidence scoring
const (
	BaseConfidence     = 0.4
	MaxConfidence      = 0.95
	MinHistoryWorkouts = 3
)

// Confidence starts at a floor and rises with each corroborating data source
func Confidence(src Sources, detailed bool) float64 {
	c := BaseConfidence
	if src.CheckIn {
		c += 0.15
	}
	if detailed {
		c += 0.15
	}
	if src.HistoryCount >= MinHistoryWorkouts {
		c += 0.1
	}
	if src.Learning.Mature() {
		c += 0.15
	}
	return math.Min(c, MaxConfidence)
}

// PredictPostWorkout projects recovery after the candidate session starting from state.
// Confidence only reflects whether a detailed session was given.
func PredictPostWorkout(state *recovery.State, params Params, session *Session) *Prediction {
	return project(state, params, session, Sources{})
}

func project(state *recovery.State, params Params, session *Session, src Sources) *Prediction {
	f := state.Factors
	if f.Global == 0 {
		f = recovery.NeutralFactors()
	}

	imp := ComputeImpact(params)
	tier := params.Intensity.Tier()
	muscles := targets(params, session)

	pred := &Prediction{
		Params:              params,
		Impact:              imp,
		MuscleRecoveryHours: make(map[string]float64, len(muscles)),
		Confidence:          Confidence(src, session != nil && len(session.Exercises) > 0),
		start:               state,
		targets:             muscles,
	}

	for _, m := range muscles {
		pred.MuscleRecoveryHours[m] = recovery.BaseHours(m, tier) * (1 + 0.5*imp.MuscularDamage) * f.Muscle(m)
	}

	for _, h := range Horizons {
		pred.Timeline = append(pred.Timeline, TimePoint{
			Hours:     h,
			CNS:       pred.cnsAt(h),
			Readiness: pred.readinessAt(h),
		})
	}

	pred.DOMS = doms(imp.MuscularDamage, f.Global)
	return pred
}

func (p *Prediction) cnsRate() float64 {
	if r := p.start.Factors.CNSRecoveryRatePerDay; r > 0 {
		return r
	}
	return recovery.BaseCNSRate
}

func (p *Prediction) immediateCNS() float64 {
	cur := p.start.CNS.Percentage
	v := cur - p.Impact.CNSDepletion
	if p.Impact.CNSDepletion > 0 && v < MinImmediateCNS {
		v = math.Min(MinImmediateCNS, cur)
	}
	return v
}

func (p *Prediction) cnsAt(hours float64) float64 {
	return math.Min(100, p.immediateCNS()+p.cnsRate()*hours/24)
}

func (p *Prediction) targeted(m string) bool {
	for _, t := range p.targets {
		if t == m {
			return true
		}
	}
	return false
}

// muscleAt returns the projected percentage for m and its hourly recovery slope
func (p *Prediction) muscleAt(m string, hours float64) (float64, float64) {
	cur := p.start.Muscle(m)
	if p.targeted(m) {
		start := cur.Percentage * (1 - p.Impact.MuscularDamage)
		rh := p.MuscleRecoveryHours[m]
		if rh <= 0 {
			return 100, 0
		}
		slope := 100 / rh
		return math.Min(100, start+slope*hours), slope
	}
	if cur.Percentage >= 100 || cur.HoursUntilRecovered <= 0 {
		return 100, 0
	}
	slope := (100 - cur.Percentage) / cur.HoursUntilRecovered
	return math.Min(100, cur.Percentage+slope*hours), slope
}

func (p *Prediction) readinessAt(hours float64) float64 {
	var sum float64
	for _, m := range recovery.MuscleGroups {
		pct, _ := p.muscleAt(m, hours)
		sum += pct
	}
	mean := sum / float64(len(recovery.MuscleGroups))
	return 0.6*p.cnsAt(hours) + 0.4*mean
}

// StateAfter returns the projected recovery state the given hours after the session
func (p *Prediction) StateAfter(hours float64) *recovery.State {
	next := &recovery.State{
		Muscles:    make(map[string]recovery.MuscleState, len(recovery.MuscleGroups)),
		Factors:    p.start.Factors,
		ComputedAt: p.start.ComputedAt.Add(time.Duration(hours * float64(time.Hour))),
	}
	for _, m := range recovery.MuscleGroups {
		pct, slope := p.muscleAt(m, hours)
		next.Muscles[m] = projectedState(pct, slope, p.start.Muscle(m))
	}

	cnsPct := p.cnsAt(hours)
	cnsSlope := p.cnsRate() / 24
	next.CNS = projectedState(cnsPct, cnsSlope, p.start.CNS)
	return next
}

func projectedState(pct, slope float64, prev recovery.MuscleState) recovery.MuscleState {
	until := 0.0
	if pct < 100 && slope > 0 {
		until = (100 - pct) / slope
	}
	return recovery.MuscleState{
		Status:              recovery.LevelFor(pct),
		Percentage:          pct,
		HoursUntilRecovered: until,
		LastTrainedAt:       prev.LastTrainedAt,
		Intensity:           prev.Intensity,
	}
}

func doms(damage, global float64) DOMS {
	var sev Severity
	switch {
	case damage <= 0:
		return DOMS{Severity: SeverityNone}
	case damage > 0.7:
		sev = SeveritySevere
	case damage > 0.4:
		sev = SeverityModerate
	default:
		sev = SeverityLight
	}
	b := domsBase[sev]
	return DOMS{
		OnsetHours:    b.OnsetHours * global,
		PeakHours:     b.PeakHours * global,
		DurationHours: b.DurationHours * global,
		Severity:      sev,
	}
}

// Input bundles the context a full prediction needs
type Input struct {
	State   *recovery.State
	Sources Sources
}

// Result is a prediction plus human-readable guidance
type Result struct {
	Prediction      *Prediction `json:"prediction"`
	Recommendations []string    `json:"recommendations"`
	Summary         string      `json:"summary"`
}

// Predict projects the session and attaches recommendations and a one-line summary
func Predict(in Input, params Params, session *Session) Result {
	pred := project(in.State, params, session, in.Sources)
	return Result{
		Prediction:      pred,
		Recommendations: recommendations(pred),
		Summary:         summary(pred),
	}
}

func recommendations(p *Prediction) []string {
	var out []string
	cns24 := p.At(24).CNS
	ready24 := p.At(24).Readiness
	ready48 := p.At(48).Readiness

	switch {
	case cns24 < 50:
		out = append(out, "CNS will still be depleted tomorrow: plan a rest or mobility day")
	case cns24 < 70:
		out = append(out, "Keep tomorrow's session light and avoid heavy compound lifts")
	}
	if p.DOMS.Severity == SeveritySevere {
		out = append(out, fmt.Sprintf("Expect significant soreness peaking around %.0fh: avoid training the same muscles", p.DOMS.PeakHours))
	}
	if ready48 < 70 {
		out = append(out, "Readiness stays low for two days: consider reducing volume")
	}
	if p.Impact.MetabolicStress > 0.7 {
		out = append(out, "High metabolic stress: prioritize carbohydrates and sleep tonight")
	}
	if len(out) == 0 && ready24 >= 80 {
		out = append(out, "Recovery is on track for normal training tomorrow")
	}
	if len(out) == 0 {
		out = append(out, "Monitor how you feel before the next hard session")
	}
	return out
}

func summary(p *Prediction) string {
	next := p.At(24)
	return fmt.Sprintf("%s intensity / %s volume: readiness %.0f%% and CNS %.0f%% after 24h, %s DOMS, confidence %.0f%%",
		p.Params.Intensity, p.Params.Volume, next.Readiness, next.CNS, p.DOMS.Severity, p.Confidence*100)
}
