package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"coach/internal/adjust"
	"coach/internal/analysis"
	"coach/internal/metrics"
	"coach/internal/models"
	"coach/internal/predict"
	"coach/internal/reasoning"
	"coach/internal/recovery"
	"coach/internal/risk"
	"coach/internal/store"
)

// HistoryRepository loads an athlete's workout window
type HistoryRepository interface {
	LoadHistory(ctx context.Context, athleteID string, windowDays int) ([]models.WorkoutRecord, error)
}

// LearningSource supplies an optional per-athlete learning profile
type LearningSource interface {
	LearningProfile(ctx context.Context, athleteID string) (*models.LearningProfile, error)
}

// DecisionLog persists decisions once a cycle completes
type DecisionLog interface {
	LogDecision(ctx context.Context, d *store.Decision) error
}

// CheckInHistory supplies recent check-ins for sleep and readiness trends
type CheckInHistory interface {
	RecentCheckIns(ctx context.Context, athleteID string, days int) ([]models.CheckIn, error)
}

// Options tune a CoachService. Zero values pick defaults.
type Options struct {
	Now               func() time.Time
	HistoryWindowDays int
	CheckIns          CheckInHistory // optional; trends then come from today's check-in alone
}

// CoachService runs decision cycles against injected storage
type CoachService struct {
	history   HistoryRepository
	learning  LearningSource
	decisions DecisionLog
	checkIns  CheckInHistory
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	window    int
}

// NewCoachService wires the service. learning and decisions may be nil; log and m default to no-ops.
func NewCoachService(history HistoryRepository, learning LearningSource, decisions DecisionLog, log *zap.Logger, m *metrics.Metrics, opts Options) *CoachService {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HistoryWindowDays <= 0 {
		opts.HistoryWindowDays = HistoryWindowDays
	}
	return &CoachService{
		history:   history,
		learning:  learning,
		decisions: decisions,
		checkIns:  opts.CheckIns,
		log:       log,
		metrics:   m,
		now:       opts.Now,
		window:    opts.HistoryWindowDays,
	}
}

// Outcome is everything a decision cycle produced
type Outcome struct {
	Result      *reasoning.Result      `json:"result"`
	Adjustments []adjust.Adjustment    `json:"adjustments"`
	Session     adjust.ModifiedSession `json:"session"`
	Forecast    predict.Result         `json:"forecast"`
	DecisionID  string                 `json:"decision_id,omitempty"`
}

// Status is the read-only dashboard view of an athlete
type Status struct {
	Recovery    *recovery.State         `json:"recovery"`
	Aggregates  models.Aggregates       `json:"aggregates"`
	Risk        risk.Report             `json:"risk"`
	Fitness     analysis.FitnessMetrics `json:"fitness"`
	Form        string                  `json:"form"`
	Workouts    int                     `json:"workouts"`
	LastWorkout *time.Time              `json:"last_workout,omitempty"`
}

type athleteContext struct {
	history  []models.WorkoutRecord
	checkIns []models.CheckIn
	learning *models.LearningProfile
	now      time.Time
}

func (s *CoachService) load(ctx context.Context, op string, profile *models.Profile) (*athleteContext, error) {
	if err := profile.Validate(); err != nil {
		s.metrics.ObserveFailure(op)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	history, err := s.history.LoadHistory(ctx, profile.ID, s.window)
	if err != nil {
		s.metrics.ObserveFailure(op)
		s.log.Error("loading history failed", zap.String("op", op), zap.String("athlete", profile.ID), zap.Error(err))
		return nil, fmt.Errorf("%s: loading history: %w", op, err)
	}

	ac := &athleteContext{history: history, now: s.now()}
	if s.learning != nil {
		lp, err := s.learning.LearningProfile(ctx, profile.ID)
		if err != nil {
			// Learning data is optional; fall back to population defaults
			s.log.Warn("learning profile unavailable", zap.String("athlete", profile.ID), zap.Error(err))
		} else {
			ac.learning = lp
		}
	}
	if s.checkIns != nil {
		cs, err := s.checkIns.RecentCheckIns(ctx, profile.ID, CheckInWindowDays)
		if err != nil {
			s.log.Warn("recent check-ins unavailable", zap.String("athlete", profile.ID), zap.Error(err))
		} else {
			ac.checkIns = cs
		}
	}

	s.log.Debug("athlete context loaded",
		zap.String("op", op),
		zap.String("athlete", profile.ID),
		zap.Int("workouts", len(history)),
		zap.Int("check_ins", len(ac.checkIns)),
		zap.Bool("learning_mature", ac.learning.Mature()),
	)
	return ac, nil
}

func (s *CoachService) state(ac *athleteContext, profile models.Profile, sleepQuality string) *recovery.State {
	f := recovery.Personalize(profile, sleepQuality, ac.learning)
	return recovery.ComputeWithFactors(ac.history, f, ac.now)
}

func (s *CoachService) sources(ac *athleteContext, checkIn bool) predict.Sources {
	return predict.Sources{CheckIn: checkIn, HistoryCount: len(ac.history), Learning: ac.learning}
}

// Decide runs a full cycle: reason, adjust the chosen option, forecast it and log the decision.
// A failure to log is reported but does not discard the decision.
func (s *CoachService) Decide(ctx context.Context, profile models.Profile, checkIn *models.CheckIn, schedule models.Schedule) (*Outcome, error) {
	started := time.Now()

	ac, err := s.load(ctx, "decide", &profile)
	if err != nil {
		return nil, err
	}

	rc := reasoning.Context{
		CheckIn:  checkIn,
		Schedule: schedule,
		Learning: ac.learning,
	}
	if len(ac.checkIns) > 0 {
		agg := analysis.Summarize(ac.history, withCheckIn(ac.checkIns, checkIn), ac.now, reasoning.HistoryWindowWeeks)
		rc.Aggregates = &agg
	}

	res, err := reasoning.Reason(&profile, rc, ac.history, ac.now)
	if err != nil {
		s.metrics.ObserveFailure("decide")
		return nil, fmt.Errorf("decide: %w", err)
	}

	chosen := res.Decision.Decision
	adjustments := adjust.Evaluate(adjust.ContextFromSnapshot(res.Snapshot, res.Aggregates))
	session := adjust.Apply(adjust.SessionFromOption(chosen.Option), adjustments)

	params := predict.ParamsFromOption(session.Intensity, session.Volume, session.Methods)
	forecast := predict.Predict(predict.Input{State: res.Recovery, Sources: s.sources(ac, checkIn != nil)}, params, nil)

	out := &Outcome{Result: res, Adjustments: adjustments, Session: session, Forecast: forecast}
	s.logDecision(ctx, profile.ID, out)

	s.metrics.ObserveDecision(string(chosen.Type), time.Since(started))
	for _, p := range res.Problems {
		s.metrics.ObserveProblem(string(p.Severity))
	}
	for _, a := range res.Risk.All() {
		s.metrics.SetRisk(a.Model, a.Score)
	}

	s.log.Info("decision made",
		zap.String("athlete", profile.ID),
		zap.String("option", chosen.ID),
		zap.String("type", string(chosen.Type)),
		zap.Float64("score", chosen.TotalScore),
		zap.Float64("confidence", res.Decision.Confidence),
		zap.Int("problems", len(res.Problems)),
		zap.Int("adjustments", len(adjustments)),
	)
	return out, nil
}

// withCheckIn adds today's check-in to the recent ones unless it was already stored
func withCheckIn(recent []models.CheckIn, today *models.CheckIn) []models.CheckIn {
	if today == nil {
		return recent
	}
	for _, c := range recent {
		if c.RecordedAt.Equal(today.RecordedAt) {
			return recent
		}
	}
	return append(append([]models.CheckIn(nil), recent...), *today)
}

func (s *CoachService) logDecision(ctx context.Context, athleteID string, out *Outcome) {
	if s.decisions == nil {
		return
	}
	payload, err := json.Marshal(out)
	if err != nil {
		s.log.Error("encoding decision payload", zap.Error(err))
		payload = nil
	}

	chosen := out.Result.Decision.Decision
	entry := &store.Decision{
		AthleteID:  athleteID,
		CreatedAt:  out.Result.Recovery.ComputedAt,
		OptionID:   chosen.ID,
		OptionType: string(chosen.Type),
		Intensity:  out.Session.Intensity,
		Volume:     out.Session.Volume,
		TotalScore: chosen.TotalScore,
		Confidence: out.Result.Decision.Confidence,
		Reasoning:  out.Result.Decision.Reasoning,
		Payload:    payload,
	}
	if err := s.decisions.LogDecision(ctx, entry); err != nil {
		s.metrics.ObserveFailure("log_decision")
		s.log.Error("logging decision failed", zap.String("athlete", athleteID), zap.Error(err))
		return
	}
	out.DecisionID = entry.ID
}

// Recovery reports current recovery, load aggregates, risk and fitness trend
func (s *CoachService) Recovery(ctx context.Context, profile models.Profile) (*Status, error) {
	ac, err := s.load(ctx, "recovery", &profile)
	if err != nil {
		return nil, err
	}

	agg := analysis.Summarize(ac.history, ac.checkIns, ac.now, reasoning.HistoryWindowWeeks)
	if agg.PriorInjuries == 0 {
		agg.PriorInjuries = len(profile.Injuries)
	}
	report, err := risk.Run(agg, "")
	if err != nil {
		s.metrics.ObserveFailure("recovery")
		return nil, fmt.Errorf("recovery: %w", err)
	}

	st := &Status{
		Recovery:   s.state(ac, profile, ""),
		Aggregates: agg,
		Risk:       report,
		Workouts:   len(ac.history),
	}
	st.Fitness = analysis.CurrentFitness(analysis.LoadsFromHistory(ac.history))
	st.Form = analysis.FormDescription(st.Fitness.TSB)
	for _, w := range ac.history {
		if w.Malformed() {
			continue
		}
		if st.LastWorkout == nil || w.PerformedAt.After(*st.LastWorkout) {
			t := w.PerformedAt
			st.LastWorkout = &t
		}
	}
	return st, nil
}

// WhatIf compares two candidate sessions from the athlete's current state
func (s *CoachService) WhatIf(ctx context.Context, profile models.Profile, a, b predict.Params, schedule models.Schedule) (*predict.WhatIf, error) {
	ac, err := s.load(ctx, "what_if", &profile)
	if err != nil {
		return nil, err
	}
	in := predict.Input{State: s.state(ac, profile, ""), Sources: s.sources(ac, false)}
	w := predict.CompareWhatIf(in, a, b, schedule.DaysToEvent)

	s.log.Debug("what-if compared", zap.String("athlete", profile.ID), zap.String("recommended", w.Recommended))
	return &w, nil
}

// ForecastWeek simulates a multi-day plan. An empty plan simulates a week of rest.
func (s *CoachService) ForecastWeek(ctx context.Context, profile models.Profile, plan []predict.Params) ([]predict.DayForecast, error) {
	ac, err := s.load(ctx, "forecast", &profile)
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		plan = predict.RestPlan(ForecastDays)
	}
	in := predict.Input{State: s.state(ac, profile, ""), Sources: s.sources(ac, false)}
	return predict.SimulateWeek(in, plan), nil
}

// PlanFromOutcome repeats the adjusted session on training days, alternating with rest
func PlanFromOutcome(out *Outcome, days int) []predict.Params {
	train := predict.ParamsFromOption(out.Session.Intensity, out.Session.Volume, out.Session.Methods)
	rest := predict.RestPlan(1)[0]
	plan := make([]predict.Params, days)
	for i := range plan {
		if i%2 == 0 && out.Result.Decision.Decision.Type != reasoning.OptionRest {
			plan[i] = train
		} else {
			plan[i] = rest
		}
	}
	return plan
}
