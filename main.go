package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"coach/internal/config"
	"coach/internal/logger"
	"coach/internal/metrics"
	"coach/internal/models"
	"coach/internal/predict"
	"coach/internal/recovery"
	"coach/internal/service"
	"coach/internal/store"
	"coach/internal/tui"
	"coach/internal/validation"
)

const usage = `usage: coach [command]

commands:
  (none)                          open the dashboard
  decide                          run a decision cycle and print it as JSON
  import <workouts.json>          import a JSON array of workouts
  checkin <checkin.json>          record today's check-in
  observe <muscle> <pred> <act>   record an observed recovery time in hours
  whatif <int/vol> <int/vol>      compare two sessions, e.g. whatif high/normal light/reduced
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("Set athlete.id and your profile before running again.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer zl.Sync() //nolint:errcheck

	// Open database
	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		serveMetrics(cfg.Metrics.Addr, zl)
	}

	svc := service.NewCoachService(db, db, db, zl, m, service.Options{CheckIns: db})
	profile := cfg.Athlete.Profile()

	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "":
		return runTUI(ctx, svc, db, profile, cfg.Schedule.Schedule(time.Now()))
	case "decide":
		return runDecide(ctx, svc, db, profile, cfg.Schedule.Schedule(time.Now()))
	case "import":
		return runImport(ctx, db, profile.ID, args, zl)
	case "checkin":
		return runCheckIn(ctx, db, profile.ID, args, zl)
	case "observe":
		return runObserve(ctx, db, profile.ID, args)
	case "whatif":
		return runWhatIf(ctx, svc, profile, cfg.Schedule.Schedule(time.Now()), args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func serveMetrics(addr string, zl *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		zl.Info("metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			zl.Error("metrics server failed", zap.Error(err))
		}
	}()
}

// todaysCheckIn returns the latest check-in when it was recorded within the last day
func todaysCheckIn(ctx context.Context, db *store.Store, athleteID string) (*models.CheckIn, error) {
	c, err := db.LatestCheckIn(ctx, athleteID)
	if errors.Is(err, store.ErrNoCheckIn) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading check-in: %w", err)
	}
	if time.Since(c.RecordedAt) > 24*time.Hour {
		return nil, nil
	}
	return c, nil
}

func runTUI(ctx context.Context, svc *service.CoachService, db *store.Store, profile models.Profile, schedule models.Schedule) error {
	checkIn, err := todaysCheckIn(ctx, db, profile.ID)
	if err != nil {
		return err
	}

	app := tui.NewApp(svc, db, tui.Athlete{Profile: profile, CheckIn: checkIn, Schedule: schedule})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

func runDecide(ctx context.Context, svc *service.CoachService, db *store.Store, profile models.Profile, schedule models.Schedule) error {
	checkIn, err := todaysCheckIn(ctx, db, profile.ID)
	if err != nil {
		return err
	}
	out, err := svc.Decide(ctx, profile, checkIn, schedule)
	if err != nil {
		return err
	}
	return printJSON(out)
}

func runImport(ctx context.Context, db *store.Store, athleteID string, args []string, zl *zap.Logger) error {
	if len(args) != 1 {
		return errors.New("usage: coach import <workouts.json>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading workouts: %w", err)
	}
	workouts, err := validation.ParseWorkouts(data, athleteID)
	if err != nil {
		return err
	}
	if err := db.SaveWorkouts(ctx, workouts); err != nil {
		return fmt.Errorf("importing workouts: %w", err)
	}
	zl.Info("workouts imported", zap.Int("count", len(workouts)), zap.String("file", args[0]))
	fmt.Printf("Imported %d workouts.\n", len(workouts))
	return nil
}

func runCheckIn(ctx context.Context, db *store.Store, athleteID string, args []string, zl *zap.Logger) error {
	if len(args) != 1 {
		return errors.New("usage: coach checkin <checkin.json>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading check-in: %w", err)
	}
	c, err := validation.ParseCheckIn(data)
	if err != nil {
		return err
	}
	id, err := db.SaveCheckIn(ctx, athleteID, c)
	if err != nil {
		return fmt.Errorf("saving check-in: %w", err)
	}
	zl.Info("check-in recorded", zap.String("id", id))
	fmt.Println("Check-in recorded.")
	return nil
}

func runObserve(ctx context.Context, db *store.Store, athleteID string, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: coach observe <muscle> <predicted_hours> <actual_hours>")
	}
	muscle := strings.ToLower(args[0])
	if !slices.Contains(recovery.MuscleGroups, muscle) {
		return fmt.Errorf("unknown muscle %q, want one of %s", args[0], strings.Join(recovery.MuscleGroups, ", "))
	}
	predicted, err := strconv.ParseFloat(args[1], 64)
	if err != nil || predicted <= 0 {
		return fmt.Errorf("predicted hours must be a positive number, got %q", args[1])
	}
	actual, err := strconv.ParseFloat(args[2], 64)
	if err != nil || actual < 0 {
		return fmt.Errorf("actual hours must be a non-negative number, got %q", args[2])
	}

	o := &store.Observation{AthleteID: athleteID, Muscle: muscle, PredictedHours: predicted, ActualHours: actual}
	if err := db.RecordObservation(ctx, o); err != nil {
		return fmt.Errorf("recording observation: %w", err)
	}
	fmt.Printf("Recorded %s: %.0fh predicted, %.0fh actual (ratio %.2f).\n", muscle, predicted, actual, o.Ratio())
	return nil
}

func runWhatIf(ctx context.Context, svc *service.CoachService, profile models.Profile, schedule models.Schedule, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: coach whatif <intensity/volume> <intensity/volume>")
	}
	a, err := parseParams(args[0])
	if err != nil {
		return err
	}
	b, err := parseParams(args[1])
	if err != nil {
		return err
	}
	w, err := svc.WhatIf(ctx, profile, a, b, schedule)
	if err != nil {
		return err
	}
	return printJSON(w)
}

// parseParams reads "intensity/volume", e.g. "high/normal"
func parseParams(s string) (predict.Params, error) {
	intensity, volume, ok := strings.Cut(strings.ToLower(s), "/")
	if !ok {
		volume = string(predict.VolumeNormal)
	}
	p := predict.Params{Intensity: predict.IntensityLevel(intensity), Volume: predict.VolumeLevel(volume)}
	switch p.Intensity {
	case predict.IntensityHigh, predict.IntensityModerate, predict.IntensityLight, predict.IntensityVeryLow:
	default:
		return p, fmt.Errorf("unknown intensity %q", intensity)
	}
	switch p.Volume {
	case predict.VolumeNormal, predict.VolumeReduced, predict.VolumeMinimal, predict.VolumeNone:
	default:
		return p, fmt.Errorf("unknown volume %q", volume)
	}
	return p, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
