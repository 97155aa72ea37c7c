package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"coach/internal/models"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Athlete.ID = "athlete-1"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Athlete.Age != 30 {
		t.Errorf("Athlete.Age = %v, want 30", cfg.Athlete.Age)
	}
	if cfg.Athlete.Experience != "intermediate" {
		t.Errorf("Athlete.Experience = %q, want intermediate", cfg.Athlete.Experience)
	}
	if cfg.Schedule.AvailableMinutes != 60 {
		t.Errorf("Schedule.AvailableMinutes = %v, want 60", cfg.Schedule.AvailableMinutes)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("Log = %+v, want info/console", cfg.Log)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics should be disabled by default")
	}

	// Athlete ID must be supplied by the user
	if cfg.Athlete.ID != "" {
		t.Errorf("Athlete.ID should be empty, got %q", cfg.Athlete.ID)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		errContains string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "empty athlete ID", mutate: func(c *Config) { c.Athlete.ID = "" }, errContains: "athlete.id"},
		{name: "placeholder athlete ID", mutate: func(c *Config) { c.Athlete.ID = "YOUR_ATHLETE_ID" }, errContains: "athlete.id"},
		{name: "too young", mutate: func(c *Config) { c.Athlete.Age = 8 }, errContains: "athlete.age"},
		{name: "too old", mutate: func(c *Config) { c.Athlete.Age = 101 }, errContains: "athlete.age"},
		{name: "experience case-insensitive", mutate: func(c *Config) { c.Athlete.Experience = "Elite" }},
		{name: "unknown experience", mutate: func(c *Config) { c.Athlete.Experience = "pro" }, errContains: "athlete.experience"},
		{name: "negative weight", mutate: func(c *Config) { c.Athlete.BodyWeightKg = -1 }, errContains: "body_weight_kg"},
		{name: "no time", mutate: func(c *Config) { c.Schedule.AvailableMinutes = 0 }, errContains: "available_minutes"},
		{name: "event date", mutate: func(c *Config) { c.Schedule.EventDate = "2024-06-01" }},
		{name: "bad event date", mutate: func(c *Config) { c.Schedule.EventDate = "June 1st" }, errContains: "event_date"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, errContains: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if !errors.Is(err, ErrNoConfig) {
		t.Errorf("LoadFrom() error = %v, want ErrNoConfig", err)
	}
}

func TestLoadFromAppliesDefaultsAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"athlete": {"id": "a1", "sport": "rugby", "injuries": ["knee"]}, "log": {"format": "json"}}`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("COACH_LOG_LEVEL", "debug")
	t.Setenv("COACH_SCHEDULE_AVAILABLE_MINUTES", "45")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Athlete.ID != "a1" || cfg.Athlete.Sport != "rugby" {
		t.Errorf("Athlete = %+v", cfg.Athlete)
	}
	if len(cfg.Athlete.Injuries) != 1 || cfg.Athlete.Injuries[0] != "knee" {
		t.Errorf("Injuries = %v, want [knee]", cfg.Athlete.Injuries)
	}
	if cfg.Athlete.Age != 30 || cfg.Athlete.BodyWeightKg != 75 {
		t.Errorf("defaults not applied: %+v", cfg.Athlete)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug from env", cfg.Log.Level)
	}
	if cfg.Schedule.AvailableMinutes != 45 {
		t.Errorf("AvailableMinutes = %d, want 45 from env", cfg.Schedule.AvailableMinutes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadFromInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() should fail on malformed JSON")
	}
}

func TestSaveAndCreateExample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")
	t.Setenv("COACH_CONFIG", path)

	if err := CreateExample(); err != nil {
		t.Fatalf("CreateExample() error = %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Athlete.ID != "YOUR_ATHLETE_ID" {
		t.Errorf("example Athlete.ID = %q", cfg.Athlete.ID)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("example config should fail validation until edited")
	}

	cfg.Athlete.ID = "me"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	// CreateExample must not overwrite an existing file
	if err := CreateExample(); err != nil {
		t.Fatalf("CreateExample() error = %v", err)
	}
	again, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if again.Athlete.ID != "me" {
		t.Errorf("Athlete.ID = %q after save, want me", again.Athlete.ID)
	}
}

func TestAthleteProfile(t *testing.T) {
	c := AthleteConfig{ID: "a1", Age: 41, Experience: "ADVANCED", BodyWeightKg: 90, Sport: "tennis", Injuries: []string{"elbow"}}
	p := c.Profile()
	if p.Experience != models.Advanced {
		t.Errorf("Experience = %q, want advanced", p.Experience)
	}
	if p.ID != "a1" || p.Age != 41 || p.Sport != "tennis" || len(p.Injuries) != 1 {
		t.Errorf("Profile() = %+v", p)
	}
}

func TestScheduleDaysToEvent(t *testing.T) {
	now := time.Date(2024, 5, 28, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		date string
		want *int
	}{
		{"", nil},
		{"2024-05-28", models.Int(0)},
		{"2024-06-01", models.Int(4)},
		{"2024-05-20", nil},
		{"garbage", nil},
	}
	for _, tt := range tests {
		s := ScheduleConfig{AvailableMinutes: 50, EventDate: tt.date}.Schedule(now)
		if s.AvailableMinutes != 50 || s.DayOfWeek != time.Tuesday {
			t.Errorf("Schedule(%q) = %+v", tt.date, s)
		}
		switch {
		case tt.want == nil && s.DaysToEvent != nil:
			t.Errorf("Schedule(%q).DaysToEvent = %d, want nil", tt.date, *s.DaysToEvent)
		case tt.want != nil && (s.DaysToEvent == nil || *s.DaysToEvent != *tt.want):
			t.Errorf("Schedule(%q).DaysToEvent = %v, want %d", tt.date, s.DaysToEvent, *tt.want)
		}
	}
}
