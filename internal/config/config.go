package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"coach/internal/models"
)

// Config represents the application configuration
type Config struct {
	Athlete  AthleteConfig  `json:"athlete" mapstructure:"athlete"`
	Schedule ScheduleConfig `json:"schedule" mapstructure:"schedule"`
	Storage  StorageConfig  `json:"storage" mapstructure:"storage"`
	Log      LogConfig      `json:"log" mapstructure:"log"`
	Metrics  MetricsConfig  `json:"metrics" mapstructure:"metrics"`
}

// AthleteConfig is the profile the decision engine runs for
type AthleteConfig struct {
	ID              string   `json:"id" mapstructure:"id"`
	Age             int      `json:"age" mapstructure:"age"`
	Experience      string   `json:"experience" mapstructure:"experience"`
	BodyWeightKg    float64  `json:"body_weight_kg" mapstructure:"body_weight_kg"`
	Sport           string   `json:"sport" mapstructure:"sport"`
	Goal            string   `json:"goal" mapstructure:"goal"`
	Injuries        []string `json:"injuries" mapstructure:"injuries"`
	LikedMethods    []string `json:"liked_methods" mapstructure:"liked_methods"`
	DislikedMethods []string `json:"disliked_methods" mapstructure:"disliked_methods"`
}

// ScheduleConfig holds calendar facts
type ScheduleConfig struct {
	AvailableMinutes int    `json:"available_minutes" mapstructure:"available_minutes"`
	EventDate        string `json:"event_date" mapstructure:"event_date"` // YYYY-MM-DD, empty when none
}

// StorageConfig locates the SQLite database
type StorageConfig struct {
	Path string `json:"path" mapstructure:"path"` // empty uses ~/.coach/data.db
}

// LogConfig configures zap
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// MetricsConfig controls the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Addr    string `json:"addr" mapstructure:"addr"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// EnvPrefix prefixes every environment override, e.g. COACH_LOG_LEVEL
const EnvPrefix = "COACH"

const eventDateLayout = "2006-01-02"

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Athlete: AthleteConfig{
			Age:          30,
			Experience:   string(models.Intermediate),
			BodyWeightKg: 75,
			Sport:        "general",
			Goal:         "general_fitness",
		},
		Schedule: ScheduleConfig{AvailableMinutes: 60},
		Log:      LogConfig{Level: "info", Format: "console"},
		Metrics:  MetricsConfig{Enabled: false, Addr: ":9090"},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("athlete.id", d.Athlete.ID)
	v.SetDefault("athlete.age", d.Athlete.Age)
	v.SetDefault("athlete.experience", d.Athlete.Experience)
	v.SetDefault("athlete.body_weight_kg", d.Athlete.BodyWeightKg)
	v.SetDefault("athlete.sport", d.Athlete.Sport)
	v.SetDefault("athlete.goal", d.Athlete.Goal)
	v.SetDefault("athlete.injuries", []string{})
	v.SetDefault("athlete.liked_methods", []string{})
	v.SetDefault("athlete.disliked_methods", []string{})
	v.SetDefault("schedule.available_minutes", d.Schedule.AvailableMinutes)
	v.SetDefault("schedule.event_date", d.Schedule.EventDate)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

// Load reads the configuration from $COACH_CONFIG or ~/.coach/config.json.
// A .env file in the working directory is loaded first so it can supply COACH_ overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration file at path and applies defaults and COACH_ environment overrides
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrNoConfig
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to the config path
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the configuration to path
func SaveTo(path string, cfg *Config) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Athlete.ID = "YOUR_ATHLETE_ID"
	example.Athlete.Injuries = []string{}
	example.Athlete.LikedMethods = []string{"straight_sets"}
	example.Athlete.DislikedMethods = []string{}

	return SaveTo(path, &example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Athlete.ID == "" || c.Athlete.ID == "YOUR_ATHLETE_ID" {
		return errors.New("athlete.id is required")
	}
	if c.Athlete.Age < 10 || c.Athlete.Age > 100 {
		return fmt.Errorf("athlete.age must be between 10 and 100, got %d", c.Athlete.Age)
	}
	switch models.ExperienceTier(strings.ToLower(c.Athlete.Experience)) {
	case models.Beginner, models.Intermediate, models.Advanced, models.Elite:
	default:
		return fmt.Errorf("athlete.experience must be beginner, intermediate, advanced or elite, got %q", c.Athlete.Experience)
	}
	if c.Athlete.BodyWeightKg < 0 {
		return fmt.Errorf("athlete.body_weight_kg must not be negative, got %v", c.Athlete.BodyWeightKg)
	}
	if c.Schedule.AvailableMinutes <= 0 {
		return fmt.Errorf("schedule.available_minutes must be positive, got %d", c.Schedule.AvailableMinutes)
	}
	if c.Schedule.EventDate != "" {
		if _, err := time.Parse(eventDateLayout, c.Schedule.EventDate); err != nil {
			return fmt.Errorf("schedule.event_date must be YYYY-MM-DD, got %q", c.Schedule.EventDate)
		}
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be \"json\" or \"console\", got %q", c.Log.Format)
	}

	return nil
}

// Profile converts the athlete section into the engine's profile
func (c AthleteConfig) Profile() models.Profile {
	return models.Profile{
		ID:              c.ID,
		Age:             c.Age,
		Experience:      models.ParseExperience(c.Experience),
		BodyWeightKg:    c.BodyWeightKg,
		Sport:           c.Sport,
		Goal:            c.Goal,
		Injuries:        c.Injuries,
		LikedMethods:    c.LikedMethods,
		DislikedMethods: c.DislikedMethods,
	}
}

// Schedule builds the day's schedule facts. Past event dates and an unset date yield no event.
func (c ScheduleConfig) Schedule(now time.Time) models.Schedule {
	s := models.Schedule{AvailableMinutes: c.AvailableMinutes, DayOfWeek: now.Weekday()}
	if c.EventDate == "" {
		return s
	}
	event, err := time.ParseInLocation(eventDateLayout, c.EventDate, now.Location())
	if err != nil {
		return s
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	days := int(math.Round(event.Sub(today).Hours() / 24))
	if days >= 0 {
		s.DaysToEvent = &days
	}
	return s
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".coach"), nil
}
