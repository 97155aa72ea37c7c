// Package validation checks inbound JSON payloads against schemas before decoding them.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"coach/internal/models"
)

// ErrInvalidPayload is returned when a payload fails schema validation
var ErrInvalidPayload = errors.New("invalid payload")

const checkInSchema = `{
	"type": "object",
	"properties": {
		"readiness":     {"type": "integer", "minimum": 0, "maximum": 100},
		"fatigue":       {"enum": ["low", "moderate", "high", "very_high"]},
		"motivation":    {"enum": ["very_low", "low", "moderate", "high", "very_high"]},
		"stress":        {"enum": ["low", "moderate", "high", "very_high"]},
		"sleep_hours":   {"type": "number", "minimum": 0, "maximum": 24},
		"sleep_quality": {"enum": ["poor", "fair", "good", "excellent"]},
		"sore_muscles":  {"type": "array", "items": {"type": "string", "minLength": 1}},
		"active_injury": {"type": "boolean"},
		"recorded_at":   {"type": "string", "format": "date-time"}
	},
	"additionalProperties": false
}`

const workoutsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["performed_at", "exercises"],
		"properties": {
			"id":               {"type": "string"},
			"performed_at":     {"type": "string", "format": "date-time"},
			"muscles":          {"type": "array", "items": {"type": "string"}},
			"intensity":        {"enum": ["light", "moderate", "heavy", "maximal"]},
			"goal":             {"type": "string"},
			"difficulty":       {"type": "string"},
			"duration_minutes": {"type": "integer", "minimum": 0},
			"session_rpe":      {"type": "number", "minimum": 0, "maximum": 10},
			"exercises": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["name", "sets"],
					"properties": {
						"name": {"type": "string", "minLength": 1},
						"sets": {"type": "integer", "minimum": 0},
						"reps": {"type": "integer", "minimum": 0},
						"rpe":  {"type": "number", "minimum": 0, "maximum": 10},
						"type": {"type": "string"}
					}
				}
			}
		}
	}
}`

var (
	checkInLoader  = gojsonschema.NewStringLoader(checkInSchema)
	workoutsLoader = gojsonschema.NewStringLoader(workoutsSchema)
)

func validate(schema gojsonschema.JSONLoader, data []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(errs, "; "))
	}
	return nil
}

// ParseCheckIn validates and decodes a check-in
func ParseCheckIn(data []byte) (*models.CheckIn, error) {
	if err := validate(checkInLoader, data); err != nil {
		return nil, err
	}
	var c models.CheckIn
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding check-in: %w", err)
	}
	return &c, nil
}

// ParseWorkouts validates and decodes a workout import, stamping each record with athleteID
func ParseWorkouts(data []byte, athleteID string) ([]models.WorkoutRecord, error) {
	if err := validate(workoutsLoader, data); err != nil {
		return nil, err
	}
	var ws []models.WorkoutRecord
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decoding workouts: %w", err)
	}
	for i := range ws {
		ws[i].AthleteID = athleteID
	}
	return ws, nil
}
