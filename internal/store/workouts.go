package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"coach/internal/models"
)

// SaveWorkout appends a workout and its exercises. An empty ID is filled with a new UUID.
func (s *Store) SaveWorkout(ctx context.Context, w *models.WorkoutRecord) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	muscles, err := json.Marshal(nonNil(w.Muscles))
	if err != nil {
		return fmt.Errorf("encoding muscles: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workouts (
			id, athlete_id, performed_at, muscles, intensity, goal, difficulty,
			duration_minutes, session_rpe
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		w.ID, w.AthleteID, formatTime(w.PerformedAt), string(muscles), string(w.Intensity),
		w.Goal, w.Difficulty, w.DurationMinutes, w.SessionRPE,
	)
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}

	for i, e := range w.Exercises {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO exercises (workout_id, position, name, sets, reps, rpe, type)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, w.ID, i, e.Name, e.Sets, e.Reps, e.RPE, e.Type)
		if err != nil {
			return fmt.Errorf("inserting exercise %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// SaveWorkouts appends a batch, stopping at the first failure
func (s *Store) SaveWorkouts(ctx context.Context, ws []models.WorkoutRecord) error {
	for i := range ws {
		if err := s.SaveWorkout(ctx, &ws[i]); err != nil {
			return fmt.Errorf("workout %d: %w", i, err)
		}
	}
	return nil
}

// GetWorkout retrieves a single workout with its exercises
func (s *Store) GetWorkout(ctx context.Context, id string) (*models.WorkoutRecord, error) {
	rows, err := s.db.QueryContext(ctx, workoutSelect+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	workouts, err := scanWorkouts(rows)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, ErrWorkoutNotFound
	}
	if err := s.attachExercises(ctx, workouts); err != nil {
		return nil, err
	}
	return &workouts[0], nil
}

// LoadHistory returns the athlete's workouts from the trailing windowDays, most recent first
func (s *Store) LoadHistory(ctx context.Context, athleteID string, windowDays int) ([]models.WorkoutRecord, error) {
	cutoff := s.now().Add(-time.Duration(windowDays) * 24 * time.Hour)

	rows, err := s.db.QueryContext(ctx, workoutSelect+`
		WHERE athlete_id = ? AND performed_at >= ?
		ORDER BY performed_at DESC, id
	`, athleteID, formatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	workouts, err := scanWorkouts(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachExercises(ctx, workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

const workoutSelect = `
	SELECT id, athlete_id, performed_at, muscles, intensity, goal, difficulty,
		duration_minutes, session_rpe
	FROM workouts`

// scanWorkouts drains and closes rows
func scanWorkouts(rows *sql.Rows) ([]models.WorkoutRecord, error) {
	defer rows.Close()

	workouts := []models.WorkoutRecord{}
	for rows.Next() {
		var w models.WorkoutRecord
		var performedAt, muscles, intensity string

		err := rows.Scan(
			&w.ID, &w.AthleteID, &performedAt, &muscles, &intensity, &w.Goal, &w.Difficulty,
			&w.DurationMinutes, &w.SessionRPE,
		)
		if err != nil {
			return nil, err
		}

		if w.PerformedAt, err = parseTime("performed_at", performedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(muscles), &w.Muscles); err != nil {
			return nil, fmt.Errorf("decoding muscles for %s: %w", w.ID, err)
		}
		if len(w.Muscles) == 0 {
			w.Muscles = nil
		}
		w.Intensity = models.IntensityTier(intensity)
		workouts = append(workouts, w)
	}

	return workouts, rows.Err()
}

// attachExercises runs after the workout rows are closed so a single connection is enough
func (s *Store) attachExercises(ctx context.Context, workouts []models.WorkoutRecord) error {
	for i := range workouts {
		rows, err := s.db.QueryContext(ctx, `
			SELECT name, sets, reps, rpe, type
			FROM exercises
			WHERE workout_id = ?
			ORDER BY position
		`, workouts[i].ID)
		if err != nil {
			return fmt.Errorf("querying exercises: %w", err)
		}

		for rows.Next() {
			var e models.Exercise
			if err := rows.Scan(&e.Name, &e.Sets, &e.Reps, &e.RPE, &e.Type); err != nil {
				rows.Close()
				return err
			}
			workouts[i].Exercises = append(workouts[i].Exercises, e)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// isNoRows reports a missing single-row result
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
