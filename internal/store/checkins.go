package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"coach/internal/models"
)

// SaveCheckIn stores a check-in. A zero RecordedAt is stamped with the current time.
func (s *Store) SaveCheckIn(ctx context.Context, athleteID string, c *models.CheckIn) (string, error) {
	if c.RecordedAt.IsZero() {
		c.RecordedAt = s.now()
	}
	sore, err := json.Marshal(nonNil(c.SoreMuscles))
	if err != nil {
		return "", fmt.Errorf("encoding sore muscles: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkins (
			id, athlete_id, recorded_at, readiness, fatigue, motivation, stress,
			sleep_hours, sleep_quality, sore_muscles, active_injury
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id, athleteID, formatTime(c.RecordedAt), toNullInt(c.Readiness), c.Fatigue, c.Motivation, c.Stress,
		toNullFloat(c.SleepHours), c.SleepQuality, string(sore), c.ActiveInjury,
	)
	if err != nil {
		return "", fmt.Errorf("inserting check-in: %w", err)
	}
	return id, nil
}

const checkInSelect = `
	SELECT recorded_at, readiness, fatigue, motivation, stress,
		sleep_hours, sleep_quality, sore_muscles, active_injury
	FROM checkins`

// LatestCheckIn returns the most recent check-in for the athlete
func (s *Store) LatestCheckIn(ctx context.Context, athleteID string) (*models.CheckIn, error) {
	row := s.db.QueryRowContext(ctx, checkInSelect+`
		WHERE athlete_id = ?
		ORDER BY recorded_at DESC
		LIMIT 1
	`, athleteID)

	c, err := scanCheckIn(row)
	if isNoRows(err) {
		return nil, ErrNoCheckIn
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// RecentCheckIns returns check-ins from the trailing days, most recent first
func (s *Store) RecentCheckIns(ctx context.Context, athleteID string, days int) ([]models.CheckIn, error) {
	cutoff := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	rows, err := s.db.QueryContext(ctx, checkInSelect+`
		WHERE athlete_id = ? AND recorded_at >= ?
		ORDER BY recorded_at DESC
	`, athleteID, formatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("querying check-ins: %w", err)
	}
	defer rows.Close()

	out := []models.CheckIn{}
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCheckIn(row scanner) (*models.CheckIn, error) {
	var c models.CheckIn
	var recordedAt, sore string
	var readiness sql.NullInt64
	var sleep sql.NullFloat64

	err := row.Scan(
		&recordedAt, &readiness, &c.Fatigue, &c.Motivation, &c.Stress,
		&sleep, &c.SleepQuality, &sore, &c.ActiveInjury,
	)
	if err != nil {
		return nil, err
	}

	if c.RecordedAt, err = parseTime("recorded_at", recordedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(sore), &c.SoreMuscles); err != nil {
		return nil, fmt.Errorf("decoding sore muscles: %w", err)
	}
	if len(c.SoreMuscles) == 0 {
		c.SoreMuscles = nil
	}
	c.Readiness = fromNullInt(readiness)
	c.SleepHours = fromNullFloat(sleep)
	return &c, nil
}
