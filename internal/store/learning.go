package store

import (
	"context"
	"fmt"

	"coach/internal/models"
)

// RecordObservation stores one predicted-vs-actual recovery sample
func (s *Store) RecordObservation(ctx context.Context, o *Observation) error {
	if o.ObservedAt.IsZero() {
		o.ObservedAt = s.now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO learning_observations (athlete_id, muscle, predicted_hours, actual_hours, observed_at)
		VALUES (?, ?, ?, ?, ?)
	`, o.AthleteID, o.Muscle, o.PredictedHours, o.ActualHours, formatTime(o.ObservedAt))
	if err != nil {
		return fmt.Errorf("inserting observation: %w", err)
	}
	if o.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading observation id: %w", err)
	}
	return nil
}

// LearningProfile averages the actual/predicted ratio per muscle. An athlete without
// observations gets an empty, immature profile rather than an error.
func (s *Store) LearningProfile(ctx context.Context, athleteID string) (*models.LearningProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT muscle, AVG(actual_hours / predicted_hours), COUNT(*)
		FROM learning_observations
		WHERE athlete_id = ?
		GROUP BY muscle
		ORDER BY muscle
	`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}
	defer rows.Close()

	lp := &models.LearningProfile{AthleteID: athleteID, MuscleMultipliers: map[string]float64{}}
	for rows.Next() {
		var muscle string
		var ratio float64
		var n int
		if err := rows.Scan(&muscle, &ratio, &n); err != nil {
			return nil, err
		}
		lp.MuscleMultipliers[muscle] = ratio
		lp.SampleSize += n
	}
	return lp, rows.Err()
}
