package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// LogDecision appends a decision entry, assigning its ID and timestamp when unset
func (s *Store) LogDecision(ctx context.Context, d *Decision) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}
	payload := d.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions (
			id, athlete_id, created_at, option_id, option_type, intensity, volume,
			total_score, confidence, reasoning, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID, d.AthleteID, formatTime(d.CreatedAt), d.OptionID, d.OptionType, d.Intensity, d.Volume,
		d.TotalScore, d.Confidence, d.Reasoning, string(payload),
	)
	if err != nil {
		return fmt.Errorf("inserting decision: %w", err)
	}
	return nil
}

const decisionSelect = `
	SELECT id, athlete_id, created_at, option_id, option_type, intensity, volume,
		total_score, confidence, reasoning, payload
	FROM decisions`

// GetDecision retrieves a logged decision by ID
func (s *Store) GetDecision(ctx context.Context, id string) (*Decision, error) {
	row := s.db.QueryRowContext(ctx, decisionSelect+` WHERE id = ?`, id)
	d, err := scanDecision(row)
	if isNoRows(err) {
		return nil, ErrDecisionNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListDecisions returns the athlete's most recent decisions, newest first. limit <= 0 returns all.
func (s *Store) ListDecisions(ctx context.Context, athleteID string, limit int) ([]Decision, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, decisionSelect+`
		WHERE athlete_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?
	`, athleteID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying decisions: %w", err)
	}
	defer rows.Close()

	out := []Decision{}
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func scanDecision(row scanner) (*Decision, error) {
	var d Decision
	var createdAt, payload string

	err := row.Scan(
		&d.ID, &d.AthleteID, &createdAt, &d.OptionID, &d.OptionType, &d.Intensity, &d.Volume,
		&d.TotalScore, &d.Confidence, &d.Reasoning, &payload,
	)
	if err != nil {
		return nil, err
	}
	if d.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	d.Payload = []byte(payload)
	return &d, nil
}
