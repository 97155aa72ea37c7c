package store

import "time"

// Decision is one logged decision cycle
type Decision struct {
	ID         string    `db:"id"`
	AthleteID  string    `db:"athlete_id"`
	CreatedAt  time.Time `db:"created_at"`
	OptionID   string    `db:"option_id"`
	OptionType string    `db:"option_type"`
	Intensity  float64   `db:"intensity"`
	Volume     float64   `db:"volume"`
	TotalScore float64   `db:"total_score"`
	Confidence float64   `db:"confidence"` // 0-100
	Reasoning  string    `db:"reasoning"`
	Payload    []byte    `db:"payload"` // JSON of the full reasoning result
}

// Observation pairs a predicted muscle recovery time with the one the athlete actually reported
type Observation struct {
	ID             int64     `db:"id"`
	AthleteID      string    `db:"athlete_id"`
	Muscle         string    `db:"muscle"`
	PredictedHours float64   `db:"predicted_hours"`
	ActualHours    float64   `db:"actual_hours"`
	ObservedAt     time.Time `db:"observed_at"`
}

// Ratio is actual over predicted hours. Above 1 means the athlete recovers slower than modeled.
func (o Observation) Ratio() float64 {
	if o.PredictedHours <= 0 {
		return 1
	}
	return o.ActualHours / o.PredictedHours
}
