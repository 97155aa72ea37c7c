package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Workout history (append-only)
		`CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			athlete_id TEXT NOT NULL,
			performed_at TEXT NOT NULL,
			muscles TEXT NOT NULL DEFAULT '[]',
			intensity TEXT NOT NULL DEFAULT '',
			goal TEXT NOT NULL DEFAULT '',
			difficulty TEXT NOT NULL DEFAULT '',
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			session_rpe REAL NOT NULL DEFAULT 0,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workouts_athlete_date ON workouts(athlete_id, performed_at)`,

		`CREATE TABLE IF NOT EXISTS exercises (
			workout_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			sets INTEGER NOT NULL,
			reps INTEGER NOT NULL DEFAULT 0,
			rpe REAL NOT NULL DEFAULT 0,
			type TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (workout_id, position),
			FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
		)`,

		// Subjective check-ins
		`CREATE TABLE IF NOT EXISTS checkins (
			id TEXT PRIMARY KEY,
			athlete_id TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			readiness INTEGER,
			fatigue TEXT NOT NULL DEFAULT '',
			motivation TEXT NOT NULL DEFAULT '',
			stress TEXT NOT NULL DEFAULT '',
			sleep_hours REAL,
			sleep_quality TEXT NOT NULL DEFAULT '',
			sore_muscles TEXT NOT NULL DEFAULT '[]',
			active_injury INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_checkins_athlete_date ON checkins(athlete_id, recorded_at)`,

		// Decision log
		`CREATE TABLE IF NOT EXISTS decisions (
			id TEXT PRIMARY KEY,
			athlete_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			option_id TEXT NOT NULL,
			option_type TEXT NOT NULL,
			intensity REAL NOT NULL,
			volume REAL NOT NULL,
			total_score REAL NOT NULL,
			confidence REAL NOT NULL,
			reasoning TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_decisions_athlete_date ON decisions(athlete_id, created_at)`,

		// Predicted vs observed recovery, feeds the learning profile
		`CREATE TABLE IF NOT EXISTS learning_observations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			athlete_id TEXT NOT NULL,
			muscle TEXT NOT NULL,
			predicted_hours REAL NOT NULL CHECK (predicted_hours > 0),
			actual_hours REAL NOT NULL CHECK (actual_hours >= 0),
			observed_at TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_learning_athlete ON learning_observations(athlete_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
