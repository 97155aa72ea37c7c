package store

import (
	"database/sql"
	"time"
)

// NewTestStore wraps an existing connection without running migrations and pins the clock.
// This is only intended for use in tests.
func NewTestStore(sqlDB *sql.DB, now time.Time) *Store {
	s := newStore(sqlDB)
	s.now = func() time.Time { return now }
	return s
}
