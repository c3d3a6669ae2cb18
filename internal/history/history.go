package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/rec-sniper/internal/booking"
)

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	rule_id     TEXT NOT NULL DEFAULT '',
	activity    TEXT NOT NULL,
	location    TEXT NOT NULL,
	time_label  TEXT NOT NULL,
	target_date TEXT NOT NULL,
	success     INTEGER NOT NULL,
	waitlisted  INTEGER NOT NULL,
	assumed     INTEGER NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	attempted_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS attempts_attempted_at ON attempts(attempted_at);
`

// Store records every attempt outcome so past firings can be reviewed after
// the fact.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record inserts one outcome. ruleID is empty for manual requests.
func (s *Store) Record(ctx context.Context, ruleID string, o booking.Outcome) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO attempts(rule_id, activity, location, time_label, target_date, success, waitlisted, assumed, message, error, attempted_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		ruleID, o.Activity, o.Location, o.TimeLabel, o.Date.Format("2006-01-02"),
		boolInt(o.Success), boolInt(o.Waitlisted), boolInt(o.Assumed),
		o.Message, o.Err, o.At.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// Attempt is one recorded row.
type Attempt struct {
	RuleID      string
	Outcome     booking.Outcome
	AttemptedAt time.Time
}

// Recent returns the latest attempts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT rule_id, activity, location, time_label, target_date, success, waitlisted, assumed, message, error, attempted_at
FROM attempts
ORDER BY id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var success, waitlisted, assumed int
		var targetDate, attemptedAt string
		if err := rows.Scan(&a.RuleID, &a.Outcome.Activity, &a.Outcome.Location, &a.Outcome.TimeLabel,
			&targetDate, &success, &waitlisted, &assumed, &a.Outcome.Message, &a.Outcome.Err, &attemptedAt); err != nil {
			return nil, err
		}
		a.Outcome.Success = success == 1
		a.Outcome.Waitlisted = waitlisted == 1
		a.Outcome.Assumed = assumed == 1
		if d, err := time.Parse("2006-01-02", targetDate); err == nil {
			a.Outcome.Date = d
		}
		if t, err := time.Parse(time.RFC3339, attemptedAt); err == nil {
			a.AttemptedAt = t
			a.Outcome.At = t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
