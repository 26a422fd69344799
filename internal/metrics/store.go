package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Outcome of a recorded action.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// ExecutionMetric records metadata for a single user action. It never carries
// the user's inputs or results.
type ExecutionMetric struct {
	Surface   string
	Action    string
	Outcome   string
	Latency   time.Duration
	Timestamp time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO execution_metrics (surface, action, outcome, latency_us, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.Surface, m.Action, m.Outcome, m.Latency.Microseconds(), ts.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}
	return nil
}

// DailyActivity represents action totals for a single day.
type DailyActivity struct {
	Date         string  `json:"date"`
	Calculations int     `json:"calculations"`
	Rejected     int     `json:"rejected"`
	Errors       int     `json:"errors"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// GetDailyActivity retrieves totals for the last N days, newest first.
func (s *Store) GetDailyActivity(ctx context.Context, days int) ([]DailyActivity, error) {
	since := time.Now().AddDate(0, 0, -days).Unix()
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(created_at, 'unixepoch') AS day,
		       SUM(CASE WHEN outcome = 'ok' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome = 'rejected' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome = 'error' THEN 1 ELSE 0 END),
		       AVG(latency_us)
		FROM execution_metrics
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily activity: %w", err)
	}
	defer rows.Close()

	var results []DailyActivity
	for rows.Next() {
		var (
			d     DailyActivity
			avgUS sql.NullFloat64
		)
		if err := rows.Scan(&d.Date, &d.Calculations, &d.Rejected, &d.Errors, &avgUS); err != nil {
			return nil, fmt.Errorf("failed to scan daily activity: %w", err)
		}
		if avgUS.Valid {
			d.AvgLatencyMS = avgUS.Float64 / 1000
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -olderThanDays).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM execution_metrics WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	return res.RowsAffected()
}
