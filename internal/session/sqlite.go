package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bmi-quickcalc/internal/form"
)

// SQLiteStore keeps drafts in the form_sessions table.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteStore creates a store over an already migrated database.
func NewSQLiteStore(db *sql.DB, ttl time.Duration) *SQLiteStore {
	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}
}

// Get retrieves a non-expired draft.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*form.Form, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT form_data FROM form_sessions WHERE session_key = ? AND expires_at > ?`,
		key, s.now().Unix(),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session %s: %w", key, err)
	}
	return decode([]byte(data))
}

// Put inserts or replaces the draft for key.
func (s *SQLiteStore) Put(ctx context.Context, key string, f *form.Form) error {
	data, err := encode(f)
	if err != nil {
		return err
	}
	now := s.now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO form_sessions (session_key, form_data, expires_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_key) DO UPDATE SET
		   form_data = excluded.form_data,
		   expires_at = excluded.expires_at,
		   updated_at = excluded.updated_at`,
		key, string(data), now.Add(s.ttl).Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", key, err)
	}
	return nil
}

// Delete removes a draft.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM form_sessions WHERE session_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", key, err)
	}
	return nil
}

// CleanupExpired removes all expired drafts.
func (s *SQLiteStore) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM form_sessions WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}
	return res.RowsAffected()
}
