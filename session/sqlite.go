package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"clearance/portal/security"
)

const queryTimeout = 3 * time.Second

// SQLiteStore keeps sessions in the sessions table, one row per browser
type SQLiteStore struct {
	db     *sql.DB
	cipher *security.Cipher
}

// NewSQLiteStore returns a store over a migrated database
func NewSQLiteStore(db *sql.DB, cipher *security.Cipher) *SQLiteStore {
	return &SQLiteStore{db: db, cipher: cipher}
}

func (s *SQLiteStore) Get(ctx context.Context, id string) Session {
	if id == "" {
		return Session{}
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var rec record
	err := s.db.QueryRowContext(ctx, `
		SELECT user_json, access_token, refresh_token
		FROM sessions
		WHERE id = ?
	`, id).Scan(&rec.User, &rec.AccessToken, &rec.RefreshToken)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}
	}
	if err != nil {
		log.Printf("Error reading session %s: %v", shortID(id), err)
		return Session{}
	}

	sess, err := decode(s.cipher, rec)
	if err != nil {
		log.Printf("Discarding stored session %s: %v", shortID(id), err)
		return Session{}
	}

	return sess
}

func (s *SQLiteStore) Set(ctx context.Context, id string, sess Session) error {
	if id == "" {
		return errors.New("session id is required")
	}
	if !sess.Consistent() {
		return ErrTornSession
	}
	if sess.IsEmpty() {
		return s.Clear(ctx, id)
	}

	rec, err := encode(s.cipher, sess)
	if err != nil {
		return err
	}

	var refreshExpiry sql.NullInt64
	if exp, ok := TokenExpiry(sess.RefreshToken); ok {
		refreshExpiry = sql.NullInt64{Int64: exp.Unix(), Valid: true}
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_json, access_token, refresh_token, refresh_expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_json = excluded.user_json,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			refresh_expires_at = excluded.refresh_expires_at,
			updated_at = excluded.updated_at
	`, id, rec.User, rec.AccessToken, rec.RefreshToken, refreshExpiry, now, now)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// SweepExpired deletes sessions whose refresh token expired before now.
// Sessions without a readable expiry are kept.
func (s *SQLiteStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE refresh_expires_at IS NOT NULL AND refresh_expires_at < ?
	`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}

	return res.RowsAffected()
}
