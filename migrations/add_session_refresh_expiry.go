package migrations

import (
	"database/sql"
	"fmt"
	"log"
)

// AddSessionRefreshExpiry adds the refresh token expiry used by the sweeper
func AddSessionRefreshExpiry(db *sql.DB) error {
	log.Println("Adding refresh_expires_at column to sessions table...")

	// First check if the column already exists
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM pragma_table_info('sessions')
		WHERE name = 'refresh_expires_at'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("error checking for refresh_expires_at column: %w", err)
	}

	if count > 0 {
		log.Println("refresh_expires_at column already exists in sessions table")
		return nil
	}

	_, err = db.Exec(`
		ALTER TABLE sessions
		ADD COLUMN refresh_expires_at INTEGER
	`)
	if err != nil {
		return fmt.Errorf("error adding refresh_expires_at column: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sessions_refresh_expiry ON sessions (refresh_expires_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create sessions expiry index: %w", err)
	}

	log.Println("Successfully added refresh_expires_at to sessions table")
	return nil
}
