package migrations

import (
	"database/sql"
	"fmt"
	"log"
)

// CreateSessionsTable creates the sessions table. One row holds the whole
// session of one browser so a write never leaves it half updated.
func CreateSessionsTable(db *sql.DB) error {
	log.Println("Creating sessions table...")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_json TEXT NOT NULL DEFAULT '',
			access_token TEXT NOT NULL DEFAULT '',
			refresh_token TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	log.Println("Sessions table created successfully")
	return nil
}
