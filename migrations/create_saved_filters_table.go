package migrations

import (
	"database/sql"
	"fmt"
	"log"
)

// CreateSavedFiltersTable creates the saved_filters table for list-view presets
func CreateSavedFiltersTable(db *sql.DB) error {
	log.Println("Creating saved_filters table...")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS saved_filters (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			user_id TEXT NOT NULL,
			view TEXT NOT NULL,
			query TEXT NOT NULL DEFAULT '',
			is_default BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, view, name)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create saved_filters table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_saved_filters_lookup ON saved_filters (user_id, view);
	`)
	if err != nil {
		return fmt.Errorf("failed to create saved_filters index: %w", err)
	}

	return nil
}
