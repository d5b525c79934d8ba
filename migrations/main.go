package migrations

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration is a named schema change applied at most once
type Migration struct {
	Name string
	Fn   func(*sql.DB) error
}

// All returns every migration in the order it must be applied
func All() []Migration {
	return []Migration{
		{"create_sessions_table", CreateSessionsTable},
		{"add_session_refresh_expiry", AddSessionRefreshExpiry},
		{"create_saved_filters_table", CreateSavedFiltersTable},
	}
}

// RunMigrations executes all migrations in the correct order
func RunMigrations(db *sql.DB) error {
	log.Println("Running migrations...")

	// Create migrations table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Run each migration if it hasn't been applied yet
	for _, migration := range All() {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE name = ?", migration.Name).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}

		if count > 0 {
			log.Printf("Skipping already applied migration: %s", migration.Name)
			continue
		}

		log.Printf("Applying migration: %s", migration.Name)
		if err := migration.Fn(db); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Name, err)
		}

		_, err = db.Exec("INSERT INTO migrations (name) VALUES (?)", migration.Name)
		if err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
	}

	log.Println("All migrations completed successfully")
	return nil
}

// Applied lists the names of migrations already recorded
func Applied(db *sql.DB) ([]string, error) {
	rows, err := db.Query("SELECT name FROM migrations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
