package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"clearance/portal/migrations"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the shared connection opened by InitDB
var DB *sql.DB

// Open opens a SQLite database at path and applies the connection settings
// the session store relies on for concurrent writers.
func Open(path string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_journal=WAL&_timeout=10000&_busy_timeout=10000"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	// Execute PRAGMA statements for better concurrency handling
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// InitDB opens the database at path, stores it in DB and runs migrations
func InitDB(path string) error {
	db, err := Open(path)
	if err != nil {
		return err
	}
	DB = db

	if err := migrations.RunMigrations(DB); err != nil {
		return err
	}

	return nil
}
