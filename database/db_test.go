package database

import (
	"os"
	"testing"

	"clearance/portal/migrations"
)

func TestMain(m *testing.M) {
	if err := InitDB("file:database_test?mode=memory&cache=shared"); err != nil {
		panic(err)
	}

	code := m.Run()

	DB.Close()

	os.Exit(code)
}

func TestInitDB(t *testing.T) {
	// Test that tables were created
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('sessions', 'saved_filters', 'migrations')").Scan(&count)
	if err != nil {
		t.Fatalf("Error checking tables: %v", err)
	}

	if count != 3 {
		t.Errorf("Expected 3 tables, got %d", count)
	}

	// The expiry column is added by a later migration
	err = DB.QueryRow("SELECT COUNT(*) FROM pragma_table_info('sessions') WHERE name = 'refresh_expires_at'").Scan(&count)
	if err != nil {
		t.Fatalf("Error checking columns: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected refresh_expires_at column on sessions, got %d", count)
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	if err := RunMigrations(); err != nil {
		t.Fatalf("Error re-running migrations: %v", err)
	}

	applied, err := migrations.Applied(DB)
	if err != nil {
		t.Fatalf("Error listing migrations: %v", err)
	}

	if len(applied) != len(migrations.All()) {
		t.Errorf("Expected %d applied migrations, got %d", len(migrations.All()), len(applied))
	}
}
