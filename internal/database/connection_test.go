package database

import (
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "data", "legistar.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestNewConnection(t *testing.T) {
	if _, err := NewConnection(""); err == nil {
		t.Error("Expected error for empty database path")
	}

	db, err := NewConnection(filepath.Join(t.TempDir(), "nested", "dir", "test.db"))
	if err != nil {
		t.Fatalf("Expected directory to be created, got %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Errorf("Expected live connection, got %v", err)
	}
}

func TestRunMigrations(t *testing.T) {
	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatal(err)
	}
	if version != 1 || dirty {
		t.Errorf("Expected version 1 clean, got %d dirty=%v", version, dirty)
	}

	version, _, err = RunMigrations(db)
	if err != nil {
		t.Errorf("Expected second run to be a no-op, got %v", err)
	}
	if version != 1 {
		t.Errorf("Expected version 1 after second run, got %d", version)
	}

	for _, table := range []string{"bills", "votes", "events"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s, got %v", table, err)
		}
	}
}
