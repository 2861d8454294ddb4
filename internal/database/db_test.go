package database

import (
	"path/filepath"
	"testing"
)

func TestNewDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "planner.db")

	db, err := NewDB(dbPath, nil)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	defer db.Close()

	tables := []string{
		"plan_cache",
		"meal_plans",
		"shopping_lists",
		"user_preferences",
		"pantry_items",
		"families",
		"family_members",
		"cookbook_recipes",
		"execution_metrics",
	}
	for _, table := range tables {
		t.Run(table, func(t *testing.T) {
			var name string
			err := db.SQL.Get(&name, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
			if err != nil {
				t.Fatalf("table %s not found: %v", table, err)
			}
			if name != table {
				t.Errorf("Expected table %q, got %q", table, name)
			}
		})
	}

	t.Run("MigrationsAreIdempotent", func(t *testing.T) {
		version, err := RunMigrations(dbPath)
		if err != nil {
			t.Fatalf("Expected no error on second run, got %v", err)
		}
		if version != 1 {
			t.Errorf("Expected schema version 1, got %d", version)
		}
	})

	if got, want := db.Dir(), filepath.Dir(dbPath); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
}
