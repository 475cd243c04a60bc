package migrations

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrate(t *testing.T) {
	t.Run("fresh journal gets every table", func(t *testing.T) {
		db := openTestDB(t)

		if err := Migrate(db); err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}

		for _, table := range []string{"operations", "schema_migrations"} {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			if err != nil {
				t.Errorf("table %s missing: %v", table, err)
			}
		}
	})

	t.Run("running twice is a no-op", func(t *testing.T) {
		db := openTestDB(t)

		if err := Migrate(db); err != nil {
			t.Fatalf("first Migrate() error = %v", err)
		}
		if err := Migrate(db); err != nil {
			t.Errorf("second Migrate() error = %v", err)
		}
	})

	t.Run("dirty schema is reported", func(t *testing.T) {
		db := openTestDB(t)
		if err := Migrate(db); err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}
		if _, err := db.Exec("UPDATE schema_migrations SET dirty = 1"); err != nil {
			t.Fatalf("marking schema dirty: %v", err)
		}

		err := Migrate(db)
		if err == nil || !strings.Contains(strings.ToLower(err.Error()), "dirty") {
			t.Errorf("Migrate() error = %v, want dirty schema error", err)
		}
	})
}

func TestSchemaVersion(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion() on fresh journal error = %v", err)
	}
	if version != 0 || dirty {
		t.Errorf("fresh SchemaVersion() = %d, %v, want 0, false", version, dirty)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	latest, err := LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion() error = %v", err)
	}
	if latest != 1 {
		t.Errorf("LatestVersion() = %d, want 1", latest)
	}
	version, dirty, err = SchemaVersion(db)
	if err != nil || version != latest || dirty {
		t.Errorf("SchemaVersion() = %d, %v, %v, want %d, false, nil", version, dirty, err, latest)
	}
}

func TestSchema_Operations(t *testing.T) {
	db := openTestDB(t)

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO operations (id, kind, path, status, started_at, finished_at)
		VALUES ('op-1', 'delete', '/pics/a.jpg', 'success', datetime('now'), datetime('now'))
	`)
	if err != nil {
		t.Fatalf("Failed to insert operation: %v", err)
	}

	var outcome, target string
	err = db.QueryRow("SELECT backup_outcome, target FROM operations WHERE id = 'op-1'").Scan(&outcome, &target)
	if err != nil {
		t.Fatalf("Failed to retrieve operation: %v", err)
	}
	if outcome != "" || target != "" {
		t.Errorf("defaults = %q/%q, want empty strings", outcome, target)
	}
}

func TestSchema_OperationIDUnique(t *testing.T) {
	db := openTestDB(t)

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	insert := `INSERT INTO operations (id, kind, path, status, started_at, finished_at)
		VALUES ('op-1', 'rename', '/x', 'success', datetime('now'), datetime('now'))`
	if _, err := db.Exec(insert); err != nil {
		t.Fatalf("Failed to insert first operation: %v", err)
	}
	if _, err := db.Exec(insert); err == nil {
		t.Error("Expected primary key violation for duplicate id, but insert succeeded")
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	return db
}
