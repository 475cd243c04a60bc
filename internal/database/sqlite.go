package database

import (
	"database/sql"
	"fmt"

	"pin-go/internal/database/migrations"
	"pin-go/internal/files"
	"pin-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal implements files.Journal using SQLite.
type SQLiteJournal struct {
	db   *sql.DB
	path string
}

var _ files.Journal = (*SQLiteJournal)(nil)

// NewSQLiteJournal opens the journal at path, applying any pending
// migrations. path can be a file path or ":memory:" for an in-memory journal.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}

	return &SQLiteJournal{db: db, path: path}, nil
}

// NewSQLiteJournalFromDB wraps an existing database connection.
// The caller is responsible for ensuring the schema is migrated.
func NewSQLiteJournalFromDB(db *sql.DB) *SQLiteJournal {
	return &SQLiteJournal{db: db}
}

// OpenConnection opens and configures a SQLite database connection.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to :memory: gets its own empty database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Record inserts a finished operation.
func (s *SQLiteJournal) Record(op *model.Operation) error {
	_, err := s.db.Exec(`
		INSERT INTO operations (
			id, request_id, kind, path, target,
			backup_outcome, backup_hash, backup_error,
			status, error, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		op.ID, op.RequestID, op.Kind, op.Path, op.Target,
		op.BackupOutcome, op.BackupHash, op.BackupError,
		op.Status, op.Error, op.StartedAt.UTC(), op.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording operation %s: %w", op.ID, err)
	}
	return nil
}

// List returns up to limit operations, newest first. A non-positive limit
// returns everything.
func (s *SQLiteJournal) List(limit int) ([]*model.Operation, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`
		SELECT id, request_id, kind, path, target,
			backup_outcome, backup_hash, backup_error,
			status, error, started_at, finished_at
		FROM operations
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*model.Operation
	for rows.Next() {
		op := &model.Operation{}
		if err := rows.Scan(
			&op.ID, &op.RequestID, &op.Kind, &op.Path, &op.Target,
			&op.BackupOutcome, &op.BackupHash, &op.BackupError,
			&op.Status, &op.Error, &op.StartedAt, &op.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// Path returns the database file path, or ":memory:".
func (s *SQLiteJournal) Path() string {
	return s.path
}

// Close closes the underlying connection.
func (s *SQLiteJournal) Close() error {
	return s.db.Close()
}
