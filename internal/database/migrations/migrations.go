package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

// Migrate brings the journal schema up to the newest embedded migration and
// confirms the result. The caller keeps ownership of db.
func Migrate(db *sql.DB) error {
	m, err := newJournalMigrate(db)
	if err != nil {
		return err
	}
	// Closing m would close db.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying journal migrations: %w", err)
	}
	return checkVersion(m)
}

// SchemaVersion returns the journal schema version recorded in db and
// whether a previous migration was left half applied.
func SchemaVersion(db *sql.DB) (version uint, dirty bool, err error) {
	m, err := newJournalMigrate(db)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading journal schema version: %w", err)
	}
	return version, dirty, nil
}

// LatestVersion returns the highest migration version embedded in the binary.
func LatestVersion() (uint, error) {
	entries, err := fs.Glob(migrationFiles, "files/*.up.sql")
	if err != nil {
		return 0, fmt.Errorf("listing journal migrations: %w", err)
	}
	var latest uint
	for _, name := range entries {
		var v uint
		if _, err := fmt.Sscanf(name, "files/%d_", &v); err != nil {
			return 0, fmt.Errorf("parsing migration name %s: %w", name, err)
		}
		latest = max(latest, v)
	}
	if latest == 0 {
		return 0, errors.New("no journal migrations embedded")
	}
	return latest, nil
}

func checkVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("reading journal schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("journal schema version %d is dirty; a migration failed part way", version)
	}

	latest, err := LatestVersion()
	if err != nil {
		return err
	}
	if version != latest {
		return fmt.Errorf("journal schema version %d, this binary expects %d", version, latest)
	}
	return nil
}

func newJournalMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("loading journal migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("preparing journal database: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("preparing journal migrations: %w", err)
	}
	return m, nil
}
