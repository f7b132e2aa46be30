package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// schemaVersion is the newest migration shipped in migrations/.
const schemaVersion uint = 1

// ErrSchemaTooNew means the database was written by a newer finman.
var ErrSchemaTooNew = errors.New("database schema is newer than this build supports")

// migrateSchema brings the database at dbPath up to schemaVersion and
// returns the resulting version. A dirty database (a migration that failed
// halfway) is reported rather than forced.
func migrateSchema(dbPath string) (uint, error) {
	// The migrate driver closes the handle it is given, so it gets its own.
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open migration database: %w", err)
	}
	defer db.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("create sqlite driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		// fresh database
	case err != nil:
		return 0, fmt.Errorf("read schema version: %w", err)
	case dirty:
		return version, fmt.Errorf("schema version %d is dirty; repair %s by hand", version, dbPath)
	case version > schemaVersion:
		return version, fmt.Errorf("%w: have %d, support %d", ErrSchemaTooNew, version, schemaVersion)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	return schemaVersion, nil
}
