package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsPath = "migrations"

var (
	maxRetries    = 5
	retryInterval = 200 * time.Millisecond
)

// MigrationRunner applies the embedded schema migrations to a SQLite file
type MigrationRunner struct {
	dbPath         string
	migrations     fs.FS
	migrationsPath string
	log            *slog.Logger
}

// NewMigrationRunner creates a new migration runner
func NewMigrationRunner(dbPath string, log *slog.Logger) *MigrationRunner {
	return &MigrationRunner{
		dbPath:         dbPath,
		migrations:     migrationsFS,
		migrationsPath: migrationsPath,
		log:            log,
	}
}

// WaitForDatabase pings until the database answers. Another process holding
// the write lock shows up here as a transient failure.
func (mr *MigrationRunner) WaitForDatabase(db *sql.DB) error {
	for i := 0; i < maxRetries; i++ {
		err := db.Ping()
		if err == nil {
			return nil
		}

		mr.log.Debug("database not ready", "attempt", i+1, "max_attempts", maxRetries, "error", err)
		time.Sleep(retryInterval)
	}

	return fmt.Errorf("database not ready after %d attempts", maxRetries)
}

// RunMigrations executes all pending migrations on a dedicated connection
func (mr *MigrationRunner) RunMigrations() error {
	m, err := mr.open()
	if err != nil {
		return err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		mr.log.Warn("database is in dirty state, forcing version", "version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		mr.log.Debug("no new migrations to apply", "version", version)
		return nil
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}
	mr.log.Info("applied migrations", "version", newVersion)

	return nil
}

// GetMigrationStatus returns the current migration status
func (mr *MigrationRunner) GetMigrationStatus() (version uint, dirty bool, err error) {
	m, err := mr.open()
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	return m.Version()
}

func (mr *MigrationRunner) open() (*migrate.Migrate, error) {
	// Closing the migrate instance closes this connection, so it is kept
	// apart from the GORM pool
	migrateDB, err := sql.Open("sqlite3", mr.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration database: %w", err)
	}

	if err := mr.WaitForDatabase(migrateDB); err != nil {
		_ = migrateDB.Close()
		return nil, fmt.Errorf("database readiness check failed: %w", err)
	}

	driver, err := sqlite3.WithInstance(migrateDB, &sqlite3.Config{})
	if err != nil {
		_ = migrateDB.Close()
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	source, err := iofs.New(mr.migrations, mr.migrationsPath)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return m, nil
}
