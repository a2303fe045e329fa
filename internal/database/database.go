package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budget-tracker/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the GORM handle of the local SQLite store
type DB struct {
	*gorm.DB
	path string
}

// New opens (creating if needed) the SQLite database at path
func New(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// SQLite allows a single writer
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:   db,
		path: path,
	}, nil
}

// Path returns the database file location
func (db *DB) Path() string {
	return db.path
}

func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(&models.TransactionRow{})
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return CheckConnection(sqlDB)
}

// CheckConnection pings the database once
func CheckConnection(sqlDB *sql.DB) error {
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// Initialize opens the database and brings its schema up to date.
// Embedded SQL migrations run first; AutoMigrate is the fallback.
func Initialize(path string, log *slog.Logger) (*DB, error) {
	db, err := New(path)
	if err != nil {
		return nil, err
	}

	runner := NewMigrationRunner(path, log)
	if err := runner.RunMigrations(); err != nil {
		log.Warn("migration runner failed, falling back to auto-migrate", "error", err)

		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	log.Debug("database initialized", "path", path)

	return db, nil
}
