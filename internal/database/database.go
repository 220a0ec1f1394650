package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/logger"
	"fintrack/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Manager owns the database handle. Every service borrows connections from
// it per call; the pool returns them when the call completes.
type Manager struct {
	config *Config
	db     *gorm.DB
}

// NewManager creates a new database manager
func NewManager(config *Config) (*Manager, error) {
	m := &Manager{config: config}
	if err := m.open(); err != nil {
		return nil, err
	}
	return m, nil
}

// GormConfig is the GORM configuration shared by the application and tests.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}
}

func (m *Manager) open() error {
	var dialector gorm.Dialector
	switch m.config.Driver {
	case DriverSQLite:
		if dir := filepath.Dir(m.config.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(m.config.SQLiteDSN())
	case DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  m.config.DSN(),
			PreferSimpleProtocol: true,
		})
	default:
		return fmt.Errorf("unsupported database driver %q", m.config.Driver)
	}

	db, err := gorm.Open(dialector, GormConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}
	if m.config.Driver == DriverSQLite {
		// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	m.db = db
	return nil
}

// NewMigrate builds a golang-migrate instance over the embedded migrations
// for the configured driver. The caller must Close it.
func NewMigrate(config *Config) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, config.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	switch config.Driver {
	case DriverSQLite:
		// Separate connection so closing the migrator leaves the app handle alone.
		sqlDB, err := sql.Open("sqlite3", config.SQLiteDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open migration database: %w", err)
		}
		driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to create sqlite migration driver: %w", err)
		}
		return migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	case DriverPostgres:
		return migrate.NewWithSourceInstance("iofs", src, config.URL())
	}
	return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
}

// Migrate applies all pending migrations.
func (m *Manager) Migrate() error {
	logger.Get().Info("Running database migrations...")

	mig, err := NewMigrate(m.config)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			logger.Get().Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			logger.Get().Warnf("migrate database close error: %v", dbErr)
		}
	}()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Get().Info("Database migrations completed successfully")
	return nil
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Driver returns the configured driver name.
func (m *Manager) Driver() string {
	return m.config.Driver
}

// Path returns the SQLite database file path.
func (m *Manager) Path() string {
	return m.config.Path
}

// Close releases every pooled connection.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	m.db = nil
	return sqlDB.Close()
}

// Reopen closes the current handle, if any, and connects again. It is used
// after the database file has been replaced on disk.
func (m *Manager) Reopen() error {
	if err := m.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return m.open()
}
