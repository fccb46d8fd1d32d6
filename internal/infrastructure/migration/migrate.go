package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator applies schema migrations using golang-migrate
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// New creates a Migrator over an existing connection
func New(db *sql.DB, migrationsPath string, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{migrate: m, logger: logger}, nil
}

// NewFromURL creates a Migrator from a database URL
func NewFromURL(databaseURL, migrationsPath string, logger *zap.Logger) (*Migrator, error) {
	m, err := migrate.New(
		fmt.Sprintf("file://%s", migrationsPath),
		databaseURL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{migrate: m, logger: logger}, nil
}

// Up runs all pending migrations
func (m *Migrator) Up() error {
	m.logger.Info("Running migrations up")

	err := m.migrate.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("No migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, dirty, err := m.migrate.Version()
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	m.logger.Info("Migrations completed",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Down rolls back all migrations
func (m *Migrator) Down() error {
	m.logger.Info("Running migrations down")

	err := m.migrate.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("No migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration down failed: %w", err)
	}

	m.logger.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations (positive = up, negative = down)
func (m *Migrator) Steps(n int) error {
	m.logger.Info("Running migration steps", zap.Int("steps", n))

	err := m.migrate.Steps(n)
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("No migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration steps failed: %w", err)
	}
	return nil
}

// Version returns the current migration version
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force sets the migration version without running migrations.
// Only for recovering from a dirty database state.
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing migration version", zap.Int("version", version))

	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the migrator's resources
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	if sourceErr != nil {
		return fmt.Errorf("failed to close source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close database: %w", dbErr)
	}
	return nil
}
