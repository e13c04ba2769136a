package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rsalgueiro/truck-booking/pkg/config"
)

// RunMigrations applies all pending schema migrations from the configured
// migrations directory. A database that is already up to date is not an error.
func RunMigrations(cfg *config.DatabaseConfig) error {
	sourceURL := fmt.Sprintf("file://%s", cfg.MigrationsDir)

	m, err := migrate.New(sourceURL, cfg.URL())
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
