package db

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"familyhub/pkg/types"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migrationURL rewrites a postgres URL for the pgx/v5 migrate driver.
func migrationURL(config *types.Config) (string, error) {
	u, err := url.Parse(config.DatabaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}

	switch u.Scheme {
	case "postgres", "postgresql", "pgx5":
		u.Scheme = "pgx5"
	default:
		return "", fmt.Errorf("unsupported database url scheme %q", u.Scheme)
	}

	q := u.Query()
	if q.Get("search_path") == "" && config.DatabaseSchema != "" && !strings.EqualFold(config.DatabaseSchema, "public") {
		q.Set("search_path", config.DatabaseSchema)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func newMigrator(config *types.Config) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	dbURL, err := migrationURL(config)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return nil, fmt.Errorf("initialize migrations: %w", err)
	}

	return m, nil
}

// Migrate applies pending migrations (steps == 0) or moves by steps.
func Migrate(config *types.Config, logger *logrus.Logger, steps int) error {
	m, err := newMigrator(config)
	if err != nil {
		return err
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			logger.WithField("source_error", sourceErr).WithField("db_error", dbErr).Warn("failed to close migrator")
		}
	}()

	if steps == 0 {
		err = m.Up()
	} else {
		err = m.Steps(steps)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("database is up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}

	logger.WithField("version", version).WithField("dirty", dirty).Info("migrations applied")
	return nil
}
