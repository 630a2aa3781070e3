package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"authcore/internal/errors"
	"authcore/internal/infra/persistence/postgres/migrations"

	"github.com/pressly/goose/v3"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// gooseDownContext is a seam for testing goose.DownContext.
var gooseDownContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.DownContext(ctx, db, dir, opts...)
}

func configureGoose() error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())

	return errors.Wrap(goose.SetDialect("postgres"), "failed to set goose dialect")
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := configureGoose(); err != nil {
		return err
	}

	if err := gooseUpContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}

	if logger != nil {
		logger.InfoContext(ctx, "Database migrations applied")
	}

	return nil
}

// RollbackMigration reverts the most recently applied migration.
func RollbackMigration(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := configureGoose(); err != nil {
		return err
	}

	if err := gooseDownContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "failed to roll back migration")
	}

	if logger != nil {
		logger.InfoContext(ctx, "Database migration rolled back")
	}

	return nil
}

// MigrationVersion reports the current schema version.
func MigrationVersion(ctx context.Context, db *sql.DB) (int64, error) {
	if err := configureGoose(); err != nil {
		return 0, err
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read schema version")
	}

	return version, nil
}
