// Package postgres implements the repositories on PostgreSQL through GORM.
package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"authcore/config"
	"authcore/internal/domain/lifecycle"
	"authcore/internal/errors"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the connection pool. The pool is pinged, and the schema migrated
// when migrations are enabled, on application start.
func New(params Params) (*gorm.DB, error) {
	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}
	db = db.Session(&gorm.Session{
		// Multi-step atomic work goes through txManager.Execute.
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	migrate := params.Config.Migrations != nil && params.Config.Migrations.Enabled
	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return start(ctx, sqlDB, migrate, params.Logger)
		},
		OnStop: func(context.Context) error {
			return errors.Wrap(sqlDB.Close(), "failed to close PostgreSQL pool")
		},
	})

	return db, nil
}

func start(ctx context.Context, sqlDB *sql.DB, migrate bool, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "failed to ping PostgreSQL")
	}

	if !migrate {
		logger.Info("Schema migrations disabled")

		return nil
	}

	return RunMigrations(ctx, sqlDB, logger)
}
