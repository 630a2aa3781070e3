package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"authcore/config"
	logs "authcore/internal/infra/log"
	"authcore/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
	pgLib "github.com/slighter12/go-lib/database/postgres"
)

// Supported subcommands:
// - up:      Apply every pending migration
// - down:    Roll back the latest migration
// - version: Print the current schema version

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	upCmd := flag.NewFlagSet("up", flag.ExitOnError)
	downCmd := flag.NewFlagSet("down", flag.ExitOnError)
	versionCmd := flag.NewFlagSet("version", flag.ExitOnError)

	var err error
	switch os.Args[1] {
	case "up":
		_ = upCmd.Parse(os.Args[2:])
		err = run(func(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
			return postgres.RunMigrations(ctx, db, logger)
		})
	case "down":
		_ = downCmd.Parse(os.Args[2:])
		err = run(func(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
			return postgres.RollbackMigration(ctx, db, logger)
		})
	case "version":
		_ = versionCmd.Parse(os.Args[2:])
		err = run(func(ctx context.Context, db *sql.DB, _ *slog.Logger) error {
			version, err := postgres.MigrationVersion(ctx, db)
			if err != nil {
				return err
			}
			fmt.Println(version)

			return nil
		})
	case "help", "-h", "--help":
		printUsage()

		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

func run(fn func(ctx context.Context, db *sql.DB, logger *slog.Logger) error) error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return errors.Wrap(err, "build logger")
	}

	gormDB, err := pgLib.New(cfg.Postgres)
	if err != nil {
		return errors.Wrap(err, "connect to PostgreSQL")
	}

	db, err := gormDB.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	defer db.Close()

	return fn(context.Background(), db, logger)
}

func printUsage() {
	fmt.Println("Usage: migrate <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up        Apply every pending migration")
	fmt.Println("  down      Roll back the latest migration")
	fmt.Println("  version   Print the current schema version")
}
