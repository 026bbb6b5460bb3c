package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"bookfinder/internal/config"
	"bookfinder/internal/logger"
	"bookfinder/internal/platform/postgres"
)

var errUnknownCommand = errors.New("unknown command")

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, version, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	config.LoadEnvFiles()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	if err := validate(*command, *name); err != nil {
		log.Error("invalid arguments", logger.Error(err))
		os.Exit(2)
	}

	var db *sql.DB
	if *command != "create" {
		if cfg.DatabaseDSN == "" {
			log.Error("DB_DSN is required to run migrations")
			os.Exit(1)
		}
		pool, err := postgres.Open(context.Background(), cfg.DatabaseDSN, 5*time.Second, log)
		if err != nil {
			log.Error("failed to connect to database",
				logger.String("dsn", cfg.RedactedDSN()), logger.Error(err))
			os.Exit(1)
		}
		defer pool.Close()

		db = stdlib.OpenDBFromPool(pool)
		defer db.Close()
	}

	if err := run(db, *command, *name, migrationsDir()); err != nil {
		log.Error("migration failed", logger.String("command", *command), logger.Error(err))
		os.Exit(1)
	}
	log.Info("migration finished", logger.String("command", *command), logger.String("dir", migrationsDir()))
}

func validate(command, name string) error {
	switch command {
	case "up", "down", "status", "version":
		return nil
	case "create":
		if name == "" {
			return errors.New("name is required for 'create' command")
		}
		return nil
	}
	return fmt.Errorf("%w %q, use: up, down, status, version, create", errUnknownCommand, command)
}

func run(db *sql.DB, command, name, dir string) error {
	if err := validate(command, name); err != nil {
		return err
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		return goose.Up(db, dir)
	case "down":
		return goose.Down(db, dir)
	case "status":
		return goose.Status(db, dir)
	case "version":
		return goose.Version(db, dir)
	default:
		return goose.Create(nil, dir, name, "sql")
	}
}
