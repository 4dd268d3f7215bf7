package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mkowalczyk/cardgen-api/migrations"
	"github.com/pressly/goose/v3"
)

// slogGooseLogger forwards goose output to slog.
type slogGooseLogger struct {
	log *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}

// runMigrations applies any pending schema migrations from the embedded
// migration files.
func runMigrations(db *sql.DB, log *slog.Logger) error {
	goose.SetLogger(&slogGooseLogger{log: log.With(slog.String("component", "migrations"))})
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info("database migrations applied")
	return nil
}
