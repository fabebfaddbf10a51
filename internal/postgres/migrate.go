package postgres

import (
	"context"
	"database/sql"

	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/migrations"
	"github.com/pressly/goose/v3"
)

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB, log *logger.Logger) error {
	if err := setupGoose(log); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, migrations.Dir); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to apply migrations").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// Rollback reverts the most recent migration.
func Rollback(ctx context.Context, db *sql.DB, log *logger.Logger) error {
	if err := setupGoose(log); err != nil {
		return err
	}

	if err := goose.DownContext(ctx, db, migrations.Dir); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to roll back migration").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// Status logs the applied state of every migration.
func Status(ctx context.Context, db *sql.DB, log *logger.Logger) error {
	if err := setupGoose(log); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, migrations.Dir)
}

func setupGoose(log *logger.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(log.GetGooseLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return ierr.WithError(err).
			Mark(ierr.ErrInternal)
	}
	return nil
}
