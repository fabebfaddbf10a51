package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/bldrfitness/bldr/internal/config"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
)

// NewDB opens the lib/pq pool and waits for the database to accept
// connections, retrying with exponential backoff.
func NewDB(cfg *config.Configuration, log *logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 30 * time.Second

	err = backoff.RetryNotify(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return db.PingContext(ctx)
	}, bo, func(err error, next time.Duration) {
		log.Warnw("postgres not ready, retrying", "error", err, "retry_in", next.String())
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Infow("connected to postgres",
		"host", cfg.Postgres.Host,
		"port", cfg.Postgres.Port,
		"dbname", cfg.Postgres.DBName,
	)
	return db, nil
}
