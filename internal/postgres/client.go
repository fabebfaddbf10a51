package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/sentry"
	"github.com/bldrfitness/bldr/internal/types"
)

// Executor is implemented by both *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// IClient is the database handle injected into repositories.
type IClient interface {
	// Writer returns the transaction on ctx, or the pool.
	Writer(ctx context.Context) Executor
	// Reader returns the transaction on ctx, or the pool.
	Reader(ctx context.Context) Executor
	// WithTx runs fn in a transaction. Nested calls join the outer one.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	TxFromContext(ctx context.Context) *sql.Tx
	LockKey(ctx context.Context, req types.LockRequest) error
	TryLockKey(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}

type Client struct {
	db     *sql.DB
	logger *logger.Logger
	sentry *sentry.Service
}

func NewClient(db *sql.DB, log *logger.Logger, sentry *sentry.Service) IClient {
	return &Client{db: db, logger: log, sentry: sentry}
}

func (c *Client) Writer(ctx context.Context) Executor {
	if tx := c.TxFromContext(ctx); tx != nil {
		return tx
	}
	return c.db
}

func (c *Client) Reader(ctx context.Context) Executor {
	if tx := c.TxFromContext(ctx); tx != nil {
		return tx
	}
	return c.db
}

func (c *Client) TxFromContext(ctx context.Context) *sql.Tx {
	if tx, ok := ctx.Value(types.CtxDBTx).(*sql.Tx); ok {
		return tx
	}
	return nil
}

func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if c.TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	span, ctx := c.sentry.StartDBSpan(ctx, "postgres.transaction", nil)
	if span != nil {
		defer span.Finish()
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				c.logger.Errorw("failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	if err = fn(context.WithValue(ctx, types.CtxDBTx, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
