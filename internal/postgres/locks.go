package postgres

import (
	"context"
	"fmt"

	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/types"
)

// LockKey takes a transaction scoped advisory lock on req.Key, waiting up to
// req.Timeout (30s when nil). A zero or negative timeout fails fast.
// Released on commit or rollback; must be called inside WithTx.
func (c *Client) LockKey(ctx context.Context, req types.LockRequest) error {
	tx := c.TxFromContext(ctx)
	if tx == nil {
		return ierr.NewError("LockKey must be called inside transaction").
			Mark(ierr.ErrInternal)
	}

	timeout := req.GetTimeout()

	if timeout <= 0 {
		ok, err := c.TryLockKey(ctx, req.Key)
		if err != nil {
			return err
		}
		if !ok {
			return ierr.NewError("lock already held").
				WithReportableDetails(map[string]interface{}{"key": req.Key}).
				Mark(ierr.ErrDatabase)
		}
		return nil
	}

	// SET LOCAL resets on commit/rollback
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", timeout.Milliseconds())); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to set lock timeout").
			Mark(ierr.ErrDatabase)
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, req.Key); err != nil {
		if isLockTimeoutError(err) {
			return ierr.WithError(err).
				WithHintf("Failed to acquire lock within %v", timeout).
				Mark(ierr.ErrDatabase)
		}
		return ierr.WithError(err).
			WithHint("Failed to acquire lock").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

// TryLockKey tries acquiring the advisory lock immediately and returns
// ok=false if it is held elsewhere. Must be called inside WithTx.
func (c *Client) TryLockKey(ctx context.Context, key string) (bool, error) {
	tx := c.TxFromContext(ctx)
	if tx == nil {
		return false, ierr.NewError("TryLockKey must be called inside transaction").
			Mark(ierr.ErrInternal)
	}

	var ok bool
	if err := tx.QueryRowContext(ctx, `SELECT pg_try_advisory_xact_lock(hashtext($1))`, key).Scan(&ok); err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to acquire lock").
			Mark(ierr.ErrDatabase)
	}

	return ok, nil
}
