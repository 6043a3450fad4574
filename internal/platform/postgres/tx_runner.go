package postgres

import (
	"context"
	"database/sql"
	"time"

	dErrors "pharmaops/pkg/domain-errors"
	txcontext "pharmaops/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// TxRunner implements tx.Runner over a real database transaction. A per-key
// advisory lock serializes concurrent transitions on the same aggregate, so
// two approvals of the last two pending lines cannot both read "not yet
// all-approved" and miss the READY_TO_SHIP flip.
type TxRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

func (r *TxRunner) RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := r.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "begin transaction")
	}

	txCtx := txcontext.WithTx(ctx, sqlTx)

	// The lock is transaction-scoped; it releases on commit or rollback.
	if _, err := sqlTx.ExecContext(txCtx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		_ = sqlTx.Rollback()
		return dErrors.Wrap(err, dErrors.CodeInternal, "acquire transition lock")
	}

	if err := fn(txCtx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit transaction")
	}
	return nil
}
