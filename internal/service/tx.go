// internal/service/tx.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"betslip-wallet/internal/repository"
	"betslip-wallet/internal/util"
	"betslip-wallet/pkg/db"
)

// TxRunner runs repository work inside one database transaction.
type TxRunner struct {
	dbBeginner db.DBTxBeginner   // For starting transactions (e.g., *sqlx.DB)
	beginTx    db.BeginTxFunc    // Injected dependency for beginning transactions
	commitTx   db.CommitTxFunc   // Injected dependency for committing transactions
	rollbackTx db.RollbackTxFunc // Injected dependency for rolling back transactions
}

// NewTxRunner creates a TxRunner.
func NewTxRunner(dbBeginner db.DBTxBeginner, beginTx db.BeginTxFunc, commitTx db.CommitTxFunc, rollbackTx db.RollbackTxFunc) *TxRunner {
	return &TxRunner{
		dbBeginner: dbBeginner,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// InTx commits if fn returns nil and rolls back otherwise. fn's error is returned unchanged.
func (r *TxRunner) InTx(ctx context.Context, op string, fn func(q repository.DBExecutor) error) error {
	txController, err := r.beginTx(ctx, r.dbBeginner)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer r.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("%s: transaction controller does not implement DBExecutor", op)
	}

	if err := fn(txExecutor); err != nil {
		return err
	}

	if err := r.commitTx(txController); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return nil
}

// conflictBackoff bounds retries of a balance update that lost a race.
func conflictBackoff() retry.Backoff {
	return retry.WithMaxRetries(3, retry.WithJitterPercent(20, retry.NewExponential(20*time.Millisecond)))
}

// withConflictRetry re-runs fn while it fails with util.ErrBalanceConflict.
func withConflictRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, conflictBackoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, util.ErrBalanceConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
}
