// internal/repository/postgres/errors_test.go
package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"betslip-wallet/internal/util"
)

func TestMapError(t *testing.T) {
	t.Run("UniqueViolation", func(t *testing.T) {
		err := mapError(&pq.Error{Code: pgerrcode.UniqueViolation, Constraint: "daily_betslips_account_day_key"})
		assert.ErrorIs(t, err, util.ErrDuplicateEntry)
		assert.Contains(t, err.Error(), "daily_betslips_account_day_key")
	})

	t.Run("SerializationFailureIsConflict", func(t *testing.T) {
		err := mapError(fmt.Errorf("wrapped: %w", &pq.Error{Code: pgerrcode.SerializationFailure}))
		assert.ErrorIs(t, err, util.ErrBalanceConflict)
	})

	t.Run("DeadlockIsConflict", func(t *testing.T) {
		assert.ErrorIs(t, mapError(&pq.Error{Code: pgerrcode.DeadlockDetected}), util.ErrBalanceConflict)
	})

	t.Run("BalanceCheck", func(t *testing.T) {
		err := mapError(&pq.Error{Code: pgerrcode.CheckViolation, Constraint: balanceConstraint})
		assert.ErrorIs(t, err, util.ErrInsufficientBalance)
	})

	t.Run("HoldCheck", func(t *testing.T) {
		err := mapError(&pq.Error{Code: pgerrcode.CheckViolation, Constraint: heldConstraint})
		assert.ErrorIs(t, err, util.ErrInsufficientBalance)
	})

	t.Run("OtherCheckPassesThrough", func(t *testing.T) {
		orig := &pq.Error{Code: pgerrcode.CheckViolation, Constraint: "bets_odds_check"}
		assert.Same(t, orig, mapError(orig))
	})

	t.Run("NonDriverError", func(t *testing.T) {
		orig := errors.New("connection reset")
		assert.Equal(t, orig, mapError(orig))
	})
}
