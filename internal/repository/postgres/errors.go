// internal/repository/postgres/errors.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"

	"betslip-wallet/internal/util"
)

// Account CHECKs whose violation means the debit does not fit the funds.
const (
	balanceConstraint = "accounts_balance_non_negative"
	heldConstraint    = "accounts_held_within_balance"
)

// mapError translates driver errors into application sentinels.
// Errors it does not recognise are returned unchanged.
func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %s", util.ErrDuplicateEntry, pqErr.Constraint)
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
		return fmt.Errorf("%w: %s", util.ErrBalanceConflict, pqErr.Message)
	case pgerrcode.CheckViolation:
		if pqErr.Constraint == balanceConstraint || pqErr.Constraint == heldConstraint {
			return util.ErrInsufficientBalance
		}
	}
	return err
}
