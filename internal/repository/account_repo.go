// internal/repository/account_repo.go
package repository

import (
	"context"

	"betslip-wallet/internal/domain"

	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data operations.
type AccountRepository interface {
	// CreateAccount inserts a new account with its opening balance.
	CreateAccount(ctx context.Context, q DBExecutor, account *domain.Account) error
	// GetAccountByID retrieves an account without locking it.
	GetAccountByID(ctx context.Context, q DBExecutor, id int64) (*domain.Account, error)
	// GetAccountByUserID retrieves the account owned by a user.
	GetAccountByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.Account, error)
	// GetAccountForUpdate retrieves an account and row-locks it until q's transaction ends.
	GetAccountForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Account, error)
	// ApplyBalanceDelta adds delta to the balance only if it still equals expectedPrior.
	// A changed balance yields util.ErrBalanceConflict; the updated account is returned otherwise.
	ApplyBalanceDelta(ctx context.Context, q DBExecutor, accountID int64, delta, expectedPrior decimal.Decimal) (*domain.Account, error)
	// AdjustHold adds delta to the funds reserved for pending withdrawals.
	AdjustHold(ctx context.Context, q DBExecutor, accountID int64, delta decimal.Decimal) (*domain.Account, error)
	// CaptureHold debits amount from both the balance and the hold, only if the
	// balance still equals expectedPrior. Used once a held withdrawal is paid out.
	CaptureHold(ctx context.Context, q DBExecutor, accountID int64, amount, expectedPrior decimal.Decimal) (*domain.Account, error)
}
