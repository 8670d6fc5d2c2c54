// internal/repository/postgres/account_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"betslip-wallet/internal/domain"
	"betslip-wallet/internal/repository"
	"betslip-wallet/internal/util"

	"github.com/shopspring/decimal"
)

const accountColumns = `id, user_id, currency, balance, held, created_at, updated_at`

// AccountRepository implements repository.AccountRepository for PostgreSQL.
type AccountRepository struct{}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository() repository.AccountRepository {
	return &AccountRepository{}
}

// CreateAccount inserts a new account using the provided DBExecutor.
func (r *AccountRepository) CreateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	query := `INSERT INTO accounts (user_id, currency, balance, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query, account.UserID, account.Currency, account.Balance, account.CreatedAt, account.UpdatedAt).Scan(&account.ID)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", mapError(err))
	}
	return nil
}

// GetAccountByID retrieves an account by its ID.
func (r *AccountRepository) GetAccountByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Account, error) {
	return r.getAccount(ctx, q, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

// GetAccountByUserID retrieves the account owned by userID.
func (r *AccountRepository) GetAccountByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Account, error) {
	return r.getAccount(ctx, q, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1`, userID)
}

// GetAccountForUpdate retrieves an account and holds its row lock for the rest of the transaction.
func (r *AccountRepository) GetAccountForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Account, error) {
	return r.getAccount(ctx, q, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
}

func (r *AccountRepository) getAccount(ctx context.Context, q repository.DBExecutor, query string, arg int64) (*domain.Account, error) {
	var account domain.Account
	if err := q.GetContext(ctx, &account, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account %d: %w", arg, mapError(err))
	}
	return &account, nil
}

// ApplyBalanceDelta is a compare-and-set on the balance: the update only lands if
// the stored balance still equals expectedPrior.
func (r *AccountRepository) ApplyBalanceDelta(ctx context.Context, q repository.DBExecutor, accountID int64, delta, expectedPrior decimal.Decimal) (*domain.Account, error) {
	var account domain.Account
	query := `UPDATE accounts SET balance = balance + $1, updated_at = $2
              WHERE id = $3 AND balance = $4
              RETURNING ` + accountColumns
	err := q.GetContext(ctx, &account, query, delta, time.Now().UTC(), accountID, expectedPrior)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %d: %w", accountID, util.ErrBalanceConflict)
		}
		return nil, fmt.Errorf("failed to apply balance delta for account %d: %w", accountID, mapError(err))
	}
	return &account, nil
}

// AdjustHold reserves (delta > 0) or releases (delta < 0) funds for a pending withdrawal.
func (r *AccountRepository) AdjustHold(ctx context.Context, q repository.DBExecutor, accountID int64, delta decimal.Decimal) (*domain.Account, error) {
	var account domain.Account
	query := `UPDATE accounts SET held = held + $1, updated_at = $2
              WHERE id = $3
              RETURNING ` + accountColumns
	err := q.GetContext(ctx, &account, query, delta, time.Now().UTC(), accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to adjust hold for account %d: %w", accountID, mapError(err))
	}
	return &account, nil
}

// CaptureHold turns a hold into a debit in one statement, so held never exceeds balance.
func (r *AccountRepository) CaptureHold(ctx context.Context, q repository.DBExecutor, accountID int64, amount, expectedPrior decimal.Decimal) (*domain.Account, error) {
	var account domain.Account
	query := `UPDATE accounts SET balance = balance - $1, held = held - $1, updated_at = $2
              WHERE id = $3 AND balance = $4 AND held >= $1
              RETURNING ` + accountColumns
	err := q.GetContext(ctx, &account, query, amount, time.Now().UTC(), accountID, expectedPrior)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %d: %w", accountID, util.ErrBalanceConflict)
		}
		return nil, fmt.Errorf("failed to capture hold for account %d: %w", accountID, mapError(err))
	}
	return &account, nil
}
