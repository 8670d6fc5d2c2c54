// internal/repository/postgres/betslip_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"betslip-wallet/internal/domain"
	"betslip-wallet/internal/repository"
	"betslip-wallet/internal/util"
)

// BetslipRepository implements repository.BetslipRepository for PostgreSQL.
type BetslipRepository struct{}

// NewBetslipRepository creates a new BetslipRepository.
func NewBetslipRepository() repository.BetslipRepository {
	return &BetslipRepository{}
}

// GetBetslip returns the paid betslip for (accountID, day).
func (r *BetslipRepository) GetBetslip(ctx context.Context, q repository.DBExecutor, accountID int64, day string) (*domain.DailyBetslip, error) {
	var slip domain.DailyBetslip
	query := `SELECT id, account_id, day, is_paid, fee_amount, paid_at
              FROM daily_betslips WHERE account_id = $1 AND day = $2`
	if err := q.GetContext(ctx, &slip, query, accountID, day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get betslip for account %d on %s: %w", accountID, day, err)
	}
	return &slip, nil
}

// CreatePaidBetslip inserts the betslip row. The (account_id, day) unique key
// turns a racing second payment into util.ErrAlreadyPaid.
func (r *BetslipRepository) CreatePaidBetslip(ctx context.Context, q repository.DBExecutor, slip *domain.DailyBetslip) error {
	query := `INSERT INTO daily_betslips (account_id, day, is_paid, fee_amount, paid_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query, slip.AccountID, slip.Day, slip.IsPaid, slip.FeeAmount, slip.PaidAt).Scan(&slip.ID)
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, util.ErrDuplicateEntry) {
			return util.ErrAlreadyPaid
		}
		return fmt.Errorf("failed to create betslip: %w", mapped)
	}
	return nil
}
