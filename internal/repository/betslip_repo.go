// internal/repository/betslip_repo.go
package repository

import (
	"context"

	"betslip-wallet/internal/domain"
)

// BetslipRepository stores paid daily betslips.
type BetslipRepository interface {
	// GetBetslip returns the paid betslip for a day, or util.ErrNotFound if the fee is unpaid.
	GetBetslip(ctx context.Context, q DBExecutor, accountID int64, day string) (*domain.DailyBetslip, error)
	// CreatePaidBetslip records a fee payment. A second payment for the same day yields util.ErrAlreadyPaid.
	CreatePaidBetslip(ctx context.Context, q DBExecutor, slip *domain.DailyBetslip) error
}
