// internal/repository/bet_repo.go
package repository

import (
	"context"
	"time"

	"betslip-wallet/internal/domain"
)

// BetRepository defines the interface for bet data operations.
type BetRepository interface {
	CreateBet(ctx context.Context, q DBExecutor, bet *domain.Bet) error
	// GetBetForUpdate retrieves a bet and row-locks it.
	GetBetForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Bet, error)
	// SettleBet moves a pending bet to a terminal status. A bet that is no longer
	// pending yields util.ErrBetAlreadySettled.
	SettleBet(ctx context.Context, q DBExecutor, id int64, status domain.BetStatus, settledAt time.Time) error
	// ListBetsByDay returns an account's bets for one betslip day in placement order.
	ListBetsByDay(ctx context.Context, q DBExecutor, accountID int64, day string) ([]domain.Bet, error)
	// ListBetsByAccount returns a page of bets, newest first, and the total count.
	ListBetsByAccount(ctx context.Context, q DBExecutor, accountID int64, limit, offset int) ([]domain.Bet, int64, error)
}
