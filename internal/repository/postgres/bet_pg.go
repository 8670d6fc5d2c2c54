// internal/repository/postgres/bet_pg.go
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
)

const betColumns = `id, account_id, day, match_id, market, selection, odds, amount, potential_payout, status, created_at, settled_at`

// BetRepository implements repository.BetRepository for PostgreSQL.
type BetRepository struct{}

// NewBetRepository creates a new BetRepository.
func NewBetRepository() repository.BetRepository {
	return &BetRepository{}
}

// CreateBet inserts a pending bet.
func (r *BetRepository) CreateBet(ctx context.Context, q repository.DBExecutor, bet *domain.Bet) error {
	query := `INSERT INTO bets (account_id, day, match_id, market, selection, odds, amount, potential_payout, status, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		bet.AccountID,
		bet.Day,
		bet.MatchID,
		bet.Market,
		bet.Outcome,
		bet.Odds,
		bet.Amount,
		bet.PotentialPayout,
		bet.Status,
		bet.CreatedAt,
	).Scan(&bet.ID)
	if err != nil {
		return fmt.Errorf("failed to create bet: %w", mapError(err))
	}
	return nil
}

// GetBetForUpdate retrieves a bet by ID and row-locks it.
func (r *BetRepository) GetBetForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Bet, error) {
	var bet domain.Bet
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1 FOR UPDATE`
	if err := q.GetContext(ctx, &bet, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bet %d: %w", id, mapError(err))
	}
	return &bet, nil
}

// SettleBet sets the terminal status of a pending bet exactly once.
func (r *BetRepository) SettleBet(ctx context.Context, q repository.DBExecutor, id int64, status domain.BetStatus, settledAt time.Time) error {
	query := `UPDATE bets SET status = $1, settled_at = $2 WHERE id = $3 AND status = $4`
	result, err := q.ExecContext(ctx, query, status, settledAt, id, domain.BetStatusPending)
	if err != nil {
		return fmt.Errorf("failed to settle bet %d: %w", id, mapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after settling bet %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrBetAlreadySettled
	}
	return nil
}

// ListBetsByDay returns the bets of one betslip day, oldest first.
func (r *BetRepository) ListBetsByDay(ctx context.Context, q repository.DBExecutor, accountID int64, day string) ([]domain.Bet, error) {
	bets := []domain.Bet{}
	query := `SELECT ` + betColumns + ` FROM bets WHERE account_id = $1 AND day = $2 ORDER BY created_at, id`
	if err := q.SelectContext(ctx, &bets, query, accountID, day); err != nil {
		return nil, fmt.Errorf("failed to fetch bets for account %d on %s: %w", accountID, day, err)
	}
	return bets, nil
}

// ListBetsByAccount retrieves a paginated list of bets and their total count.
func (r *BetRepository) ListBetsByAccount(ctx context.Context, q repository.DBExecutor, accountID int64, limit, offset int) ([]domain.Bet, int64, error) {
	bets := []domain.Bet{}
	query := `SELECT ` + betColumns + ` FROM bets WHERE account_id = $1
              ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &bets, query, accountID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bets for account %d: %w", accountID, err)
	}

	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM bets WHERE account_id = $1`, accountID); err != nil {
		return nil, 0, fmt.Errorf("failed to get total bet count for account %d: %w", accountID, err)
	}
	return bets, totalCount, nil
}
