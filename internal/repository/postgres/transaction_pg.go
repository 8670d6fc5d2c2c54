// internal/repository/postgres/transaction_pg.go
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

const transactionColumns = `id, account_id, type, status, requested_amount, commission, net_amount, currency,
       reference, tracking_id, contact, bet_id, description, created_at, updated_at`

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new transaction record into the database using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (account_id, type, status, requested_amount, commission, net_amount, currency,
                                        reference, tracking_id, contact, bet_id, description, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.AccountID,
		transaction.Type,
		transaction.Status,
		transaction.RequestedAmount,
		transaction.Commission,
		transaction.NetAmount,
		transaction.Currency,
		transaction.Reference,
		transaction.TrackingID,
		transaction.Contact,
		transaction.BetID,
		transaction.Description,
		transaction.CreatedAt,
		transaction.UpdatedAt,
	).Scan(&transaction.ID)

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", mapError(err))
	}
	return nil
}

// UpdateTransaction writes the mutable fields of a transaction back.
func (r *TransactionRepository) UpdateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	transaction.UpdatedAt = time.Now().UTC()
	query := `UPDATE transactions SET status = $1, tracking_id = $2, description = $3, updated_at = $4 WHERE id = $5`
	result, err := q.ExecContext(ctx, query,
		transaction.Status,
		transaction.TrackingID,
		transaction.Description,
		transaction.UpdatedAt,
		transaction.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", transaction.ID, mapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating transaction %d: %w", transaction.ID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// GetTransactionByTrackingIDForUpdate retrieves a transaction by gateway tracking id and row-locks it.
func (r *TransactionRepository) GetTransactionByTrackingIDForUpdate(ctx context.Context, q repository.DBExecutor, trackingID string) (*domain.Transaction, error) {
	return r.getOne(ctx, q, `SELECT `+transactionColumns+` FROM transactions WHERE tracking_id = $1 FOR UPDATE`, trackingID)
}

// GetTransactionByReferenceForUpdate retrieves a transaction by reference and row-locks it.
func (r *TransactionRepository) GetTransactionByReferenceForUpdate(ctx context.Context, q repository.DBExecutor, reference string) (*domain.Transaction, error) {
	return r.getOne(ctx, q, `SELECT `+transactionColumns+` FROM transactions WHERE reference = $1 FOR UPDATE`, reference)
}

func (r *TransactionRepository) getOne(ctx context.Context, q repository.DBExecutor, query, key string) (*domain.Transaction, error) {
	var transaction domain.Transaction
	if err := q.GetContext(ctx, &transaction, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction %q: %w", key, mapError(err))
	}
	return &transaction, nil
}

// GetTransactionsByAccountID retrieves a paginated list of transactions for an account.
// It performs two queries: one for the data and one for the total count.
func (r *TransactionRepository) GetTransactionsByAccountID(ctx context.Context, q repository.DBExecutor, accountID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}

	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &transactions, query, accountID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for account %d: %w", accountID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM transactions WHERE account_id = $1`
	if err := q.GetContext(ctx, &totalCount, countQuery, accountID); err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count for account %d: %w", accountID, err)
	}

	return transactions, totalCount, nil
}

// ExpirePendingDeposits marks stale pending deposits EXPIRED and returns how many changed.
func (r *TransactionRepository) ExpirePendingDeposits(ctx context.Context, q repository.DBExecutor, before time.Time) (int64, error) {
	query := `UPDATE transactions SET status = $1, updated_at = $2
              WHERE type = $3 AND status = $4 AND created_at < $5`
	result, err := q.ExecContext(ctx, query,
		domain.TransactionStatusExpired,
		time.Now().UTC(),
		domain.TransactionTypeDeposit,
		domain.TransactionStatusPending,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire pending deposits: %w", err)
	}
	return result.RowsAffected()
}

// ListStalePending returns transactions of txType still pending since before.
func (r *TransactionRepository) ListStalePending(ctx context.Context, q repository.DBExecutor, txType domain.TransactionType, before time.Time) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `SELECT ` + transactionColumns + ` FROM transactions
              WHERE type = $1 AND status = $2 AND created_at < $3 ORDER BY created_at`
	if err := q.SelectContext(ctx, &transactions, query, txType, domain.TransactionStatusPending, before); err != nil {
		return nil, fmt.Errorf("failed to list stale %s transactions: %w", txType, err)
	}
	return transactions, nil
}
