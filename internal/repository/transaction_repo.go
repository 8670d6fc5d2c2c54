// internal/repository/transaction_repo.go
package repository

import (
	"context"
	"time"

	"betslip-wallet/internal/domain"
)

// TransactionRepository defines the interface for transaction data operations.
type TransactionRepository interface {
	// CreateTransaction adds a new transaction record.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// UpdateTransaction persists status, tracking id and description changes.
	UpdateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionByTrackingIDForUpdate looks a funding movement up by its gateway id and row-locks it.
	GetTransactionByTrackingIDForUpdate(ctx context.Context, q DBExecutor, trackingID string) (*domain.Transaction, error)
	// GetTransactionByReferenceForUpdate looks a movement up by our reference and row-locks it.
	GetTransactionByReferenceForUpdate(ctx context.Context, q DBExecutor, reference string) (*domain.Transaction, error)
	// GetTransactionsByAccountID returns a page of history, newest first, and the total count.
	GetTransactionsByAccountID(ctx context.Context, q DBExecutor, accountID int64, limit, offset int) ([]domain.Transaction, int64, error)
	// ExpirePendingDeposits marks deposits still pending since before as EXPIRED.
	ExpirePendingDeposits(ctx context.Context, q DBExecutor, before time.Time) (int64, error)
	// ListStalePending returns movements of a type still pending since before.
	ListStalePending(ctx context.Context, q DBExecutor, txType domain.TransactionType, before time.Time) ([]domain.Transaction, error)
}
