// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType defines the kind of balance movement.
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal  TransactionType = "WITHDRAWAL"
	TransactionTypeDailyFee    TransactionType = "DAILY_FEE"
	TransactionTypeBetStake    TransactionType = "BET_STAKE"
	TransactionTypeBetPayout   TransactionType = "BET_PAYOUT"
	TransactionTypeBetRefund   TransactionType = "BET_REFUND"
	TransactionTypeSignupBonus TransactionType = "SIGNUP_BONUS"
)

// TransactionStatus defines the status of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusExpired   TransactionStatus = "EXPIRED" // Deposit never confirmed within its TTL
)

// Transaction records one balance movement. Funding movements start PENDING and
// are finalized by the payment gateway; ledger-internal movements are written COMPLETED.
type Transaction struct {
	ID              int64             `db:"id" json:"id"`                             // Primary key, BIGSERIAL in DB
	AccountID       int64             `db:"account_id" json:"account_id"`             // Account the movement belongs to
	Type            TransactionType   `db:"type" json:"type"`                         // Kind of movement
	Status          TransactionStatus `db:"status" json:"status"`                     // PENDING, COMPLETED, FAILED, EXPIRED
	RequestedAmount decimal.Decimal   `db:"requested_amount" json:"requested_amount"` // Gross amount
	Commission      decimal.Decimal   `db:"commission" json:"commission"`             // Withdrawals only, zero otherwise
	NetAmount       decimal.Decimal   `db:"net_amount" json:"net_amount"`             // requested - commission
	Currency        string            `db:"currency" json:"currency"`                 // Currency of the movement
	Reference       string            `db:"reference" json:"reference"`               // Our idempotency reference, unique
	TrackingID      *string           `db:"tracking_id" json:"tracking_id,omitempty"` // Gateway-assigned id for funding movements
	Contact         *string           `db:"contact" json:"contact,omitempty"`         // Payer or payee phone
	BetID           *int64            `db:"bet_id" json:"bet_id,omitempty"`           // Set for stake, payout and refund rows
	Description     *string           `db:"description" json:"description,omitempty"` // Optional description
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`             // Timestamp of record creation
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`             // Timestamp of last status change
}

// NewTransaction creates a completed ledger-internal movement.
func NewTransaction(accountID int64, txType TransactionType, amount decimal.Decimal, currency, reference string, description *string) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		AccountID:       accountID,
		Type:            txType,
		Status:          TransactionStatusCompleted,
		RequestedAmount: amount,
		Commission:      decimal.Zero,
		NetAmount:       amount,
		Currency:        currency,
		Reference:       reference,
		Description:     description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// NewPendingTransaction creates a funding movement awaiting gateway confirmation.
func NewPendingTransaction(accountID int64, txType TransactionType, requested, commission decimal.Decimal, currency, reference, contact string) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		AccountID:       accountID,
		Type:            txType,
		Status:          TransactionStatusPending,
		RequestedAmount: requested,
		Commission:      commission,
		NetAmount:       requested.Sub(commission),
		Currency:        currency,
		Reference:       reference,
		Contact:         &contact,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsFinal reports whether no further status change is expected.
// EXPIRED deposits may still be confirmed by a late callback.
func (t *Transaction) IsFinal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusFailed
}
