// internal/domain/event.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEventType names a committed balance or bet change.
type LedgerEventType string

const (
	EventAccountCreated   LedgerEventType = "account_created"
	EventDailyFeePaid     LedgerEventType = "daily_fee_paid"
	EventBetPlaced        LedgerEventType = "bet_placed"
	EventBetSettled       LedgerEventType = "bet_settled"
	EventDepositInitiated LedgerEventType = "deposit_initiated"
	EventDepositConfirmed LedgerEventType = "deposit_confirmed"
	EventDepositFailed    LedgerEventType = "deposit_failed"
	EventWithdrawalPaid   LedgerEventType = "withdrawal_paid"
	EventWithdrawalFailed LedgerEventType = "withdrawal_failed"
	EventSnapshot         LedgerEventType = "snapshot" // Current state sent when a stream opens
)

// LedgerEvent is published after a change commits. It carries the account's
// balance as of that commit so subscribers never need to re-read it.
type LedgerEvent struct {
	Type          LedgerEventType `json:"type"`
	AccountID     int64           `json:"account_id"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	BetID         *int64          `json:"bet_id,omitempty"`
	TransactionID *int64          `json:"transaction_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewLedgerEvent builds an event from the post-commit account state.
func NewLedgerEvent(eventType LedgerEventType, account *Account) LedgerEvent {
	return LedgerEvent{
		Type:       eventType,
		AccountID:  account.ID,
		Balance:    account.Balance,
		Currency:   account.Currency,
		OccurredAt: time.Now().UTC(),
	}
}
