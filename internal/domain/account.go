// internal/domain/account.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a user's spendable balance. One per user.
type Account struct {
	ID        int64           `db:"id" json:"id"`                 // Primary key, BIGSERIAL in DB
	UserID    int64           `db:"user_id" json:"user_id"`       // Foreign key to User, unique
	Currency  string          `db:"currency" json:"currency"`     // e.g. "KES"
	Balance   decimal.Decimal `db:"balance" json:"balance"`       // NUMERIC(20, 2), CHECK (balance >= 0)
	Held      decimal.Decimal `db:"held" json:"held"`             // Reserved by withdrawals awaiting payout, <= balance
	CreatedAt time.Time       `db:"created_at" json:"created_at"` // Timestamp of creation
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"` // Timestamp of last balance change
}

// NewAccount creates an Account seeded with the starting bonus.
func NewAccount(userID int64, currency string, startingBonus decimal.Decimal) *Account {
	now := time.Now().UTC()
	return &Account{
		UserID:    userID,
		Currency:  currency,
		Balance:   startingBonus,
		Held:      decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Available is the part of the balance not reserved by pending withdrawals.
func (a *Account) Available() decimal.Decimal {
	return a.Balance.Sub(a.Held)
}
