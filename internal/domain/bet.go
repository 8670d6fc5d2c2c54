// internal/domain/bet.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetStatus is the settlement state of a bet.
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
	BetStatusVoid    BetStatus = "void"
)

// IsTerminal reports whether s is a settled state.
func (s BetStatus) IsTerminal() bool {
	return s == BetStatusWon || s == BetStatusLost || s == BetStatusVoid
}

// Selection is the outcome a bet backs and the odds it was accepted at.
type Selection struct {
	MatchID string          `db:"match_id" json:"match_id"`
	Market  string          `db:"market" json:"market"`       // e.g. "Match Winner"
	Outcome string          `db:"selection" json:"selection"` // e.g. "Home"
	Odds    decimal.Decimal `db:"odds" json:"odds"`           // decimal odds, >= 1.0
}

// Bet is a single wager on a daily betslip.
type Bet struct {
	ID        int64  `db:"id" json:"id"`
	AccountID int64  `db:"account_id" json:"account_id"`
	Day       string `db:"day" json:"day"` // Betslip day the stake was placed on
	Selection
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	PotentialPayout decimal.Decimal `db:"potential_payout" json:"potential_payout"`
	Status          BetStatus       `db:"status" json:"status"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	SettledAt       *time.Time      `db:"settled_at" json:"settled_at,omitempty"`
}

// NewBet creates a pending bet.
func NewBet(accountID int64, day string, sel Selection, amount, potentialPayout decimal.Decimal) *Bet {
	return &Bet{
		AccountID:       accountID,
		Day:             day,
		Selection:       sel,
		Amount:          amount,
		PotentialPayout: potentialPayout,
		Status:          BetStatusPending,
		CreatedAt:       time.Now().UTC(),
	}
}
