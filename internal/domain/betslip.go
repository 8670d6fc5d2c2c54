// internal/domain/betslip.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyBetslip gates wagering for one account on one calendar day.
// A row exists only once the fee is paid; an unpaid betslip is the zero value for its day.
type DailyBetslip struct {
	ID        int64           `db:"id" json:"id"`
	AccountID int64           `db:"account_id" json:"account_id"`
	Day       string          `db:"day" json:"day"` // YYYY-MM-DD in the ledger timezone
	IsPaid    bool            `db:"is_paid" json:"is_paid"`
	FeeAmount decimal.Decimal `db:"fee_amount" json:"fee_amount"`
	PaidAt    *time.Time      `db:"paid_at" json:"paid_at,omitempty"`
	Bets      []Bet           `db:"-" json:"bets"`
}

// UnpaidBetslip returns the implicit betslip for a day nobody has paid for yet.
func UnpaidBetslip(accountID int64, day string) *DailyBetslip {
	return &DailyBetslip{
		AccountID: accountID,
		Day:       day,
		Bets:      []Bet{},
	}
}

// NewPaidBetslip creates the betslip row recorded when the fee is paid.
func NewPaidBetslip(accountID int64, day string, fee decimal.Decimal) *DailyBetslip {
	now := time.Now().UTC()
	return &DailyBetslip{
		AccountID: accountID,
		Day:       day,
		IsPaid:    true,
		FeeAmount: fee,
		PaidAt:    &now,
		Bets:      []Bet{},
	}
}
