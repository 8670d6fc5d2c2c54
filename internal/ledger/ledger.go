// internal/ledger/ledger.go

// Package ledger holds the balance rules for wagering: bet placement, the daily
// betslip fee, deposits and withdrawals. Every function is pure. Callers persist
// the outcome and trigger any external effect only after a nil error.
package ledger

import (
	"github.com/shopspring/decimal"

	"betslip-wallet/internal/util"
)

// CurrencyPlaces is the precision amounts are rounded to.
const CurrencyPlaces = 2

var one = decimal.NewFromInt(1)

// BetOutcome is the accepted result of PlaceBet.
type BetOutcome struct {
	NewBalance      decimal.Decimal `json:"new_balance"`
	PotentialPayout decimal.Decimal `json:"potential_payout"`
}

// FeeOutcome is the accepted result of PayDailyFee.
type FeeOutcome struct {
	NewBalance decimal.Decimal `json:"new_balance"`
}

// DepositIntent is an approved, not yet credited, deposit.
type DepositIntent struct {
	RequestedAmount decimal.Decimal `json:"requested_amount"`
}

// WithdrawalOutcome is the accepted result of RequestWithdrawal.
// NewBalance reflects the full requested amount; NetAmount is what the payee receives.
type WithdrawalOutcome struct {
	NewBalance decimal.Decimal `json:"new_balance"`
	Commission decimal.Decimal `json:"commission"`
	NetAmount  decimal.Decimal `json:"net_amount"`
}

// PlaceBet decides whether a stake of amount at odds can be placed against balance.
// Checks run in order: paid betslip, positive whole-cent amount, sufficient balance,
// odds >= 1 quoted to the cent.
func PlaceBet(balance, amount, odds decimal.Decimal, betslipPaid bool) (BetOutcome, error) {
	if !betslipPaid {
		return BetOutcome{}, util.ErrBetslipUnpaid
	}
	if !amount.IsPositive() || !wholeCents(amount) {
		return BetOutcome{}, util.ErrInvalidAmount
	}
	if amount.GreaterThan(balance) {
		return BetOutcome{}, util.ErrInsufficientBalance
	}
	if odds.LessThan(one) || !wholeCents(odds) {
		return BetOutcome{}, util.ErrInvalidOdds
	}

	return BetOutcome{
		NewBalance:      balance.Sub(amount),
		PotentialPayout: amount.Mul(odds).Round(CurrencyPlaces),
	}, nil
}

// PayDailyFee charges the flat daily fee at most once per betslip day.
func PayDailyFee(balance, fee decimal.Decimal, alreadyPaidToday bool) (FeeOutcome, error) {
	if alreadyPaidToday {
		return FeeOutcome{}, util.ErrAlreadyPaid
	}
	if fee.IsNegative() || !wholeCents(fee) {
		return FeeOutcome{}, util.ErrInvalidAmount
	}
	if balance.LessThan(fee) {
		return FeeOutcome{}, util.ErrInsufficientBalance
	}
	return FeeOutcome{NewBalance: balance.Sub(fee)}, nil
}

// RequestDeposit approves a deposit intent. The balance is not touched; crediting
// waits for a confirmed payment.
func RequestDeposit(requested, minimum decimal.Decimal) (DepositIntent, error) {
	if !requested.IsPositive() || !wholeCents(requested) {
		return DepositIntent{}, util.ErrInvalidAmount
	}
	if requested.LessThan(minimum) {
		return DepositIntent{}, util.ErrBelowMinimum
	}
	return DepositIntent{RequestedAmount: requested}, nil
}

// RequestWithdrawal validates a withdrawal and splits it into commission and net payout.
// The minimum is checked before the balance. commission + net always equals requested.
func RequestWithdrawal(balance, requested, minimum, commissionRate decimal.Decimal) (WithdrawalOutcome, error) {
	if !wholeCents(requested) {
		return WithdrawalOutcome{}, util.ErrInvalidAmount
	}
	if requested.LessThan(minimum) {
		return WithdrawalOutcome{}, util.ErrBelowMinimum
	}
	if requested.GreaterThan(balance) {
		return WithdrawalOutcome{}, util.ErrInsufficientBalance
	}
	// Only reachable with a zero or negative minimum.
	if !requested.IsPositive() {
		return WithdrawalOutcome{}, util.ErrInvalidAmount
	}

	commission := Commission(requested, commissionRate)
	return WithdrawalOutcome{
		NewBalance: balance.Sub(requested),
		Commission: commission,
		NetAmount:  requested.Sub(commission),
	}, nil
}

// wholeCents reports whether d fits the NUMERIC(20, 2) money columns without rounding.
func wholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(CurrencyPlaces))
}

// Commission rounds amount*rate half away from zero to currency precision.
func Commission(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(CurrencyPlaces)
}
