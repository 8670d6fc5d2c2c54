// internal/service/limits.go
package service

import (
	"time"

	"github.com/shopspring/decimal"

	"betslip-wallet/internal/config"
	"betslip-wallet/internal/ledger"
)

// Limits holds the wagering parameters and resolves the time-dependent ones.
type Limits struct {
	Currency        string
	StartingBonus   decimal.Decimal
	DailyFee        decimal.Decimal
	MinWithdrawal   decimal.Decimal
	CommissionRate  decimal.Decimal
	MinDeposit      decimal.Decimal
	PromoMinDeposit decimal.Decimal
	PromoStart      time.Time
	PromoEnd        time.Time
	Location        *time.Location
	DepositTTL      time.Duration
}

// LimitsFromConfig builds Limits from the ledger configuration.
func LimitsFromConfig(cfg config.LedgerConfig) (Limits, error) {
	loc, err := cfg.Location()
	if err != nil {
		return Limits{}, err
	}
	return Limits{
		Currency:        cfg.Currency,
		StartingBonus:   cfg.StartingBonus,
		DailyFee:        cfg.DailyFee,
		MinWithdrawal:   cfg.MinWithdrawal,
		CommissionRate:  cfg.CommissionRate,
		MinDeposit:      cfg.MinDeposit,
		PromoMinDeposit: cfg.PromoMinDeposit,
		PromoStart:      cfg.PromoStart,
		PromoEnd:        cfg.PromoEnd,
		Location:        loc,
		DepositTTL:      cfg.DepositTTL,
	}, nil
}

// PromotionActive reports whether now falls inside the promotional window.
// A window with only a start stays open.
func (l Limits) PromotionActive(now time.Time) bool {
	if l.PromoStart.IsZero() || now.Before(l.PromoStart) {
		return false
	}
	return l.PromoEnd.IsZero() || now.Before(l.PromoEnd)
}

// MinimumDeposit returns the deposit threshold in force at now.
func (l Limits) MinimumDeposit(now time.Time) decimal.Decimal {
	if l.PromotionActive(now) {
		return l.PromoMinDeposit
	}
	return l.MinDeposit
}

// BetslipDay is the betslip day now belongs to.
func (l Limits) BetslipDay(now time.Time) string {
	return ledger.BetslipDay(now, l.Location)
}

// LimitsView is the client-facing snapshot of the limits at a moment.
type LimitsView struct {
	Currency          string          `json:"currency"`
	DailyFee          decimal.Decimal `json:"daily_fee"`
	MinimumDeposit    decimal.Decimal `json:"minimum_deposit"`
	PromotionActive   bool            `json:"promotion_active"`
	MinimumWithdrawal decimal.Decimal `json:"minimum_withdrawal"`
	CommissionRate    decimal.Decimal `json:"commission_rate"`
	BetslipDay        string          `json:"betslip_day"`
	NextBetslipAt     time.Time       `json:"next_betslip_at"`
}

// View snapshots the limits at now.
func (l Limits) View(now time.Time) LimitsView {
	return LimitsView{
		Currency:          l.Currency,
		DailyFee:          l.DailyFee,
		MinimumDeposit:    l.MinimumDeposit(now),
		PromotionActive:   l.PromotionActive(now),
		MinimumWithdrawal: l.MinWithdrawal,
		CommissionRate:    l.CommissionRate,
		BetslipDay:        l.BetslipDay(now),
		NextBetslipAt:     ledger.NextDayStart(now, l.Location),
	}
}
