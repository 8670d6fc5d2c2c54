// internal/domain/match.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Match is a fixture listed by the sports-data provider.
type Match struct {
	ID       string    `json:"id"`
	League   string    `json:"league"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	KickOff  time.Time `json:"kick_off"`
	Status   string    `json:"status"` // Provider short status, e.g. "NS" not started
}

// MarketOdds lists the priced selections of one market.
type MarketOdds struct {
	Market     string                     `json:"market"`
	Selections map[string]decimal.Decimal `json:"selections"`
}

// MatchOdds is the current book for a match.
type MatchOdds struct {
	MatchID string       `json:"match_id"`
	Markets []MarketOdds `json:"markets"`
}

// Find returns the odds for a market selection.
func (o MatchOdds) Find(market, selection string) (decimal.Decimal, bool) {
	for _, m := range o.Markets {
		if m.Market != market {
			continue
		}
		odds, ok := m.Selections[selection]
		return odds, ok
	}
	return decimal.Zero, false
}
