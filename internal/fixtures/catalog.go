// internal/fixtures/catalog.go
package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"betslip-wallet/internal/domain"
	"betslip-wallet/internal/ledger"
	"betslip-wallet/internal/util"
)

// Store is the subset of *redis.Client the catalog caches through.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Provider is the upstream source of fixtures and odds.
type Provider interface {
	ListMatches(ctx context.Context, day string) ([]domain.Match, error)
	GetOdds(ctx context.Context, matchID string) (*domain.MatchOdds, error)
}

// Catalog serves match listings and odds, reading through redis when a store is configured.
// Odds live at "odds:{match}:{market}:{selection}" as decimal strings.
type Catalog struct {
	store    Store
	provider Provider
	oddsTTL  time.Duration
	listTTL  time.Duration
	logger   *zap.Logger
}

// NewCatalog creates a Catalog. store may be nil, in which case every read hits the provider.
func NewCatalog(store Store, provider Provider, oddsTTL time.Duration, logger *zap.Logger) *Catalog {
	return &Catalog{
		store:    store,
		provider: provider,
		oddsTTL:  oddsTTL,
		listTTL:  5 * time.Minute,
		logger:   logger.Named("catalog"),
	}
}

func oddsKey(matchID, market, selection string) string {
	return fmt.Sprintf("odds:%s:%s:%s", matchID, market, selection)
}

func matchesKey(day string) string {
	return "fixtures:" + day
}

// CurrentOdds returns the live price of a selection, cut down to currency precision.
func (c *Catalog) CurrentOdds(ctx context.Context, matchID, market, selection string) (decimal.Decimal, error) {
	if c.store != nil {
		val, err := c.store.Get(ctx, oddsKey(matchID, market, selection)).Result()
		switch {
		case err == nil:
			odds, perr := decimal.NewFromString(val)
			if perr == nil {
				return odds.Truncate(ledger.CurrencyPlaces), nil
			}
			c.logger.Warn("discarding unparsable cached odds", zap.String("value", val), zap.Error(perr))
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("odds cache read failed", zap.Error(err))
		}
	}

	book, err := c.MatchOdds(ctx, matchID)
	if err != nil {
		return decimal.Zero, err
	}
	odds, ok := book.Find(market, selection)
	if !ok {
		return decimal.Zero, fmt.Errorf("%s/%s on match %s: %w", market, selection, matchID, util.ErrOddsUnavailable)
	}
	return odds.Truncate(ledger.CurrencyPlaces), nil
}

// MatchOdds fetches the whole book for a match from the provider and refreshes the cache.
func (c *Catalog) MatchOdds(ctx context.Context, matchID string) (*domain.MatchOdds, error) {
	book, err := c.provider.GetOdds(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if c.store != nil {
		for _, m := range book.Markets {
			for sel, odds := range m.Selections {
				if err := c.store.Set(ctx, oddsKey(matchID, m.Market, sel), odds.String(), c.oddsTTL).Err(); err != nil {
					c.logger.Warn("odds cache write failed", zap.Error(err))
				}
			}
		}
	}
	return book, nil
}

// Matches lists the fixtures on day.
func (c *Catalog) Matches(ctx context.Context, day string) ([]domain.Match, error) {
	if c.store != nil {
		raw, err := c.store.Get(ctx, matchesKey(day)).Bytes()
		if err == nil {
			var matches []domain.Match
			if jerr := json.Unmarshal(raw, &matches); jerr == nil {
				return matches, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			c.logger.Warn("fixtures cache read failed", zap.Error(err))
		}
	}

	matches, err := c.provider.ListMatches(ctx, day)
	if err != nil {
		return nil, err
	}
	if c.store != nil {
		if raw, err := json.Marshal(matches); err == nil {
			if err := c.store.Set(ctx, matchesKey(day), raw, c.listTTL).Err(); err != nil {
				c.logger.Warn("fixtures cache write failed", zap.Error(err))
			}
		}
	}
	return matches, nil
}
