// internal/fixtures/client.go

// Package fixtures supplies match listings and odds from the sports-data
// provider, fronted by a redis cache.
package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"betslip-wallet/internal/domain"
	"betslip-wallet/internal/util"
)

const apiKeyHeader = "x-apisports-key"

// Client reads fixtures and odds from an API-Football compatible provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
}

// NewClient creates a provider client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    util.NewRetryableClient(timeout, 2, logger.Named("fixtures")),
	}
}

type fixturesEnvelope struct {
	Response []struct {
		Fixture struct {
			ID     int64     `json:"id"`
			Date   time.Time `json:"date"`
			Status struct {
				Short string `json:"short"`
			} `json:"status"`
		} `json:"fixture"`
		League struct {
			Name string `json:"name"`
		} `json:"league"`
		Teams struct {
			Home struct {
				Name string `json:"name"`
			} `json:"home"`
			Away struct {
				Name string `json:"name"`
			} `json:"away"`
		} `json:"teams"`
	} `json:"response"`
}

type oddsEnvelope struct {
	Response []struct {
		Bookmakers []struct {
			Name string `json:"name"`
			Bets []struct {
				Name   string `json:"name"`
				Values []struct {
					Value string          `json:"value"`
					Odd   decimal.Decimal `json:"odd"`
				} `json:"values"`
			} `json:"bets"`
		} `json:"bookmakers"`
	} `json:"response"`
}

// ListMatches returns the fixtures scheduled on day (YYYY-MM-DD).
func (c *Client) ListMatches(ctx context.Context, day string) ([]domain.Match, error) {
	var env fixturesEnvelope
	if err := c.get(ctx, "/fixtures", url.Values{"date": {day}}, &env); err != nil {
		return nil, fmt.Errorf("list matches for %s: %w", day, err)
	}

	matches := make([]domain.Match, 0, len(env.Response))
	for _, f := range env.Response {
		matches = append(matches, domain.Match{
			ID:       strconv.FormatInt(f.Fixture.ID, 10),
			League:   f.League.Name,
			HomeTeam: f.Teams.Home.Name,
			AwayTeam: f.Teams.Away.Name,
			KickOff:  f.Fixture.Date,
			Status:   f.Fixture.Status.Short,
		})
	}
	return matches, nil
}

// GetOdds returns the first bookmaker's book for a match.
func (c *Client) GetOdds(ctx context.Context, matchID string) (*domain.MatchOdds, error) {
	var env oddsEnvelope
	if err := c.get(ctx, "/odds", url.Values{"fixture": {matchID}}, &env); err != nil {
		return nil, fmt.Errorf("get odds for match %s: %w", matchID, err)
	}
	if len(env.Response) == 0 || len(env.Response[0].Bookmakers) == 0 {
		return nil, fmt.Errorf("match %s: %w", matchID, util.ErrOddsUnavailable)
	}

	book := env.Response[0].Bookmakers[0]
	odds := &domain.MatchOdds{MatchID: matchID, Markets: make([]domain.MarketOdds, 0, len(book.Bets))}
	for _, bet := range book.Bets {
		market := domain.MarketOdds{Market: bet.Name, Selections: make(map[string]decimal.Decimal, len(bet.Values))}
		for _, v := range bet.Values {
			market.Selections[v.Value] = v.Odd
		}
		odds.Markets = append(odds.Markets, market)
	}
	return odds, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrOddsUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: provider status %d", util.ErrOddsUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
