// internal/events/redis_feed.go
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"betslip-wallet/internal/domain"
)

// AccountChannel is the pub/sub channel carrying one account's changes.
func AccountChannel(accountID int64) string {
	return fmt.Sprintf("account:%d", accountID)
}

// RedisFeed is the realtime change feed over redis pub/sub.
type RedisFeed struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisFeed creates a RedisFeed.
func NewRedisFeed(client *redis.Client, logger *zap.Logger) *RedisFeed {
	return &RedisFeed{client: client, logger: logger.Named("feed")}
}

// Publish broadcasts event on the account's channel.
func (f *RedisFeed) Publish(ctx context.Context, event domain.LedgerEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode ledger event: %w", err)
	}
	if err := f.client.Publish(ctx, AccountChannel(event.AccountID), payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", AccountChannel(event.AccountID), err)
	}
	return nil
}

// Subscribe relays the account's events until ctx is cancelled, then closes the channel.
func (f *RedisFeed) Subscribe(ctx context.Context, accountID int64) (<-chan domain.LedgerEvent, error) {
	sub := f.client.Subscribe(ctx, AccountChannel(accountID))
	// Wait for the subscription to be confirmed so no event published after
	// this call returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", AccountChannel(accountID), err)
	}

	out := make(chan domain.LedgerEvent, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event domain.LedgerEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					f.logger.Warn("dropping malformed feed message", zap.Error(err))
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
