// internal/events/publisher.go

// Package events delivers committed ledger changes to the realtime feed and
// the ledger event log.
package events

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"betslip-wallet/internal/domain"
)

// Publisher delivers a committed ledger event.
type Publisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}

// Subscriber streams the events of one account until ctx ends.
type Subscriber interface {
	Subscribe(ctx context.Context, accountID int64) (<-chan domain.LedgerEvent, error)
}

// Fanout publishes to every configured sink. A failing sink does not stop the others.
type Fanout struct {
	sinks  []Publisher
	logger *zap.Logger
}

// NewFanout creates a Fanout over sinks, skipping nil entries.
func NewFanout(logger *zap.Logger, sinks ...Publisher) *Fanout {
	f := &Fanout{logger: logger.Named("events")}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Publish sends event to all sinks and joins their errors.
func (f *Fanout) Publish(ctx context.Context, event domain.LedgerEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, event); err != nil {
			f.logger.Warn("publish ledger event failed",
				zap.String("type", string(event.Type)),
				zap.Int64("account_id", event.AccountID),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
