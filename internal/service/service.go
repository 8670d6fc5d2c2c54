// internal/service/service.go
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"betslip-wallet/internal/domain"
	"betslip-wallet/internal/events"
	"betslip-wallet/internal/gateway"
	"betslip-wallet/internal/repository"
)

// Repositories bundles the repositories the services work with.
type Repositories struct {
	Users        repository.UserRepository
	Accounts     repository.AccountRepository
	Betslips     repository.BetslipRepository
	Bets         repository.BetRepository
	Transactions repository.TransactionRepository
}

// OddsSource quotes the current price of a selection.
type OddsSource interface {
	CurrentOdds(ctx context.Context, matchID, market, selection string) (decimal.Decimal, error)
}

// PaymentGateway moves money in and out of mobile-money wallets.
type PaymentGateway interface {
	Initiate(ctx context.Context, req gateway.InitiateRequest) (*gateway.InitiateResponse, error)
	Payout(ctx context.Context, req gateway.PayoutRequest) (*gateway.PayoutResponse, error)
}

// notifier publishes committed ledger changes. Delivery is best effort: a
// failed publish is logged and never undoes the change.
type notifier struct {
	publisher events.Publisher
	logger    *zap.Logger
}

func (n notifier) publish(ctx context.Context, eventType domain.LedgerEventType, account *domain.Account, betID, transactionID *int64) {
	if n.publisher == nil || account == nil {
		return
	}
	event := domain.NewLedgerEvent(eventType, account)
	event.BetID = betID
	event.TransactionID = transactionID
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.Warn("failed to publish ledger event",
			zap.String("type", string(eventType)),
			zap.Int64("account_id", account.ID),
			zap.Error(err),
		)
	}
}

func stringPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func utcNow() time.Time { return time.Now().UTC() }
