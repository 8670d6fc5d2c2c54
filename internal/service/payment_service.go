// internal/service/payment_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"betslip-wallet/internal/domain"
	"betslip-wallet/internal/events"
	"betslip-wallet/internal/gateway"
	"betslip-wallet/internal/ledger"
	"betslip-wallet/internal/metrics"
	"betslip-wallet/internal/repository"
	"betslip-wallet/internal/util"
)

// PaymentService defines the interface for moving money between accounts and
// the payment gateway.
type PaymentService interface {
	Limits() Limits
	InitiateDeposit(ctx context.Context, accountID int64, amount decimal.Decimal, phone string) (*domain.Transaction, *gateway.InitiateResponse, error)
	ConfirmDeposit(ctx context.Context, callback gateway.Callback) (*domain.Transaction, error)
	RequestWithdrawal(ctx context.Context, accountID int64, amount decimal.Decimal, phone string) (*domain.Account, *domain.Transaction, error)
	ExpireStaleDeposits(ctx context.Context) (int64, error)
	StalePendingWithdrawals(ctx context.Context) ([]domain.Transaction, error)
}

// paymentService implements PaymentService.
type paymentService struct {
	tx         *TxRunner
	dbExecutor repository.DBExecutor
	repos      Repositories
	gateway    PaymentGateway
	limits     Limits
	metrics    *metrics.Metrics
	notifier   notifier
	logger     *zap.Logger
	now        func() time.Time
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	tx *TxRunner,
	dbExecutor repository.DBExecutor,
	repos Repositories,
	gw PaymentGateway,
	limits Limits,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) PaymentService {
	logger = logger.Named("payments")
	return &paymentService{
		tx:         tx,
		dbExecutor: dbExecutor,
		repos:      repos,
		gateway:    gw,
		limits:     limits,
		metrics:    m,
		notifier:   notifier{publisher: publisher, logger: logger},
		logger:     logger,
		now:        utcNow,
	}
}

func (s *paymentService) Limits() Limits {
	return s.limits
}

// InitiateDeposit records a pending deposit and asks the gateway to collect it.
// The balance is credited only when the gateway confirms the collection.
func (s *paymentService) InitiateDeposit(ctx context.Context, accountID int64, amount decimal.Decimal, phone string) (*domain.Transaction, *gateway.InitiateResponse, error) {
	intent, err := ledger.RequestDeposit(amount, s.limits.MinimumDeposit(s.now()))
	s.metrics.ObserveDecision("request_deposit", err)
	if err != nil {
		return nil, nil, err
	}

	account, err := s.repos.Accounts.GetAccountByID(ctx, s.dbExecutor, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("initiate deposit: %w", err)
	}

	pending := domain.NewPendingTransaction(accountID, domain.TransactionTypeDeposit, intent.RequestedAmount,
		decimal.Zero, account.Currency, uuid.NewString(), phone)
	if err := s.repos.Transactions.CreateTransaction(ctx, s.dbExecutor, pending); err != nil {
		return nil, nil, fmt.Errorf("initiate deposit: failed to record deposit: %w", err)
	}

	start := time.Now()
	resp, err := s.gateway.Initiate(ctx, gateway.InitiateRequest{
		Reference: pending.Reference,
		Amount:    pending.RequestedAmount,
		Currency:  pending.Currency,
		Phone:     phone,
	})
	s.metrics.ObserveGateway("initiate", err, time.Since(start))
	if err != nil {
		// A definite refusal fails the deposit. Anything else may still reach
		// the payer, so the row stays pending for a late callback or expiry.
		if errors.Is(err, util.ErrPaymentFailed) {
			pending.Status = domain.TransactionStatusFailed
		}
		pending.Description = stringPtr(err.Error())
		s.updateQuietly(ctx, pending)
		return nil, nil, fmt.Errorf("initiate deposit: %w", err)
	}

	pending.TrackingID = stringPtr(resp.TrackingID)
	if err := s.repos.Transactions.UpdateTransaction(ctx, s.dbExecutor, pending); err != nil {
		return nil, nil, fmt.Errorf("initiate deposit: failed to store tracking id: %w", err)
	}

	s.logger.Info("deposit initiated",
		zap.Int64("account_id", accountID),
		zap.String("reference", pending.Reference),
		zap.String("tracking_id", resp.TrackingID),
	)
	s.notifier.publish(ctx, domain.EventDepositInitiated, account, nil, int64Ptr(pending.ID))
	return pending, resp, nil
}

// ConfirmDeposit applies a gateway callback. Replays of a settled deposit
// return it unchanged, so the balance is credited at most once.
func (s *paymentService) ConfirmDeposit(ctx context.Context, callback gateway.Callback) (*domain.Transaction, error) {
	if callback.TrackingID == "" && callback.Reference == "" {
		return nil, fmt.Errorf("confirm deposit: callback has no identifier: %w", util.ErrInvalidInput)
	}

	var (
		deposit *domain.Transaction
		account *domain.Account
		event   domain.LedgerEventType
	)
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		account, event = nil, ""
		return s.tx.InTx(ctx, "confirm deposit", func(q repository.DBExecutor) error {
			found, err := s.lockDeposit(ctx, q, callback)
			if err != nil {
				return err
			}
			deposit = found
			if deposit.IsFinal() {
				return nil
			}

			switch callback.Status {
			case gateway.StatusFailed:
				deposit.Status = domain.TransactionStatusFailed
				deposit.Description = stringPtr("Collection failed at gateway")
				if err := s.repos.Transactions.UpdateTransaction(ctx, q, deposit); err != nil {
					return fmt.Errorf("confirm deposit: failed to mark deposit failed: %w", err)
				}
				locked, err := s.repos.Accounts.GetAccountByID(ctx, q, deposit.AccountID)
				if err != nil {
					return fmt.Errorf("confirm deposit: %w", err)
				}
				account, event = locked, domain.EventDepositFailed
				return nil
			case gateway.StatusSucceeded:
			default:
				return nil
			}

			if !callback.Amount.Equal(deposit.RequestedAmount) {
				return fmt.Errorf("confirm deposit %s: paid %s, requested %s: %w",
					deposit.Reference, callback.Amount, deposit.RequestedAmount, util.ErrAmountMismatch)
			}

			current, err := s.repos.Accounts.GetAccountForUpdate(ctx, q, deposit.AccountID)
			if err != nil {
				return fmt.Errorf("confirm deposit: failed to lock account %d: %w", deposit.AccountID, err)
			}
			updated, err := s.repos.Accounts.ApplyBalanceDelta(ctx, q, deposit.AccountID, deposit.RequestedAmount, current.Balance)
			if err != nil {
				return fmt.Errorf("confirm deposit: failed to credit account %d: %w", deposit.AccountID, err)
			}

			if deposit.TrackingID == nil && callback.TrackingID != "" {
				deposit.TrackingID = stringPtr(callback.TrackingID)
			}
			deposit.Status = domain.TransactionStatusCompleted
			if err := s.repos.Transactions.UpdateTransaction(ctx, q, deposit); err != nil {
				return fmt.Errorf("confirm deposit: failed to complete deposit: %w", err)
			}
			account, event = updated, domain.EventDepositConfirmed
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if event != "" {
		s.logger.Info("deposit settled",
			zap.String("reference", deposit.Reference),
			zap.String("status", string(deposit.Status)),
		)
		s.notifier.publish(ctx, event, account, nil, int64Ptr(deposit.ID))
	}
	return deposit, nil
}

func (s *paymentService) lockDeposit(ctx context.Context, q repository.DBExecutor, callback gateway.Callback) (*domain.Transaction, error) {
	var (
		deposit *domain.Transaction
		err     error
	)
	if callback.TrackingID != "" {
		deposit, err = s.repos.Transactions.GetTransactionByTrackingIDForUpdate(ctx, q, callback.TrackingID)
	}
	if callback.TrackingID == "" || (errors.Is(err, util.ErrNotFound) && callback.Reference != "") {
		deposit, err = s.repos.Transactions.GetTransactionByReferenceForUpdate(ctx, q, callback.Reference)
	}
	if err != nil {
		return nil, fmt.Errorf("confirm deposit: failed to find deposit: %w", err)
	}
	if deposit.Type != domain.TransactionTypeDeposit {
		return nil, fmt.Errorf("confirm deposit: %s is a %s: %w", deposit.Reference, deposit.Type, util.ErrInvalidInput)
	}
	return deposit, nil
}

// RequestWithdrawal pays amount less commission out to phone.
//
// The amount is first held on the account together with a PENDING row, so
// bets and fees cannot spend it while the payout is in flight. The payout
// runs without the account lock. Its tracking id is committed before the
// held amount is captured from the balance; a refused payout releases the
// hold, and an unknown outcome keeps it until the row is reconciled.
func (s *paymentService) RequestWithdrawal(ctx context.Context, accountID int64, amount decimal.Decimal, phone string) (*domain.Account, *domain.Transaction, error) {
	withdrawal, account, err := s.holdWithdrawal(ctx, accountID, amount, phone)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	resp, err := s.gateway.Payout(ctx, gateway.PayoutRequest{
		Reference: withdrawal.Reference,
		Amount:    withdrawal.NetAmount,
		Currency:  withdrawal.Currency,
		Phone:     phone,
	})
	s.metrics.ObserveGateway("payout", err, time.Since(start))

	switch {
	case err == nil && resp.Status == gateway.StatusSucceeded:
	case errors.Is(err, util.ErrPaymentFailed) || (err == nil && resp.Status == gateway.StatusFailed):
		released, relErr := s.releaseWithdrawal(ctx, withdrawal)
		if relErr != nil {
			return nil, nil, relErr
		}
		s.notifier.publish(ctx, domain.EventWithdrawalFailed, released, nil, int64Ptr(withdrawal.ID))
		return nil, withdrawal, fmt.Errorf("request withdrawal %s: %w", withdrawal.Reference, util.ErrPaymentFailed)
	default:
		// The payout may still land; the row stays pending and the hold stays in place.
		if err == nil {
			err = fmt.Errorf("payout status %q: %w", resp.Status, util.ErrGatewayUnavailable)
		}
		withdrawal.Description = stringPtr("Payout outcome unknown: " + err.Error())
		s.updateQuietly(ctx, withdrawal)
		s.logger.Warn("withdrawal payout outcome unknown",
			zap.Int64("account_id", accountID),
			zap.String("reference", withdrawal.Reference),
			zap.Error(err),
		)
		return nil, withdrawal, fmt.Errorf("request withdrawal %s: %w", withdrawal.Reference, err)
	}

	// Money has left: record the gateway's evidence before touching the balance.
	withdrawal.TrackingID = stringPtr(resp.TrackingID)
	withdrawal.Description = stringPtr("Payout accepted by gateway")
	if err := s.repos.Transactions.UpdateTransaction(ctx, s.dbExecutor, withdrawal); err != nil {
		s.logger.Error("paid withdrawal not recorded",
			zap.String("reference", withdrawal.Reference),
			zap.String("tracking_id", resp.TrackingID),
			zap.Error(err),
		)
		return nil, nil, fmt.Errorf("request withdrawal: failed to store tracking id: %w", err)
	}

	err = withConflictRetry(ctx, func(ctx context.Context) error {
		return s.tx.InTx(ctx, "capture withdrawal", func(q repository.DBExecutor) error {
			current, err := s.repos.Accounts.GetAccountForUpdate(ctx, q, accountID)
			if err != nil {
				return fmt.Errorf("request withdrawal: failed to lock account %d: %w", accountID, err)
			}
			updated, err := s.repos.Accounts.CaptureHold(ctx, q, accountID, withdrawal.RequestedAmount, current.Balance)
			if err != nil {
				return fmt.Errorf("request withdrawal: failed to debit account %d: %w", accountID, err)
			}
			withdrawal.Status = domain.TransactionStatusCompleted
			if err := s.repos.Transactions.UpdateTransaction(ctx, q, withdrawal); err != nil {
				return fmt.Errorf("request withdrawal: failed to complete withdrawal: %w", err)
			}
			account = updated
			return nil
		})
	})
	if err != nil {
		s.logger.Error("paid withdrawal not captured",
			zap.String("reference", withdrawal.Reference),
			zap.String("tracking_id", resp.TrackingID),
			zap.Int64("account_id", accountID),
			zap.Error(err),
		)
		return nil, nil, err
	}

	s.logger.Info("withdrawal paid",
		zap.Int64("account_id", accountID),
		zap.String("reference", withdrawal.Reference),
		zap.String("net_amount", withdrawal.NetAmount.String()),
	)
	s.notifier.publish(ctx, domain.EventWithdrawalPaid, account, nil, int64Ptr(withdrawal.ID))
	return account, withdrawal, nil
}

// holdWithdrawal checks the request against the available balance and, in the
// same transaction, records the PENDING row and reserves the amount.
func (s *paymentService) holdWithdrawal(ctx context.Context, accountID int64, amount decimal.Decimal, phone string) (*domain.Transaction, *domain.Account, error) {
	var (
		withdrawal *domain.Transaction
		account    *domain.Account
	)
	err := s.tx.InTx(ctx, "request withdrawal", func(q repository.DBExecutor) error {
		current, err := s.repos.Accounts.GetAccountForUpdate(ctx, q, accountID)
		if err != nil {
			return fmt.Errorf("request withdrawal: failed to lock account %d: %w", accountID, err)
		}

		quote, err := ledger.RequestWithdrawal(current.Available(), amount, s.limits.MinWithdrawal, s.limits.CommissionRate)
		s.metrics.ObserveDecision("request_withdrawal", err)
		if err != nil {
			return err
		}

		pending := domain.NewPendingTransaction(accountID, domain.TransactionTypeWithdrawal, amount,
			quote.Commission, current.Currency, uuid.NewString(), phone)
		if err := s.repos.Transactions.CreateTransaction(ctx, q, pending); err != nil {
			return fmt.Errorf("request withdrawal: failed to record withdrawal: %w", err)
		}
		held, err := s.repos.Accounts.AdjustHold(ctx, q, accountID, amount)
		if err != nil {
			return fmt.Errorf("request withdrawal: failed to hold funds: %w", err)
		}
		withdrawal, account = pending, held
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return withdrawal, account, nil
}

// releaseWithdrawal fails a refused withdrawal and gives its hold back.
func (s *paymentService) releaseWithdrawal(ctx context.Context, withdrawal *domain.Transaction) (*domain.Account, error) {
	var account *domain.Account
	err := s.tx.InTx(ctx, "release withdrawal", func(q repository.DBExecutor) error {
		released, err := s.repos.Accounts.AdjustHold(ctx, q, withdrawal.AccountID, withdrawal.RequestedAmount.Neg())
		if err != nil {
			return fmt.Errorf("request withdrawal: failed to release hold: %w", err)
		}
		withdrawal.Status = domain.TransactionStatusFailed
		withdrawal.Description = stringPtr("Payout refused by gateway")
		if err := s.repos.Transactions.UpdateTransaction(ctx, q, withdrawal); err != nil {
			return fmt.Errorf("request withdrawal: failed to mark withdrawal failed: %w", err)
		}
		account = released
		return nil
	})
	if err != nil {
		s.logger.Error("refused withdrawal still held",
			zap.String("reference", withdrawal.Reference),
			zap.Error(err),
		)
		return nil, err
	}
	return account, nil
}

// ExpireStaleDeposits marks deposits pending longer than the deposit TTL as expired.
func (s *paymentService) ExpireStaleDeposits(ctx context.Context) (int64, error) {
	before := s.now().Add(-s.limits.DepositTTL)
	n, err := s.repos.Transactions.ExpirePendingDeposits(ctx, s.dbExecutor, before)
	if err != nil {
		return 0, fmt.Errorf("expire deposits: %w", err)
	}
	s.metrics.AddExpired(n)
	return n, nil
}

// StalePendingWithdrawals lists withdrawals whose payout outcome has been
// unknown for longer than the deposit TTL.
func (s *paymentService) StalePendingWithdrawals(ctx context.Context) ([]domain.Transaction, error) {
	before := s.now().Add(-s.limits.DepositTTL)
	stale, err := s.repos.Transactions.ListStalePending(ctx, s.dbExecutor, domain.TransactionTypeWithdrawal, before)
	if err != nil {
		return nil, fmt.Errorf("stale withdrawals: %w", err)
	}
	return stale, nil
}

func (s *paymentService) updateQuietly(ctx context.Context, t *domain.Transaction) {
	if err := s.repos.Transactions.UpdateTransaction(ctx, s.dbExecutor, t); err != nil {
		s.logger.Error("failed to update transaction",
			zap.String("reference", t.Reference),
			zap.String("status", string(t.Status)),
			zap.Error(err),
		)
	}
}
