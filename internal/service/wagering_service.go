// internal/service/wagering_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"betslip-wallet/internal/domain"
	"betslip-wallet/internal/events"
	"betslip-wallet/internal/ledger"
	"betslip-wallet/internal/metrics"
	"betslip-wallet/internal/repository"
	"betslip-wallet/internal/util"
)

// PlaceBetInput describes a single-selection bet.
type PlaceBetInput struct {
	MatchID      string
	Market       string
	Selection    string
	Amount       decimal.Decimal
	ExpectedOdds *decimal.Decimal // Odds the client saw; a different current price is rejected
}

// WageringService defines the interface for account, betslip and bet operations.
type WageringService interface {
	CreateAccount(ctx context.Context, subject, email, phone string) (*domain.Account, error)
	GetAccountBySubject(ctx context.Context, subject string) (*domain.Account, error)
	GetAccount(ctx context.Context, accountID int64) (*domain.Account, error)
	GetBetslip(ctx context.Context, accountID int64) (*domain.DailyBetslip, error)
	PayDailyFee(ctx context.Context, accountID int64) (*domain.Account, *domain.DailyBetslip, error)
	PlaceBet(ctx context.Context, accountID int64, input PlaceBetInput) (*domain.Account, *domain.Bet, error)
	ListBets(ctx context.Context, accountID int64, limit, offset int) ([]domain.Bet, int64, error)
	SettleBet(ctx context.Context, betID int64, status domain.BetStatus) (*domain.Bet, error)
	GetTransactionHistory(ctx context.Context, accountID int64, limit, offset int) ([]domain.Transaction, int64, error)
}

// wageringService implements WageringService.
type wageringService struct {
	tx         *TxRunner
	dbExecutor repository.DBExecutor // For non-transactional reads
	repos      Repositories
	odds       OddsSource
	limits     Limits
	metrics    *metrics.Metrics
	notifier   notifier
	logger     *zap.Logger
	now        func() time.Time
}

// NewWageringService creates a new WageringService.
func NewWageringService(
	tx *TxRunner,
	dbExecutor repository.DBExecutor,
	repos Repositories,
	odds OddsSource,
	limits Limits,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) WageringService {
	logger = logger.Named("wagering")
	return &wageringService{
		tx:         tx,
		dbExecutor: dbExecutor,
		repos:      repos,
		odds:       odds,
		limits:     limits,
		metrics:    m,
		notifier:   notifier{publisher: publisher, logger: logger},
		logger:     logger,
		now:        utcNow,
	}
}

// CreateAccount registers the authenticated subject and opens its account
// with the starting bonus.
func (s *wageringService) CreateAccount(ctx context.Context, subject, email, phone string) (*domain.Account, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("create account: subject is required: %w", util.ErrInvalidInput)
	}

	var account *domain.Account
	err := s.tx.InTx(ctx, "create account", func(q repository.DBExecutor) error {
		_, err := s.repos.Users.GetUserBySubject(ctx, q, subject)
		if err == nil {
			return fmt.Errorf("create account: subject %s already registered: %w", subject, util.ErrDuplicateEntry)
		}
		if !errors.Is(err, util.ErrUserNotFound) {
			return fmt.Errorf("create account: failed to check subject: %w", err)
		}

		user := domain.NewUser(subject, email, phone)
		if err := s.repos.Users.CreateUser(ctx, q, user); err != nil {
			return fmt.Errorf("create account: failed to create user: %w", err)
		}

		account = domain.NewAccount(user.ID, s.limits.Currency, s.limits.StartingBonus)
		if err := s.repos.Accounts.CreateAccount(ctx, q, account); err != nil {
			return fmt.Errorf("create account: failed to create account: %w", err)
		}

		if s.limits.StartingBonus.IsPositive() {
			bonus := domain.NewTransaction(account.ID, domain.TransactionTypeSignupBonus, s.limits.StartingBonus,
				account.Currency, uuid.NewString(), stringPtr("Signup bonus"))
			if err := s.repos.Transactions.CreateTransaction(ctx, q, bonus); err != nil {
				return fmt.Errorf("create account: failed to record signup bonus: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created", zap.Int64("account_id", account.ID), zap.Int64("user_id", account.UserID))
	s.notifier.publish(ctx, domain.EventAccountCreated, account, nil, nil)
	return account, nil
}

// GetAccountBySubject resolves the caller's account from their token subject.
func (s *wageringService) GetAccountBySubject(ctx context.Context, subject string) (*domain.Account, error) {
	user, err := s.repos.Users.GetUserBySubject(ctx, s.dbExecutor, subject)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	account, err := s.repos.Accounts.GetAccountByUserID(ctx, s.dbExecutor, user.ID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

// GetAccount retrieves an account by id.
func (s *wageringService) GetAccount(ctx context.Context, accountID int64) (*domain.Account, error) {
	account, err := s.repos.Accounts.GetAccountByID(ctx, s.dbExecutor, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

// GetBetslip returns today's betslip with the bets placed on it. An unpaid
// day yields an unpaid betslip rather than an error.
func (s *wageringService) GetBetslip(ctx context.Context, accountID int64) (*domain.DailyBetslip, error) {
	day := s.limits.BetslipDay(s.now())

	slip, err := s.repos.Betslips.GetBetslip(ctx, s.dbExecutor, accountID, day)
	if errors.Is(err, util.ErrNotFound) {
		return domain.UnpaidBetslip(accountID, day), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get betslip: %w", err)
	}

	bets, err := s.repos.Bets.ListBetsByDay(ctx, s.dbExecutor, accountID, day)
	if err != nil {
		return nil, fmt.Errorf("get betslip: failed to list bets: %w", err)
	}
	slip.Bets = bets
	return slip, nil
}

// PayDailyFee debits the daily fee and opens today's betslip.
func (s *wageringService) PayDailyFee(ctx context.Context, accountID int64) (*domain.Account, *domain.DailyBetslip, error) {
	day := s.limits.BetslipDay(s.now())
	fee := s.limits.DailyFee

	var (
		account *domain.Account
		slip    *domain.DailyBetslip
		record  *domain.Transaction
	)
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		return s.tx.InTx(ctx, "pay daily fee", func(q repository.DBExecutor) error {
			current, err := s.repos.Accounts.GetAccountForUpdate(ctx, q, accountID)
			if err != nil {
				return fmt.Errorf("pay daily fee: failed to lock account %d: %w", accountID, err)
			}

			_, err = s.repos.Betslips.GetBetslip(ctx, q, accountID, day)
			if err != nil && !errors.Is(err, util.ErrNotFound) {
				return fmt.Errorf("pay daily fee: failed to get betslip: %w", err)
			}
			if _, err := ledger.PayDailyFee(current.Available(), fee, err == nil); err != nil {
				return err
			}

			updated, err := s.repos.Accounts.ApplyBalanceDelta(ctx, q, accountID, fee.Neg(), current.Balance)
			if err != nil {
				return fmt.Errorf("pay daily fee: failed to debit account %d: %w", accountID, err)
			}

			paid := domain.NewPaidBetslip(accountID, day, fee)
			if err := s.repos.Betslips.CreatePaidBetslip(ctx, q, paid); err != nil {
				return fmt.Errorf("pay daily fee: %w", err)
			}

			entry := domain.NewTransaction(accountID, domain.TransactionTypeDailyFee, fee, updated.Currency,
				uuid.NewString(), stringPtr("Daily betslip fee for "+day))
			if err := s.repos.Transactions.CreateTransaction(ctx, q, entry); err != nil {
				return fmt.Errorf("pay daily fee: failed to record transaction: %w", err)
			}

			account, slip, record = updated, paid, entry
			return nil
		})
	})
	s.metrics.ObserveDecision("pay_daily_fee", err)
	if err != nil {
		return nil, nil, err
	}

	s.notifier.publish(ctx, domain.EventDailyFeePaid, account, nil, int64Ptr(record.ID))
	return account, slip, nil
}

// PlaceBet stakes amount on one selection at the current odds.
func (s *wageringService) PlaceBet(ctx context.Context, accountID int64, input PlaceBetInput) (*domain.Account, *domain.Bet, error) {
	if input.MatchID == "" || input.Market == "" || input.Selection == "" {
		return nil, nil, fmt.Errorf("place bet: match, market and selection are required: %w", util.ErrInvalidInput)
	}

	odds, err := s.odds.CurrentOdds(ctx, input.MatchID, input.Market, input.Selection)
	if err != nil {
		return nil, nil, fmt.Errorf("place bet: %w", err)
	}
	if input.ExpectedOdds != nil && !input.ExpectedOdds.Equal(odds) {
		return nil, nil, fmt.Errorf("place bet: quoted %s, now %s: %w", input.ExpectedOdds, odds, util.ErrOddsChanged)
	}

	day := s.limits.BetslipDay(s.now())
	sel := domain.Selection{MatchID: input.MatchID, Market: input.Market, Outcome: input.Selection, Odds: odds}

	var (
		account *domain.Account
		bet     *domain.Bet
	)
	err = withConflictRetry(ctx, func(ctx context.Context) error {
		return s.tx.InTx(ctx, "place bet", func(q repository.DBExecutor) error {
			current, err := s.repos.Accounts.GetAccountForUpdate(ctx, q, accountID)
			if err != nil {
				return fmt.Errorf("place bet: failed to lock account %d: %w", accountID, err)
			}

			_, err = s.repos.Betslips.GetBetslip(ctx, q, accountID, day)
			if err != nil && !errors.Is(err, util.ErrNotFound) {
				return fmt.Errorf("place bet: failed to get betslip: %w", err)
			}
			outcome, err := ledger.PlaceBet(current.Available(), input.Amount, odds, err == nil)
			if err != nil {
				return err
			}

			updated, err := s.repos.Accounts.ApplyBalanceDelta(ctx, q, accountID, input.Amount.Neg(), current.Balance)
			if err != nil {
				return fmt.Errorf("place bet: failed to debit account %d: %w", accountID, err)
			}

			placed := domain.NewBet(accountID, day, sel, input.Amount, outcome.PotentialPayout)
			if err := s.repos.Bets.CreateBet(ctx, q, placed); err != nil {
				return fmt.Errorf("place bet: failed to create bet: %w", err)
			}

			stake := domain.NewTransaction(accountID, domain.TransactionTypeBetStake, input.Amount, updated.Currency,
				uuid.NewString(), stringPtr(fmt.Sprintf("Stake on %s %s %s", sel.MatchID, sel.Market, sel.Outcome)))
			stake.BetID = int64Ptr(placed.ID)
			if err := s.repos.Transactions.CreateTransaction(ctx, q, stake); err != nil {
				return fmt.Errorf("place bet: failed to record stake: %w", err)
			}

			account, bet = updated, placed
			return nil
		})
	})
	s.metrics.ObserveDecision("place_bet", err)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.AddStake(input.Amount.InexactFloat64())
	s.notifier.publish(ctx, domain.EventBetPlaced, account, int64Ptr(bet.ID), nil)
	return account, bet, nil
}

// ListBets returns a page of the account's bets, newest first.
func (s *wageringService) ListBets(ctx context.Context, accountID int64, limit, offset int) ([]domain.Bet, int64, error) {
	bets, total, err := s.repos.Bets.ListBetsByAccount(ctx, s.dbExecutor, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list bets: %w", err)
	}
	return bets, total, nil
}

// SettleBet records the result of a pending bet. A win credits the potential
// payout and a void refunds the stake; a loss moves no money.
func (s *wageringService) SettleBet(ctx context.Context, betID int64, status domain.BetStatus) (*domain.Bet, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("settle bet: status %q is not a result: %w", status, util.ErrInvalidInput)
	}

	var (
		settled *domain.Bet
		account *domain.Account
	)
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		return s.tx.InTx(ctx, "settle bet", func(q repository.DBExecutor) error {
			bet, err := s.repos.Bets.GetBetForUpdate(ctx, q, betID)
			if err != nil {
				return fmt.Errorf("settle bet: failed to get bet %d: %w", betID, err)
			}
			if bet.Status != domain.BetStatusPending {
				return fmt.Errorf("settle bet %d: %w", betID, util.ErrBetAlreadySettled)
			}

			settledAt := s.now()
			if err := s.repos.Bets.SettleBet(ctx, q, betID, status, settledAt); err != nil {
				return fmt.Errorf("settle bet %d: %w", betID, err)
			}
			bet.Status = status
			bet.SettledAt = &settledAt

			current, err := s.repos.Accounts.GetAccountForUpdate(ctx, q, bet.AccountID)
			if err != nil {
				return fmt.Errorf("settle bet: failed to lock account %d: %w", bet.AccountID, err)
			}

			var (
				credit  decimal.Decimal
				txType  domain.TransactionType
				details string
			)
			switch status {
			case domain.BetStatusWon:
				credit, txType, details = bet.PotentialPayout, domain.TransactionTypeBetPayout, "Winnings"
			case domain.BetStatusVoid:
				credit, txType, details = bet.Amount, domain.TransactionTypeBetRefund, "Void bet refund"
			}

			account = current
			if credit.IsPositive() {
				updated, err := s.repos.Accounts.ApplyBalanceDelta(ctx, q, bet.AccountID, credit, current.Balance)
				if err != nil {
					return fmt.Errorf("settle bet: failed to credit account %d: %w", bet.AccountID, err)
				}
				entry := domain.NewTransaction(bet.AccountID, txType, credit, updated.Currency, uuid.NewString(),
					stringPtr(fmt.Sprintf("%s for bet %d", details, betID)))
				entry.BetID = int64Ptr(betID)
				if err := s.repos.Transactions.CreateTransaction(ctx, q, entry); err != nil {
					return fmt.Errorf("settle bet: failed to record %s: %w", txType, err)
				}
				account = updated
			}

			settled = bet
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bet settled", zap.Int64("bet_id", betID), zap.String("status", string(status)))
	s.notifier.publish(ctx, domain.EventBetSettled, account, int64Ptr(betID), nil)
	return settled, nil
}

// GetTransactionHistory returns a page of the account's transactions, newest first.
func (s *wageringService) GetTransactionHistory(ctx context.Context, accountID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions, total, err := s.repos.Transactions.GetTransactionsByAccountID(ctx, s.dbExecutor, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("get transaction history: %w", err)
	}
	return transactions, total, nil
}
