// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"betslip-wallet/internal/domain"
	"betslip-wallet/internal/gateway"
	"betslip-wallet/internal/repository"
	"betslip-wallet/pkg/db"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockTxController is a mock implementation of db.TxController.
// It also implements repository.DBExecutor by embedding MockDBExecutor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserBySubject(ctx context.Context, q repository.DBExecutor, subject string) (*domain.User, error) {
	args := m.Called(ctx, q, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockAccountRepository is a mock implementation of repository.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	args := m.Called(ctx, q, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAccountByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Account, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAccountByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Account, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAccountForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Account, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyBalanceDelta(ctx context.Context, q repository.DBExecutor, accountID int64, delta, expectedPrior decimal.Decimal) (*domain.Account, error) {
	args := m.Called(ctx, q, accountID, delta, expectedPrior)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) AdjustHold(ctx context.Context, q repository.DBExecutor, accountID int64, delta decimal.Decimal) (*domain.Account, error) {
	args := m.Called(ctx, q, accountID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) CaptureHold(ctx context.Context, q repository.DBExecutor, accountID int64, amount, expectedPrior decimal.Decimal) (*domain.Account, error) {
	args := m.Called(ctx, q, accountID, amount, expectedPrior)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// MockBetslipRepository is a mock implementation of repository.BetslipRepository.
type MockBetslipRepository struct {
	mock.Mock
}

func (m *MockBetslipRepository) GetBetslip(ctx context.Context, q repository.DBExecutor, accountID int64, day string) (*domain.DailyBetslip, error) {
	args := m.Called(ctx, q, accountID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyBetslip), args.Error(1)
}

func (m *MockBetslipRepository) CreatePaidBetslip(ctx context.Context, q repository.DBExecutor, slip *domain.DailyBetslip) error {
	args := m.Called(ctx, q, slip)
	return args.Error(0)
}

// MockBetRepository is a mock implementation of repository.BetRepository.
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) CreateBet(ctx context.Context, q repository.DBExecutor, bet *domain.Bet) error {
	args := m.Called(ctx, q, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetBetForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Bet, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bet), args.Error(1)
}

func (m *MockBetRepository) SettleBet(ctx context.Context, q repository.DBExecutor, id int64, status domain.BetStatus, settledAt time.Time) error {
	args := m.Called(ctx, q, id, status, settledAt)
	return args.Error(0)
}

func (m *MockBetRepository) ListBetsByDay(ctx context.Context, q repository.DBExecutor, accountID int64, day string) ([]domain.Bet, error) {
	args := m.Called(ctx, q, accountID, day)
	return args.Get(0).([]domain.Bet), args.Error(1)
}

func (m *MockBetRepository) ListBetsByAccount(ctx context.Context, q repository.DBExecutor, accountID int64, limit, offset int) ([]domain.Bet, int64, error) {
	args := m.Called(ctx, q, accountID, limit, offset)
	return args.Get(0).([]domain.Bet), args.Get(1).(int64), args.Error(2)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetTransactionByTrackingIDForUpdate(ctx context.Context, q repository.DBExecutor, trackingID string) (*domain.Transaction, error) {
	args := m.Called(ctx, q, trackingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetTransactionByReferenceForUpdate(ctx context.Context, q repository.DBExecutor, reference string) (*domain.Transaction, error) {
	args := m.Called(ctx, q, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetTransactionsByAccountID(ctx context.Context, q repository.DBExecutor, accountID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, q, accountID, limit, offset)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) ExpirePendingDeposits(ctx context.Context, q repository.DBExecutor, before time.Time) (int64, error) {
	args := m.Called(ctx, q, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) ListStalePending(ctx context.Context, q repository.DBExecutor, txType domain.TransactionType, before time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, q, txType, before)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// MockOddsSource is a mock implementation of OddsSource.
type MockOddsSource struct {
	mock.Mock
}

func (m *MockOddsSource) CurrentOdds(ctx context.Context, matchID, market, selection string) (decimal.Decimal, error) {
	args := m.Called(ctx, matchID, market, selection)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockGateway is a mock implementation of PaymentGateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Initiate(ctx context.Context, req gateway.InitiateRequest) (*gateway.InitiateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.InitiateResponse), args.Error(1)
}

func (m *MockGateway) Payout(ctx context.Context, req gateway.PayoutRequest) (*gateway.PayoutResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PayoutResponse), args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// serviceMocks holds one set of mocks per subtest.
type serviceMocks struct {
	db           *MockDBExecutor
	tx           *MockTxController
	users        *MockUserRepository
	accounts     *MockAccountRepository
	betslips     *MockBetslipRepository
	bets         *MockBetRepository
	transactions *MockTransactionRepository
	odds         *MockOddsSource
	gateway      *MockGateway
	publisher    *MockPublisher
}

func newServiceMocks() *serviceMocks {
	m := &serviceMocks{
		db:           new(MockDBExecutor),
		tx:           new(MockTxController),
		users:        new(MockUserRepository),
		accounts:     new(MockAccountRepository),
		betslips:     new(MockBetslipRepository),
		bets:         new(MockBetRepository),
		transactions: new(MockTransactionRepository),
		odds:         new(MockOddsSource),
		gateway:      new(MockGateway),
		publisher:    new(MockPublisher),
	}
	// The deferred rollback runs after every transaction, committed or not.
	m.tx.On("Rollback").Return(nil).Maybe()
	return m
}

func (m *serviceMocks) runner() *TxRunner {
	return NewTxRunner(
		nil,
		func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			return m.tx, nil
		},
		func(tx db.TxController) error {
			return m.tx.Commit()
		},
		func(tx db.TxController) {
			_ = m.tx.Rollback()
		},
	)
}

func (m *serviceMocks) repos() Repositories {
	return Repositories{
		Users:        m.users,
		Accounts:     m.accounts,
		Betslips:     m.betslips,
		Bets:         m.bets,
		Transactions: m.transactions,
	}
}

func (m *serviceMocks) assertExpectations(t *testing.T) {
	t.Helper()
	mock.AssertExpectationsForObjects(t, m.db, m.tx, m.users, m.accounts, m.betslips, m.bets,
		m.transactions, m.odds, m.gateway, m.publisher)
}

func (m *serviceMocks) expectEvent(eventType domain.LedgerEventType, balance string) {
	m.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.LedgerEvent) bool {
		return e.Type == eventType && e.Balance.Equal(dec(balance))
	})).Return(nil).Once()
}

// testNow sits inside the test promotion window.
var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func testLimits() Limits {
	return Limits{
		Currency:        "KES",
		StartingBonus:   dec("100"),
		DailyFee:        dec("499"),
		MinWithdrawal:   dec("2000"),
		CommissionRate:  dec("0.07"),
		MinDeposit:      dec("1100"),
		PromoMinDeposit: dec("499"),
		PromoStart:      time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		PromoEnd:        time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		Location:        time.UTC,
		DepositTTL:      2 * time.Hour,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decEq matches a decimal argument by value rather than representation.
func decEq(s string) interface{} {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func testAccount(id int64, balance string) *domain.Account {
	return &domain.Account{ID: id, UserID: id * 10, Currency: "KES", Balance: dec(balance)}
}

// heldAccount is an account with part of its balance reserved for a pending withdrawal.
func heldAccount(id int64, balance, held string) *domain.Account {
	a := testAccount(id, balance)
	a.Held = dec(held)
	return a
}
