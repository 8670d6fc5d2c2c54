// internal/jobs/scheduler_test.go
package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"betslip-wallet/internal/domain"
)

type stubReconciler struct {
	expired    int64
	expireErr  error
	stale      []domain.Transaction
	staleErr   error
	expireRuns int
}

func (s *stubReconciler) ExpireStaleDeposits(ctx context.Context) (int64, error) {
	s.expireRuns++
	return s.expired, s.expireErr
}

func (s *stubReconciler) StalePendingWithdrawals(ctx context.Context) ([]domain.Transaction, error) {
	return s.stale, s.staleErr
}

func TestReconcile(t *testing.T) {
	t.Run("WarnsAboutUnresolvedPayouts", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		stub := &stubReconciler{
			expired: 2,
			stale: []domain.Transaction{
				{ID: 9, AccountID: 1, Reference: "ref-9"},
				{ID: 10, AccountID: 2, Reference: "ref-10"},
			},
		}
		s := NewScheduler(stub, "@every 1h", time.UTC, zap.New(core))

		s.Reconcile(context.Background())

		assert.Equal(t, 1, stub.expireRuns)
		assert.Equal(t, 1, logs.FilterMessage("expired stale deposits").Len())
		assert.Equal(t, 2, logs.FilterMessage("withdrawal payout unresolved").Len())
	})

	t.Run("ExpiryFailureDoesNotStopWithdrawalCheck", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		stub := &stubReconciler{
			expireErr: errors.New("connection reset"),
			stale:     []domain.Transaction{{ID: 9, Reference: "ref-9"}},
		}
		s := NewScheduler(stub, "@every 1h", time.UTC, zap.New(core))

		s.Reconcile(context.Background())

		assert.Equal(t, 1, logs.FilterMessage("failed to expire stale deposits").Len())
		assert.Equal(t, 1, logs.FilterMessage("withdrawal payout unresolved").Len())
	})
}

func TestSchedulerStart(t *testing.T) {
	t.Run("InvalidSchedule", func(t *testing.T) {
		s := NewScheduler(&stubReconciler{}, "every now and then", nil, zap.NewNop())

		err := s.Start(context.Background())

		assert.Error(t, err)
	})

	t.Run("StartsAndStops", func(t *testing.T) {
		s := NewScheduler(&stubReconciler{}, "*/15 * * * *", time.UTC, zap.NewNop())

		require.NoError(t, s.Start(context.Background()))
		assert.Len(t, s.cron.Entries(), 1)
		s.Stop()
	})
}
