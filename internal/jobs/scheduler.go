// internal/jobs/scheduler.go

// Package jobs runs the periodic payment reconciliation.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"betslip-wallet/internal/domain"
)

// Reconciler settles funding movements the gateway never finished.
type Reconciler interface {
	ExpireStaleDeposits(ctx context.Context) (int64, error)
	StalePendingWithdrawals(ctx context.Context) ([]domain.Transaction, error)
}

// Scheduler runs reconciliation on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	schedule   string
	logger     *zap.Logger
}

// NewScheduler creates a scheduler evaluating schedule in loc.
func NewScheduler(reconciler Reconciler, schedule string, loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	logger = logger.Named("jobs")
	cl := cronLogger{logger.Sugar()}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	return &Scheduler{
		cron:       c,
		reconciler: reconciler,
		schedule:   schedule,
		logger:     logger,
	}
}

// Start registers the reconciliation job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.Reconcile(ctx) }); err != nil {
		return fmt.Errorf("schedule reconciliation %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("schedule", s.schedule))
	return nil
}

// Reconcile expires stale deposits and reports withdrawals whose payout is
// still unresolved. Those need an operator, since the money may have left.
func (s *Scheduler) Reconcile(ctx context.Context) {
	expired, err := s.reconciler.ExpireStaleDeposits(ctx)
	if err != nil {
		s.logger.Error("failed to expire stale deposits", zap.Error(err))
	} else if expired > 0 {
		s.logger.Info("expired stale deposits", zap.Int64("count", expired))
	}

	stale, err := s.reconciler.StalePendingWithdrawals(ctx)
	if err != nil {
		s.logger.Error("failed to list stale withdrawals", zap.Error(err))
		return
	}
	for _, w := range stale {
		s.logger.Warn("withdrawal payout unresolved",
			zap.Int64("transaction_id", w.ID),
			zap.Int64("account_id", w.AccountID),
			zap.String("reference", w.Reference),
			zap.Time("created_at", w.CreatedAt),
		)
	}
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
