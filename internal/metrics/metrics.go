// internal/metrics/metrics.go

// Package metrics exposes prometheus collectors for ledger decisions and
// payment gateway calls.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"betslip-wallet/internal/util"
)

// Metrics groups the service's collectors.
type Metrics struct {
	decisions      *prometheus.CounterVec
	gatewayLatency *prometheus.HistogramVec
	stakes         prometheus.Counter
	expired        prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "betslip",
			Name:      "ledger_decisions_total",
			Help:      "Ledger decisions by operation and outcome.",
		}, []string{"operation", "outcome"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "betslip",
			Name:      "gateway_request_duration_seconds",
			Help:      "Payment gateway call latency by operation and result.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "result"}),
		stakes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "betslip",
			Name:      "stakes_total",
			Help:      "Sum of accepted bet stakes.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "betslip",
			Name:      "deposits_expired_total",
			Help:      "Pending deposits expired without confirmation.",
		}),
	}
	reg.MustRegister(m.decisions, m.gatewayLatency, m.stakes, m.expired)
	return m
}

// Outcome labels an operation result: "accepted", the ledger rejection, or "error".
func Outcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case !util.IsLedgerRejection(err):
		return "error"
	case errors.Is(err, util.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, util.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, util.ErrBelowMinimum):
		return "below_minimum"
	case errors.Is(err, util.ErrAlreadyPaid):
		return "already_paid"
	case errors.Is(err, util.ErrBetslipUnpaid):
		return "betslip_unpaid"
	case errors.Is(err, util.ErrInvalidOdds):
		return "invalid_odds"
	default:
		return "error"
	}
}

// ObserveDecision counts one ledger operation. Safe on a nil receiver.
func (m *Metrics) ObserveDecision(operation string, err error) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(operation, Outcome(err)).Inc()
}

// ObserveGateway records a gateway call's latency.
func (m *Metrics) ObserveGateway(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.gatewayLatency.WithLabelValues(operation, result).Observe(elapsed.Seconds())
}

// AddStake adds an accepted stake to the running total.
func (m *Metrics) AddStake(amount float64) {
	if m == nil {
		return
	}
	m.stakes.Add(amount)
}

// AddExpired counts expired deposits.
func (m *Metrics) AddExpired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.expired.Add(float64(n))
}
