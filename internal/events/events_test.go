// internal/events/events_test.go
package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"betslip-wallet/internal/domain"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	return m.Called(ctx, event).Error(0)
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleEvent() domain.LedgerEvent {
	return domain.LedgerEvent{
		Type:       domain.EventBetPlaced,
		AccountID:  17,
		Balance:    decimal.RequireFromString("750.00"),
		Currency:   "KES",
		OccurredAt: time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC),
	}
}

func TestFanout(t *testing.T) {
	ctx := context.Background()
	event := sampleEvent()

	t.Run("AllSinksReceive", func(t *testing.T) {
		a, b := new(MockPublisher), new(MockPublisher)
		a.On("Publish", ctx, event).Return(nil).Once()
		b.On("Publish", ctx, event).Return(nil).Once()

		err := NewFanout(zap.NewNop(), a, nil, b).Publish(ctx, event)
		assert.NoError(t, err)
		mock.AssertExpectationsForObjects(t, a, b)
	})

	t.Run("FailingSinkDoesNotStopOthers", func(t *testing.T) {
		a, b := new(MockPublisher), new(MockPublisher)
		boom := errors.New("redis down")
		a.On("Publish", ctx, event).Return(boom).Once()
		b.On("Publish", ctx, event).Return(nil).Once()

		err := NewFanout(zap.NewNop(), a, b).Publish(ctx, event)
		assert.ErrorIs(t, err, boom)
		mock.AssertExpectationsForObjects(t, a, b)
	})
}

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w)

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "17", string(msg.Key))
	assert.Equal(t, "bet_placed", string(msg.Headers[0].Value))

	var decoded domain.LedgerEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, domain.EventBetPlaced, decoded.Type)
	assert.True(t, decoded.Balance.Equal(decimal.RequireFromString("750")))

	w.err = errors.New("leader not available")
	assert.Error(t, p.Publish(context.Background(), sampleEvent()))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "ledger.events")
	defer w.Close()

	assert.Equal(t, "ledger.events", w.Topic)
	assert.Equal(t, 10*time.Millisecond, w.BatchTimeout)
	assert.Equal(t, 10*time.Second, w.ReadTimeout)
	assert.Equal(t, 10*time.Second, w.WriteTimeout)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}

func TestAccountChannel(t *testing.T) {
	assert.Equal(t, "account:42", AccountChannel(42))
}
