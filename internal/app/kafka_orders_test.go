package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cafe-delivery-service/internal/apperr"
	"cafe-delivery-service/internal/service/orders"
	"cafe-delivery-service/internal/transport/kafka"
)

type ctxKey struct{}

type spyHandler struct {
	called int
	ctx    context.Context
	event  orders.Event
	err    error
}

func (s *spyHandler) Handle(ctx context.Context, e orders.Event) error {
	s.called++
	s.ctx = ctx
	s.event = e
	return s.err
}

func requireTimeout(t *testing.T, ctx context.Context, want time.Duration) {
	t.Helper()
	deadline, ok := ctx.Deadline()
	require.True(t, ok, "expected context with deadline")

	remaining := time.Until(deadline)
	require.Greater(t, remaining, want-time.Second)
	require.LessOrEqual(t, remaining, want)
}

func requireCanceled(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	default:
		t.Fatalf("expected handler context to be canceled after handler returns")
	}
}

func TestMakeOrdersKafka_DelegatesWithDeadline(t *testing.T) {
	t.Parallel()

	spy := &spyHandler{}
	h := makeOrdersKafka(spy, 2*time.Second)

	ctx := context.WithValue(context.Background(), ctxKey{}, "v")
	in := orders.Event{OrderID: "order-1", Status: "ready_for_delivery"}

	require.NoError(t, h(ctx, in))
	require.Equal(t, 1, spy.called)
	require.Equal(t, "v", spy.ctx.Value(ctxKey{}))
	require.Equal(t, in, spy.event)
	requireTimeout(t, spy.ctx, 2*time.Second)
	requireCanceled(t, spy.ctx)
}

func TestMakeOrdersKafka_DefaultTimeout(t *testing.T) {
	t.Parallel()

	spy := &spyHandler{}
	h := makeOrdersKafka(spy, 0)

	require.NoError(t, h(context.Background(), orders.Event{OrderID: "order-2"}))
	requireTimeout(t, spy.ctx, orderEventTimeout)
}

func TestMakeOrdersKafka_ReturnsHandlerError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	spy := &spyHandler{err: sentinel}
	h := makeOrdersKafka(spy, time.Second)

	err := h(context.Background(), orders.Event{OrderID: "order-3", Status: "canceled"})
	require.ErrorIs(t, err, sentinel)
	require.False(t, kafka.IsPermanent(err))
	require.Equal(t, 1, spy.called)
}

func TestMakeOrdersKafka_InvalidEventIsPermanent(t *testing.T) {
	t.Parallel()

	spy := &spyHandler{err: fmt.Errorf("create delivery: %w", apperr.ErrInvalid)}
	h := makeOrdersKafka(spy, time.Second)

	err := h(context.Background(), orders.Event{OrderID: "order-4", Status: "ready_for_delivery"})
	require.True(t, kafka.IsPermanent(err))
	require.ErrorIs(t, err, apperr.ErrInvalid)
}
