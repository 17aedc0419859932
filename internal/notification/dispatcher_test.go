package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aerofood/backend/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSender struct {
	mu    sync.Mutex
	calls []struct{ Phone, Message string }
	err   error
}

func (s *recordingSender) Send(ctx context.Context, phoneDigits, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, struct{ Phone, Message string }{phoneDigits, message})
	return s.err
}

type stubIdemStore struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newStubIdemStore() *stubIdemStore {
	return &stubIdemStore{seen: make(map[string]bool)}
}

func (s *stubIdemStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *stubIdemStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[key], nil
}

func (s *stubIdemStore) Close() error { return nil }

func newTestDispatcher(t *testing.T, sender Sender) *Dispatcher {
	fixed := time.Date(2026, 8, 31, 18, 30, 0, 0, time.UTC)
	return NewDispatcher(sender, newStubIdemStore(), zap.NewNop(),
		WithClock(func() time.Time { return fixed }))
}

func TestDispatcher_SendsAndAppendsAuditNote(t *testing.T) {
	sender := &recordingSender{}
	d := newTestDispatcher(t, sender)
	o := buildTestOrder(t)
	require.NoError(t, o.TransitionTo(order.StatusConfirmed, ""))

	attempted := d.Dispatch(context.Background(), o, order.StatusConfirmed, "")

	assert.True(t, attempted)
	require.Len(t, sender.calls, 1)
	assert.Equal(t, "5511987654321", sender.calls[0].Phone)
	assert.Contains(t, sender.calls[0].Message, "AERO000123")
	assert.Contains(t, o.Notes, "[WhatsApp enviado em 2026-08-31T18:30:00Z]")
}

func TestDispatcher_SkipsWhenNoPhone(t *testing.T) {
	sender := &recordingSender{}
	d := newTestDispatcher(t, sender)
	o, err := order.NewOrder("AERO000124", order.Customer{Name: "Cliente balcão"}, order.PaymentCash)
	require.NoError(t, err)

	attempted := d.Dispatch(context.Background(), o, order.StatusConfirmed, "")

	assert.False(t, attempted)
	assert.Empty(t, sender.calls)
	assert.Empty(t, o.Notes)
}

func TestDispatcher_DeduplicatesSameTransition(t *testing.T) {
	sender := &recordingSender{}
	d := newTestDispatcher(t, sender)
	o := buildTestOrder(t)

	assert.True(t, d.Dispatch(context.Background(), o, order.StatusConfirmed, ""))
	assert.False(t, d.Dispatch(context.Background(), o, order.StatusConfirmed, ""))

	assert.Len(t, sender.calls, 1)
}

func TestDispatcher_DifferentStatusIsNotDeduplicated(t *testing.T) {
	sender := &recordingSender{}
	d := newTestDispatcher(t, sender)
	o := buildTestOrder(t)

	assert.True(t, d.Dispatch(context.Background(), o, order.StatusConfirmed, ""))
	assert.True(t, d.Dispatch(context.Background(), o, order.StatusPreparing, ""))

	assert.Len(t, sender.calls, 2)
}

func TestDispatcher_SendFailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("gateway down")}
	d := newTestDispatcher(t, sender)
	o := buildTestOrder(t)

	attempted := d.Dispatch(context.Background(), o, order.StatusConfirmed, "")

	// the attempt was made even though delivery failed
	assert.True(t, attempted)
	// no audit note without a successful handoff
	assert.NotContains(t, o.Notes, "WhatsApp enviado")
}

func TestDispatcher_BrokenIdemStoreStillDispatches(t *testing.T) {
	sender := &recordingSender{}
	store := newStubIdemStore()
	store.err = errors.New("redis unavailable")
	d := NewDispatcher(sender, store, zap.NewNop())
	o := buildTestOrder(t)

	attempted := d.Dispatch(context.Background(), o, order.StatusConfirmed, "")

	assert.True(t, attempted)
	assert.Len(t, sender.calls, 1)
}

func TestDeepLinkFor(t *testing.T) {
	o := buildTestOrder(t)

	link := DeepLinkFor(o, order.StatusReady, "")
	assert.Contains(t, link, "wa.me/5511987654321")

	noPhone, err := order.NewOrder("AERO000125", order.Customer{Name: "Sem telefone"}, order.PaymentCard)
	require.NoError(t, err)
	assert.Empty(t, DeepLinkFor(noPhone, order.StatusReady, ""))
}
