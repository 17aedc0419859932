package handoff

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeNavigator struct {
	mu            sync.Mutex
	navigations   []string
	windows       []string
	anchorClicks  []string
	navigateErr   error
	openWindowErr error
	clickErr      error
}

func (n *fakeNavigator) Navigate(url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.navigations = append(n.navigations, url)
	return n.navigateErr
}

func (n *fakeNavigator) OpenWindow(url, features string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.windows = append(n.windows, url+"|"+features)
	return n.openWindowErr
}

func (n *fakeNavigator) ClickAnchor(url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.anchorClicks = append(n.anchorClicks, url)
	return n.clickErr
}

// manualScheduler captures scheduled callbacks so tests advance time by hand
type manualScheduler struct {
	fns       []func()
	cancelled int
}

func (s *manualScheduler) schedule(d time.Duration, fn func()) func() {
	s.fns = append(s.fns, fn)
	return func() { s.cancelled++ }
}

func (s *manualScheduler) fire() {
	for _, fn := range s.fns {
		fn()
	}
	s.fns = nil
}

func newTestController(nav Navigator, store *SlotStore) (*Controller, *manualScheduler) {
	sched := &manualScheduler{}
	c := NewController(store, nav, zap.NewNop(), WithScheduler(sched.schedule))
	return c, sched
}

func freshPayload(now time.Time) Payload {
	return NewPayload("https://wa.me/5511987654321?text=pedido",
		"AERO000123", "47.50", "PIX", now.Add(-10*time.Second))
}

func TestSlotStore_TakeClearsSlot(t *testing.T) {
	store := NewSlotStore()
	now := time.Now()
	store.Put(freshPayload(now))

	p, ok := store.Take(now)
	require.True(t, ok)
	assert.Equal(t, "AERO000123", p.OrderNumber)

	_, ok = store.Take(now)
	assert.False(t, ok, "second take must find the slot empty")
}

func TestSlotStore_ExpiredPayloadDiscarded(t *testing.T) {
	store := NewSlotStore()
	now := time.Now()
	store.Put(NewPayload("https://wa.me/5511987654321", "AERO000123",
		"47.50", "PIX", now.Add(-6*time.Minute)))

	_, ok := store.Take(now)
	assert.False(t, ok)

	// the stale payload is gone, not left around for a later read
	_, ok = store.Take(now)
	assert.False(t, ok)
}

func TestSlotStore_PutOverwrites(t *testing.T) {
	store := NewSlotStore()
	now := time.Now()
	store.Put(NewPayload("https://wa.me/1", "AERO000001", "10.00", "PIX", now))
	store.Put(NewPayload("https://wa.me/2", "AERO000002", "20.00", "PIX", now))

	p, ok := store.Take(now)
	require.True(t, ok)
	assert.Equal(t, "AERO000002", p.OrderNumber)
}

func TestController_MountNavigatesOnce(t *testing.T) {
	nav := &fakeNavigator{}
	store := NewSlotStore()
	now := time.Now()
	store.Put(freshPayload(now))
	c, _ := newTestController(nav, store)

	c.Mount(now)
	assert.Equal(t, StateAutoAttempting, c.State())
	require.Len(t, nav.navigations, 1)
	assert.Equal(t, "https://wa.me/5511987654321?text=pedido", nav.navigations[0])
}

func TestController_DuplicateMountAttemptsOnce(t *testing.T) {
	nav := &fakeNavigator{}
	store := NewSlotStore()
	now := time.Now()
	store.Put(freshPayload(now))
	c, _ := newTestController(nav, store)

	c.Mount(now)
	c.Mount(now)

	assert.Len(t, nav.navigations, 1)
}

func TestController_MountWithoutPayloadGoesManual(t *testing.T) {
	nav := &fakeNavigator{}
	c, _ := newTestController(nav, NewSlotStore())

	c.Mount(time.Now())

	assert.Equal(t, StateAwaitingManual, c.State())
	assert.Empty(t, nav.navigations)
}

func TestController_StalePayloadGoesManual(t *testing.T) {
	nav := &fakeNavigator{}
	store := NewSlotStore()
	now := time.Now()
	store.Put(NewPayload("https://wa.me/5511987654321", "AERO000123",
		"47.50", "PIX", now.Add(-6*time.Minute)))
	c, _ := newTestController(nav, store)

	c.Mount(now)

	assert.Equal(t, StateAwaitingManual, c.State())
	assert.Empty(t, nav.navigations)
}

func TestController_ObservationWindowElapses(t *testing.T) {
	nav := &fakeNavigator{}
	store := NewSlotStore()
	now := time.Now()
	store.Put(freshPayload(now))
	c, sched := newTestController(nav, store)

	c.Mount(now)
	require.Equal(t, StateAutoAttempting, c.State())

	sched.fire()
	assert.Equal(t, StateAwaitingManual, c.State())
}

func TestController_HandoffObservedConfirms(t *testing.T) {
	nav := &fakeNavigator{}
	store := NewSlotStore()
	now := time.Now()
	store.Put(freshPayload(now))
	c, sched := newTestController(nav, store)

	c.Mount(now)
	c.HandoffObserved()

	assert.Equal(t, StateConfirmed, c.State())
	assert.Equal(t, 1, sched.cancelled)

	// a late timer must not demote a confirmed handoff
	sched.fire()
	assert.Equal(t, StateConfirmed, c.State())
}

func TestController_NavigateErrorGoesManualImmediately(t *testing.T) {
	nav := &fakeNavigator{navigateErr: errors.New("blocked")}
	store := NewSlotStore()
	now := time.Now()
	store.Put(freshPayload(now))
	c, sched := newTestController(nav, store)

	c.Mount(now)

	assert.Equal(t, StateAwaitingManual, c.State())
	assert.Empty(t, sched.fns, "no observation timer after a failed navigation")
}

func TestController_ManualRetryFallbackChain(t *testing.T) {
	nav := &fakeNavigator{
		navigateErr:   errors.New("navigation blocked"),
		openWindowErr: errors.New("popup blocked"),
	}
	store := NewSlotStore()
	now := time.Now()
	store.Put(freshPayload(now))
	c, sched := newTestController(nav, store)

	c.Mount(now)
	sched.fire()
	require.Equal(t, StateAwaitingManual, c.State())

	c.ManualRetry()

	// navigate (from mount) + navigate (retry) both failed, then window, then anchor
	assert.Len(t, nav.navigations, 2)
	require.Len(t, nav.windows, 1)
	assert.Equal(t, "https://wa.me/5511987654321?text=pedido|noopener,noreferrer", nav.windows[0])
	assert.Len(t, nav.anchorClicks, 1)
}

func TestController_ManualRetryStopsAtFirstSuccess(t *testing.T) {
	nav := &fakeNavigator{navigateErr: errors.New("blocked")}
	store := NewSlotStore()
	now := time.Now()
	store.Put(freshPayload(now))
	c, sched := newTestController(nav, store)

	c.Mount(now)
	sched.fire()

	nav.navigateErr = nil
	c.ManualRetry()

	assert.Empty(t, nav.windows)
	assert.Empty(t, nav.anchorClicks)
}

func TestController_AllStrategiesFailStaysManual(t *testing.T) {
	nav := &fakeNavigator{
		navigateErr:   errors.New("blocked"),
		openWindowErr: errors.New("blocked"),
		clickErr:      errors.New("blocked"),
	}
	store := NewSlotStore()
	now := time.Now()
	store.Put(freshPayload(now))
	c, sched := newTestController(nav, store)

	c.Mount(now)
	sched.fire()
	c.ManualRetry()

	assert.Equal(t, StateAwaitingManual, c.State())
}

func TestController_ManualRetryNoopBeforeManualState(t *testing.T) {
	nav := &fakeNavigator{}
	store := NewSlotStore()
	now := time.Now()
	store.Put(freshPayload(now))
	c, _ := newTestController(nav, store)

	c.Mount(now)
	require.Equal(t, StateAutoAttempting, c.State())

	c.ManualRetry()
	assert.Len(t, nav.navigations, 1, "retry must not fire while auto attempt is in flight")
}

func TestController_UnmountCancelsTimer(t *testing.T) {
	nav := &fakeNavigator{}
	store := NewSlotStore()
	now := time.Now()
	store.Put(freshPayload(now))
	c, sched := newTestController(nav, store)

	c.Mount(now)
	c.Unmount()

	assert.Equal(t, 1, sched.cancelled)
}
