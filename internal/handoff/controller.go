package handoff

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the controller's lifecycle state for one confirmation-view mount
type State string

const (
	// StateInit means Mount has not run yet
	StateInit State = "init"
	// StateAutoAttempting means the automatic navigation was issued and the
	// observation window is running
	StateAutoAttempting State = "auto_attempting"
	// StateAwaitingManual means automatic handoff could not be confirmed and
	// the manual call-to-action is showing
	StateAwaitingManual State = "awaiting_manual"
	// StateConfirmed means the handoff is tentatively successful. There is
	// no delivery receipt; losing the tab is the best available signal.
	StateConfirmed State = "confirmed"
)

// DefaultObservationWindow is how long after the automatic navigation the
// controller waits before concluding it probably failed
const DefaultObservationWindow = 3000 * time.Millisecond

// Navigator abstracts the host shell's browser primitives. Each method
// returns an error when the underlying browser call throws or is blocked;
// the controller treats any error as "try the next strategy".
type Navigator interface {
	// Navigate replaces the current page with the target URL
	Navigate(url string) error
	// OpenWindow opens the URL in a new window with the given features
	OpenWindow(url, features string) error
	// ClickAnchor synthesizes a temporary anchor to the URL and clicks it.
	// Works where script-invoked window.open is blocked, because anchor
	// clicks ride on the user's own activation.
	ClickAnchor(url string) error
}

// Scheduler runs fn after d and returns a cancel function. The default is
// time.AfterFunc; tests inject a manual scheduler.
type Scheduler func(d time.Duration, fn func()) (cancel func())

// Controller drives the delivery handoff for one confirmation-view mount.
// The hosting UI framework may invoke the mount hook more than once for the
// same logical mount; the one-shot attempt token guarantees at most one
// automatic navigation per payload regardless.
type Controller struct {
	mu        sync.Mutex
	store     *SlotStore
	nav       Navigator
	logger    *zap.Logger
	schedule  Scheduler
	window    time.Duration
	state     State
	attempted bool
	targetURL string
	cancel    func()
}

// ControllerOption is a functional option for Controller configuration
type ControllerOption func(*Controller)

// WithObservationWindow overrides the observation window
func WithObservationWindow(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.window = d
	}
}

// WithScheduler overrides the timer scheduler (for tests)
func WithScheduler(s Scheduler) ControllerOption {
	return func(c *Controller) {
		c.schedule = s
	}
}

// NewController creates a controller bound to a payload store and a
// navigator
func NewController(store *SlotStore, nav Navigator, logger *zap.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:  store,
		nav:    nav,
		logger: logger.Named("handoff"),
		window: DefaultObservationWindow,
		state:  StateInit,
		schedule: func(d time.Duration, fn func()) func() {
			t := time.AfterFunc(d, fn)
			return func() { t.Stop() }
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the controller's current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mount consumes the payload slot and issues the automatic handoff. With no
// usable payload it goes straight to the manual state. Calling Mount again
// for the same controller is a no-op once an attempt was made.
func (c *Controller) Mount(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attempted || c.state == StateConfirmed {
		return
	}

	p, ok := c.store.Take(now)
	if !ok {
		c.logger.Debug("No usable delivery payload, manual handoff only")
		c.state = StateAwaitingManual
		return
	}

	c.attempted = true
	c.targetURL = p.TargetURL
	c.state = StateAutoAttempting
	c.logger.Info("Attempting automatic handoff",
		zap.String("order_number", p.OrderNumber))

	if err := c.nav.Navigate(p.TargetURL); err != nil {
		// The navigation call itself failed; no point observing.
		c.logger.Warn("Automatic navigation failed", zap.Error(err))
		c.state = StateAwaitingManual
		return
	}

	c.cancel = c.schedule(c.window, c.observationElapsed)
}

// observationElapsed fires when the observation window closes with the view
// still mounted, the only observable proxy for a failed handoff
func (c *Controller) observationElapsed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAutoAttempting {
		return
	}
	c.logger.Debug("Handoff unconfirmed within observation window")
	c.state = StateAwaitingManual
}

// HandoffObserved records that the tab lost focus or began unloading after
// the automatic attempt. That is treated as success; no stronger signal
// exists.
func (c *Controller) HandoffObserved() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAutoAttempting {
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = StateConfirmed
}

// ManualRetry runs the ordered fallback chain on a user click: full-page
// navigation, then a new window, then a synthesized anchor click. Any error
// falls through to the next strategy; exhausting all of them leaves the
// manual call-to-action in place rather than erroring.
func (c *Controller) ManualRetry() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAwaitingManual || c.targetURL == "" {
		return
	}

	if err := c.nav.Navigate(c.targetURL); err == nil {
		return
	}
	if err := c.nav.OpenWindow(c.targetURL, "noopener,noreferrer"); err == nil {
		return
	}
	if err := c.nav.ClickAnchor(c.targetURL); err != nil {
		c.logger.Warn("All manual handoff strategies failed", zap.Error(err))
	}
}

// Unmount stops the observation timer. The payload was already consumed at
// Mount, so there is nothing else to clean up.
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
