package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/aerofood/backend/internal/domain/order"
	"github.com/aerofood/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Dispatcher sends order status messages to the external messaging channel.
// Dispatch is strictly fire-and-forget: failures are logged and never
// surfaced to the status-update caller, and a status transition never rolls
// back because a message could not be handed off.
type Dispatcher struct {
	sender Sender
	idem   shared.IdempotencyStore
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// DispatcherOption is a functional option for Dispatcher configuration
type DispatcherOption func(*Dispatcher)

// WithIdempotencyTTL sets how long a (order, status) dispatch is remembered
func WithIdempotencyTTL(ttl time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.ttl = ttl
	}
}

// WithClock overrides the dispatcher's clock (for tests)
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(sender Sender, idem shared.IdempotencyStore, logger *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		idem:   idem,
		ttl:    shared.DefaultIdempotencyConfig().TTL,
		logger: logger.Named("notification"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch builds and fires the status message for an order. It returns
// whether an attempt was made; it never returns an error. On a successful
// attempt an audit line is appended to the order's notes log (the caller
// persists it best-effort).
func (d *Dispatcher) Dispatch(ctx context.Context, o *order.Order, target order.Status, note string) bool {
	phone := NormalizePhone(o.Customer.Phone)
	if phone == "" {
		d.logger.Debug("No usable phone number, skipping dispatch",
			zap.String("order_number", o.OrderNumber))
		return false
	}

	// Web clients retry status updates; don't message the customer twice
	// for the same transition.
	key := fmt.Sprintf("dispatch:%s:%s", o.ID, target)
	fresh, err := d.idem.MarkProcessed(ctx, key, d.ttl)
	if err != nil {
		// A broken dedup store must not block the notification path;
		// worst case is a duplicate message.
		d.logger.Warn("Idempotency check failed, dispatching anyway",
			zap.String("order_number", o.OrderNumber), zap.Error(err))
	} else if !fresh {
		d.logger.Debug("Status message already dispatched, skipping",
			zap.String("order_number", o.OrderNumber),
			zap.String("status", target.String()))
		return false
	}

	message := BuildMessage(o, target, note)

	if err := d.sender.Send(ctx, phone, message); err != nil {
		d.logger.Warn("Message dispatch failed",
			zap.String("order_number", o.OrderNumber),
			zap.String("status", target.String()),
			zap.Error(err))
		return true
	}

	o.AppendNote(fmt.Sprintf("[WhatsApp enviado em %s]", d.now().Format(time.RFC3339)))
	d.logger.Info("Status message dispatched",
		zap.String("order_number", o.OrderNumber),
		zap.String("status", target.String()))
	return true
}

// DeepLinkFor builds the deep link a caller can surface for an order status
// message, or "" when the order has no usable phone.
func DeepLinkFor(o *order.Order, target order.Status, note string) string {
	phone := NormalizePhone(o.Customer.Phone)
	if phone == "" {
		return ""
	}
	return DeepLink(phone, BuildMessage(o, target, note))
}
