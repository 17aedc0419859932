package order

import (
	"fmt"

	"github.com/aerofood/backend/internal/domain/shared"
)

// Status represents the lifecycle status of an order
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// transitions is the single source of truth for the order lifecycle graph.
// A status maps to the set of statuses it may move to in one step; terminal
// statuses map to an empty set.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady},
	StatusReady:     {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// statusOrder fixes the enumeration order for AllStatuses and summaries
var statusOrder = []Status{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusDelivered,
	StatusCancelled,
}

// presentation is the single label/icon table consumed by every layer
// that renders a status, so the graph and its display never drift.
var presentation = map[Status]struct {
	Label string
	Icon  string
}{
	StatusPending:   {Label: "Pendente", Icon: "🕐"},
	StatusConfirmed: {Label: "Confirmado", Icon: "✅"},
	StatusPreparing: {Label: "Em preparo", Icon: "👨‍🍳"},
	StatusReady:     {Label: "Pronto", Icon: "🛎️"},
	StatusDelivered: {Label: "Entregue", Icon: "📦"},
	StatusCancelled: {Label: "Cancelado", Icon: "❌"},
}

// AllStatuses returns every valid status in lifecycle order
func AllStatuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the status has no outgoing transitions
func (s Status) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo checks if the status can transition to the target status
// in a single step. Self-loops are never valid.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the legal single-step targets from this status.
// Terminal statuses return an empty slice.
func (s Status) NextStatuses() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Label returns the human-readable (pt-BR) label for the status
func (s Status) Label() string {
	return presentation[s].Label
}

// Icon returns the display icon for the status
func (s Status) Icon() string {
	return presentation[s].Icon
}

// ValidateTransition validates a single status transition. It is pure and
// total over the status domain: any pair not present in the transition graph
// yields an INVALID_TRANSITION error naming both states.
func ValidateTransition(current, target Status) error {
	if !current.IsValid() {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Unknown order status %q", current))
	}
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Unknown order status %q", target))
	}
	if !current.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition order from %s to %s", current, target))
	}
	return nil
}

// PredecessorsOf returns the set of statuses from which target is reachable
// in a single step, derived from the same transition table.
func PredecessorsOf(target Status) []Status {
	var preds []Status
	for _, s := range statusOrder {
		if s.CanTransitionTo(target) {
			preds = append(preds, s)
		}
	}
	return preds
}
