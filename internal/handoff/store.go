package handoff

import (
	"sync"
	"time"
)

// SlotStore is a single-slot mailbox between the order-submission flow and
// the confirmation view. Put overwrites any previous payload; Take clears
// the slot whether or not the payload is still usable, so back-navigation
// can never replay a handoff.
type SlotStore struct {
	mu      sync.Mutex
	payload Payload
	filled  bool
}

// NewSlotStore creates an empty SlotStore
func NewSlotStore() *SlotStore {
	return &SlotStore{}
}

// Put stores a payload, replacing whatever was in the slot
func (s *SlotStore) Put(p Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = p
	s.filled = true
}

// Take reads and clears the slot. It returns false when the slot is empty
// or the payload has expired; an expired payload is discarded unread.
func (s *SlotStore) Take(now time.Time) (Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.filled {
		return Payload{}, false
	}
	p := s.payload
	s.payload = Payload{}
	s.filled = false
	if p.Expired(now) {
		return Payload{}, false
	}
	return p, true
}
