package handoff

import "time"

// PayloadTTL is the maximum age of a delivery payload. A confirmation view
// reached after this window (stale tab, back-navigation) must not replay
// the automatic handoff.
const PayloadTTL = 5 * time.Minute

// Payload carries the deep link from order submission to the confirmation
// view. It is created once per order, lives only in the submitting tab's
// ephemeral storage, and is read at most once.
type Payload struct {
	TargetURL   string `json:"url"`
	OrderNumber string `json:"orderNumber"`
	Total       string `json:"total"`
	Payment     string `json:"payment"`
	CreatedAt   int64  `json:"timestamp"` // epoch milliseconds
}

// NewPayload creates a payload stamped with the given creation time
func NewPayload(targetURL, orderNumber, total, payment string, createdAt time.Time) Payload {
	return Payload{
		TargetURL:   targetURL,
		OrderNumber: orderNumber,
		Total:       total,
		Payment:     payment,
		CreatedAt:   createdAt.UnixMilli(),
	}
}

// Expired reports whether the payload is older than PayloadTTL at the
// given instant
func (p Payload) Expired(now time.Time) bool {
	return now.Sub(time.UnixMilli(p.CreatedAt)) >= PayloadTTL
}
