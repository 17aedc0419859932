package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sender is the outbound port to the external messaging channel. There is
// no delivery receipt at this layer: a nil error means the handoff attempt
// was accepted, not that the customer received anything.
type Sender interface {
	Send(ctx context.Context, phoneDigits, message string) error
}

// HTTPSender posts messages to a WhatsApp gateway endpoint
type HTTPSender struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSender creates a sender for the given gateway base URL
func NewHTTPSender(baseURL string, timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSender{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Send posts the message to the gateway's /messages endpoint
func (s *HTTPSender) Send(ctx context.Context, phoneDigits, message string) error {
	body, err := json.Marshal(sendRequest{Phone: phoneDigits, Message: message})
	if err != nil {
		return fmt.Errorf("failed to encode message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopSender is used when no gateway is configured: the deep link returned
// to the client remains the only delivery channel, and server-side dispatch
// degrades to a logged attempt.
type NoopSender struct{}

// Send does nothing and reports success
func (NoopSender) Send(ctx context.Context, phoneDigits, message string) error {
	return nil
}
