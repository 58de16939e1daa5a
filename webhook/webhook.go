// Package webhook posts signed JSON notifications about background work,
// such as a finished cache warm-up, to a user-configured endpoint.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Event types.
const (
	EventWarmCompleted = "warm.completed"
)

// SignatureHeader carries "sha256=<hex>" of the body when a secret is set.
const SignatureHeader = "X-Wikidex-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// NewEvent stamps an event with the current time.
func NewEvent(typ string, data any) *Event {
	return &Event{Type: typ, Timestamp: time.Now().Unix(), Data: data}
}

// WarmSummary is the data of a warm.completed event.
type WarmSummary struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"` // category -> error
	ElapsedMS int64             `json:"elapsed_ms"`
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Notifier delivers events to one endpoint.
type Notifier struct {
	URL    string
	Secret string

	// Delays between attempts. The first attempt is immediate.
	Retries []time.Duration

	Client *http.Client
	Logger *slog.Logger
}

// New returns a Notifier with the default retry schedule: 1s, 5s, 30s.
func New(url, secret string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		URL:     url,
		Secret:  secret,
		Retries: []time.Duration{time.Second, 5 * time.Second, 30 * time.Second},
		Client:  &http.Client{Timeout: 10 * time.Second},
		Logger:  logger,
	}
}

// Deliver sends an event once.
func (n *Notifier) Deliver(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Wikidex-Webhook/1.0")
	if n.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(n.Secret, body))
	}

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// DeliverRetry sends an event, retrying on failure until the schedule is
// exhausted or ctx is done.
func (n *Notifier) DeliverRetry(ctx context.Context, event *Event) error {
	var err error
	for attempt := 0; attempt <= len(n.Retries); attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(n.Retries[attempt-1]):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = n.Deliver(ctx, event); err == nil {
			n.Logger.Info("webhook delivered",
				"url", n.URL,
				"event", event.Type,
				"attempt", attempt+1,
			)
			return nil
		}
		n.Logger.Warn("webhook delivery failed",
			"url", n.URL,
			"event", event.Type,
			"attempt", attempt+1,
			"error", err,
		)
	}
	n.Logger.Error("webhook delivery exhausted all retries", "url", n.URL, "event", event.Type)
	return err
}
