/*
Package webhook implements the outbound webhook notifier (C7,
spec.md §4.10): a best-effort, fire-and-forget POST tied to lifecycle
events, with its own HTTP client rather than a shared one (spec.md §5);
no retry, no ordering guarantee.
*/
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/ucp-merchant/core/internal/ucp"
)

// Notifier posts lifecycle events to a merchant's webhook URL.
type Notifier struct {
	client *http.Client
}

// New constructs a Notifier with a fixed 5s timeout, independent of the
// caller's own deadline (spec.md §4.10, §5 "Cancellation/timeouts").
func New() *Notifier {
	return &Notifier{client: &http.Client{Timeout: 5 * time.Second}}
}

// Notify posts {event_type, checkout_id, order} to session.platform's
// webhook URL, if present. Any failure (network, non-2xx, timeout) is
// logged and swallowed (spec.md §4.10) — callers should invoke this in
// a goroutine or after their own transaction has already committed, as
// its outcome must never affect the command's result.
func (n *Notifier) Notify(session *ucp.CheckoutSession, order *ucp.Order, eventType ucp.WebhookEventType) {
	if session.Platform == nil || session.Platform.WebhookURL == "" {
		return
	}

	payload := ucp.WebhookPayload{
		EventType:  eventType,
		CheckoutID: session.ID,
		Order:      order,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("webhook: failed to marshal payload for checkout %s: %v", session.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, session.Platform.WebhookURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("webhook: failed to build request for checkout %s: %v", session.ID, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("webhook: delivery failed for checkout %s: %v", session.ID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("webhook: non-2xx response %d for checkout %s", resp.StatusCode, session.ID)
	}
}
