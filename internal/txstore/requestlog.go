package txstore

import (
	"context"
	"time"

	"github.com/ucp-merchant/core/internal/ucp"
)

// AppendRequestLog appends an observational request-log entry. The log
// is append-only and never read back by the core (spec.md §3); it exists
// for operator visibility, as in the original service's request logging.
func (t *Tx) AppendRequestLog(ctx context.Context, entry ucp.RequestLogEntry) error {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO request_log (timestamp, method, url, checkout_id, payload)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.Timestamp, entry.Method, entry.URL, nullableString(entry.CheckoutID), entry.Payload)
	return err
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
