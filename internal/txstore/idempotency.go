package txstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ucp-merchant/core/internal/ucp"
)

// GetIdempotencyRecord looks up a record by key, or (nil, false) if
// absent (spec.md §4.8).
func (t *Tx) GetIdempotencyRecord(ctx context.Context, key string) (*ucp.IdempotencyRecord, bool, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT key, request_hash, response_status, response_body, created_at
		 FROM idempotency_records WHERE key = ?`, key)
	var rec ucp.IdempotencyRecord
	if err := row.Scan(&rec.Key, &rec.RequestHash, &rec.ResponseStatus, &rec.ResponseBody, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &rec, true, nil
}

// SaveIdempotencyRecord persists a record exactly once per key. A
// primary-key conflict (two concurrent winners for the same key+hash,
// spec.md §5 "Idempotency concurrency") is treated as success: the
// earlier write already reflects the same response.
func (t *Tx) SaveIdempotencyRecord(ctx context.Context, rec ucp.IdempotencyRecord) error {
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO idempotency_records (key, request_hash, response_status, response_body, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO NOTHING`,
		rec.Key, rec.RequestHash, rec.ResponseStatus, rec.ResponseBody, rec.CreatedAt)
	return err
}
