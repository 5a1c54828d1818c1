package idempotency

import (
	"context"

	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucp"
	"github.com/ucp-merchant/core/internal/ucperr"
)

// Result is a previously cached response, returned verbatim on a
// matching replay (spec.md §4.8).
type Result struct {
	Status int
	Body   []byte
}

// Check looks up key within tx. If a record exists with a matching hash,
// it returns the cached result. If a record exists with a mismatching
// hash, it returns IDEMPOTENCY_CONFLICT. If no record exists, it returns
// (nil, nil) so the caller proceeds to execute the command and later
// calls Persist.
func Check(ctx context.Context, tx *txstore.Tx, key, hash string) (*Result, error) {
	rec, ok, err := tx.GetIdempotencyRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if rec.RequestHash != hash {
		return nil, ucperr.IdempotencyConflict("idempotency key %q reused with a different request", key)
	}
	return &Result{Status: rec.ResponseStatus, Body: rec.ResponseBody}, nil
}

// Persist records the outcome of a freshly executed command under key,
// within the same transaction as the command's other writes (spec.md
// §4.8 "On lookup by key: if no record, execute command, then persist").
func Persist(ctx context.Context, tx *txstore.Tx, key, hash string, status int, body []byte) error {
	return tx.SaveIdempotencyRecord(ctx, ucp.IdempotencyRecord{
		Key:            key,
		RequestHash:    hash,
		ResponseStatus: status,
		ResponseBody:   body,
	})
}
