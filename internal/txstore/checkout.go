package txstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/ucp-merchant/core/internal/ucp"
)

// LoadCheckout returns a checkout session by id, or (nil, false) if
// absent.
func (t *Tx) LoadCheckout(ctx context.Context, id string) (*ucp.CheckoutSession, bool, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT body FROM checkout_sessions WHERE id = ?`, id)
	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var session ucp.CheckoutSession
	if err := json.Unmarshal([]byte(body), &session); err != nil {
		return nil, false, err
	}
	return &session, true, nil
}

// SaveCheckout persists (insert or replace) a checkout session's full
// serialized body, keyed by id, with the status kept in its own column
// (spec.md §4.1 "load/save a checkout session as (id, status, serialized
// body)").
func (t *Tx) SaveCheckout(ctx context.Context, session *ucp.CheckoutSession) error {
	body, err := json.Marshal(session)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO checkout_sessions (id, status, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status = excluded.status, body = excluded.body, updated_at = excluded.updated_at`,
		session.ID, string(session.Status), string(body), now, now)
	return err
}
