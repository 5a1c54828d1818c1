package txstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/ucp-merchant/core/internal/ucp"
)

// LoadOrder returns an order by id, or (nil, false) if absent.
func (t *Tx) LoadOrder(ctx context.Context, id string) (*ucp.Order, bool, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT body FROM orders WHERE id = ?`, id)
	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var order ucp.Order
	if err := json.Unmarshal([]byte(body), &order); err != nil {
		return nil, false, err
	}
	return &order, true, nil
}

// SaveOrder persists (insert or replace) an order's full serialized body
// (spec.md §4.1). update_order (spec.md §4.11) and ship_order both go
// through this same call — last-writer-wins, as documented in spec.md §9.
func (t *Tx) SaveOrder(ctx context.Context, order *ucp.Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO orders (id, checkout_id, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		order.ID, order.CheckoutID, string(body), now, now)
	return err
}
