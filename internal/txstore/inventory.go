package txstore

import (
	"context"
	"database/sql"
	"errors"
)

// GetInventory returns the current quantity for productID, or (0, false)
// if the product has no inventory row.
func (t *Tx) GetInventory(ctx context.Context, productID string) (int, bool, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT quantity FROM inventory WHERE product_id = ?`, productID)
	var qty int
	if err := row.Scan(&qty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return qty, true, nil
}

// ReserveStock atomically decrements inventory for productID by quantity
// iff sufficient stock exists, returning whether the decrement took
// effect (spec.md §4.6 "atomic reserve"). The single conditional UPDATE
// with a row-count check is what makes concurrent completes over the
// same product race safely (spec.md §5).
func (t *Tx) ReserveStock(ctx context.Context, productID string, quantity int) (bool, error) {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE inventory SET quantity = quantity - ? WHERE product_id = ? AND quantity >= ?`,
		quantity, productID, quantity)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// SetInventory is dev/seed tooling to populate stock levels.
func (t *Tx) SetInventory(ctx context.Context, productID string, quantity int) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO inventory (product_id, quantity) VALUES (?, ?)
		 ON CONFLICT(product_id) DO UPDATE SET quantity = excluded.quantity`,
		productID, quantity)
	return err
}
