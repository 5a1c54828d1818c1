/*
Package catalogstore implements the read-only catalog capability of
spec.md §4.1 (C1): products, promotions, shipping rates, and discount
codes. It is opened separately from the transaction store so the catalog
can run read-only/WAL while the transaction store takes writes, per
spec.md §4.1's note that an implementation may collapse the two.

A single migrate() call creates the schema if absent, and each read is a
small, explicit SQL statement rather than an ORM.
*/
package catalogstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ucp-merchant/core/internal/ucp"
)

// Store is a read-mostly sqlite-backed catalog.
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the catalog database at path. Use ":memory:"
// for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog db: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id        TEXT PRIMARY KEY,
		title     TEXT NOT NULL,
		price     INTEGER NOT NULL,
		image_url TEXT
	);

	CREATE TABLE IF NOT EXISTS promotions (
		id                 TEXT PRIMARY KEY,
		type               TEXT NOT NULL,
		min_subtotal       INTEGER,
		eligible_item_ids  TEXT, -- comma-separated product ids
		active             BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS shipping_rates (
		id            TEXT PRIMARY KEY,
		country_code  TEXT NOT NULL,
		service_level TEXT NOT NULL,
		title         TEXT NOT NULL,
		price         INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_shipping_rates_country
		ON shipping_rates(country_code);

	CREATE TABLE IF NOT EXISTS discounts (
		code  TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		kind  TEXT NOT NULL,
		value INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// GetProduct returns a product by id, or (nil, sql.ErrNoRows) if absent.
func (s *Store) GetProduct(ctx context.Context, id string) (*ucp.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, price, image_url FROM products WHERE id = ?`, id)
	var p ucp.Product
	var imageURL sql.NullString
	if err := row.Scan(&p.ID, &p.Title, &p.Price, &imageURL); err != nil {
		return nil, err
	}
	p.ImageURL = imageURL.String
	return &p, nil
}

// ListActivePromotions returns every active promotion.
func (s *Store) ListActivePromotions(ctx context.Context) ([]ucp.Promotion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, min_subtotal, eligible_item_ids FROM promotions WHERE active = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()

	var out []ucp.Promotion
	for rows.Next() {
		var p ucp.Promotion
		var minSubtotal sql.NullInt64
		var eligible sql.NullString
		if err := rows.Scan(&p.Type, &minSubtotal, &eligible); err != nil {
			return nil, err
		}
		p.MinSubtotal = minSubtotal.Int64
		p.EligibleItemIDs = splitCSV(eligible.String)
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetShippingRates returns rates for country, plus the "default" fallback
// rates, for the fulfillment evaluator to bucket (spec.md §4.5 step 2-3).
func (s *Store) GetShippingRates(ctx context.Context, country string) ([]ucp.ShippingRate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, country_code, service_level, title, price
		 FROM shipping_rates WHERE country_code = ? OR country_code = 'default'`,
		country)
	if err != nil {
		return nil, fmt.Errorf("get shipping rates: %w", err)
	}
	defer rows.Close()

	var out []ucp.ShippingRate
	for rows.Next() {
		var r ucp.ShippingRate
		if err := rows.Scan(&r.ID, &r.CountryCode, &r.ServiceLevel, &r.Title, &r.Price); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetDiscount returns a discount definition by code, or (nil, sql.ErrNoRows).
func (s *Store) GetDiscount(ctx context.Context, code string) (*ucp.Discount, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT code, title, kind, value FROM discounts WHERE code = ?`, code)
	var d ucp.Discount
	if err := row.Scan(&d.Code, &d.Title, &d.Kind, &d.Value); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDiscounts batch-resolves discount codes, silently omitting codes
// that have no catalog entry (spec.md §4.3 step 5 — unknown codes are
// dropped, not errored).
func (s *Store) GetDiscounts(ctx context.Context, codes []string) (map[string]ucp.Discount, error) {
	out := make(map[string]ucp.Discount, len(codes))
	for _, code := range codes {
		d, err := s.GetDiscount(ctx, code)
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return nil, err
		}
		out[code] = *d
	}
	return out, nil
}

// UpsertProduct is dev/seed tooling (internal/seed) to populate the
// catalog; the checkout engine itself never writes here (spec.md §4.1).
func (s *Store) UpsertProduct(ctx context.Context, p ucp.Product) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, title, price, image_url) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title, price=excluded.price, image_url=excluded.image_url`,
		p.ID, p.Title, p.Price, p.ImageURL)
	return err
}

// UpsertPromotion is dev/seed tooling.
func (s *Store) UpsertPromotion(ctx context.Context, id string, p ucp.Promotion) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO promotions (id, type, min_subtotal, eligible_item_ids, active) VALUES (?, ?, ?, ?, TRUE)
		 ON CONFLICT(id) DO UPDATE SET type=excluded.type, min_subtotal=excluded.min_subtotal, eligible_item_ids=excluded.eligible_item_ids`,
		id, p.Type, p.MinSubtotal, joinCSV(p.EligibleItemIDs))
	return err
}

// UpsertShippingRate is dev/seed tooling.
func (s *Store) UpsertShippingRate(ctx context.Context, r ucp.ShippingRate) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shipping_rates (id, country_code, service_level, title, price) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET country_code=excluded.country_code, service_level=excluded.service_level, title=excluded.title, price=excluded.price`,
		r.ID, r.CountryCode, r.ServiceLevel, r.Title, r.Price)
	return err
}

// UpsertDiscount is dev/seed tooling.
func (s *Store) UpsertDiscount(ctx context.Context, d ucp.Discount) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO discounts (code, title, kind, value) VALUES (?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET title=excluded.title, kind=excluded.kind, value=excluded.value`,
		d.Code, d.Title, d.Kind, d.Value)
	return err
}
