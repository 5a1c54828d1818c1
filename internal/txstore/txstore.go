/*
Package txstore implements the transaction store capability of
spec.md §4.1 (C2): inventory, checkout sessions, orders, idempotency
records, the request log, and customer addresses — everything mutated
under the core's transactional discipline (spec.md §5).

Every write that matters to a single command runs inside one *Tx,
opened with WithTx and committed only if the callback returns nil:
BeginTx, defer Rollback, explicit Commit on success, mirroring a single
SQLAlchemy AsyncSession-per-request model.
*/
package txstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the sqlite-backed transaction store, opened in WAL mode
// (spec.md §6 "Persisted state layout"). The pool holds a single open
// connection, so transactions, reads included, run one at a time.
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the transactions database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open tx db: %w", err)
	}
	// A single writer connection avoids SQLITE_BUSY under the
	// conditional-update contention described in spec.md §5.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate tx db: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS inventory (
		product_id TEXT PRIMARY KEY,
		quantity   INTEGER NOT NULL CHECK (quantity >= 0)
	);

	CREATE TABLE IF NOT EXISTS checkout_sessions (
		id      TEXT PRIMARY KEY,
		status  TEXT NOT NULL,
		body    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS orders (
		id          TEXT PRIMARY KEY,
		checkout_id TEXT NOT NULL,
		body        TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_orders_checkout ON orders(checkout_id);

	CREATE TABLE IF NOT EXISTS idempotency_records (
		key             TEXT PRIMARY KEY,
		request_hash    TEXT NOT NULL,
		response_status INTEGER NOT NULL,
		response_body   BLOB NOT NULL,
		created_at      TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS request_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp   TEXT NOT NULL,
		method      TEXT NOT NULL,
		url         TEXT NOT NULL,
		checkout_id TEXT,
		payload     BLOB
	);

	CREATE TABLE IF NOT EXISTS customer_addresses (
		id               TEXT PRIMARY KEY,
		customer_email   TEXT NOT NULL,
		street_address   TEXT,
		address_locality TEXT,
		address_region   TEXT,
		postal_code      TEXT,
		address_country  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_customer_addresses_email ON customer_addresses(customer_email);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Tx is an ambient transaction scope bound to one command execution
// (spec.md §4.1, §5). All reads/writes for a single create/update/
// complete/cancel happen through the same Tx and are committed (or
// rolled back) together.
type Tx struct {
	tx *sql.Tx
}

// WithTx opens a transaction, runs fn, and commits iff fn returns nil;
// otherwise it rolls back and propagates fn's error untouched (spec.md §5
// "Transactional boundary").
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// DB exposes the underlying *sql.DB for read-only callers that don't need
// a write transaction. Reads need no isolation beyond read-committed
// (spec.md §5). The engine's GET paths go through WithTx instead.
func (s *Store) DB() *sql.DB { return s.db }
