// Package sqlite implements the order-creation stores on a single SQLite
// database using the pure-Go modernc driver (no CGO, builds in Alpine).
//
// WAL mode is enabled on Open so concurrent readers never block the writer.
// All timestamps are stored as RFC3339 TEXT, the SQLite idiom.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Register the pure-Go SQLite driver under the "sqlite" name.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. Idempotent via IF NOT EXISTS.
const schema = `
CREATE TABLE IF NOT EXISTS customers (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL DEFAULT '',
    email       TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL DEFAULT '',
    price       REAL NOT NULL,

    -- Available stock. The CHECK backs up the guarded decrement: a write
    -- that would go negative fails even if a future code path forgets the guard.
    quantity    INTEGER NOT NULL CHECK (quantity >= 0),

    updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id          TEXT PRIMARY KEY,
    customer_id TEXT NOT NULL REFERENCES customers(id),
    created_at  TEXT NOT NULL
);

-- Line items, one row per line, keyed by position to preserve request order.
CREATE TABLE IF NOT EXISTS order_lines (
    order_id    TEXT    NOT NULL REFERENCES orders(id),
    line_no     INTEGER NOT NULL,
    product_id  TEXT    NOT NULL REFERENCES products(id),
    quantity    INTEGER NOT NULL,

    -- Unit price snapshotted at validation time; deliberately denormalised so
    -- later catalog price changes never touch existing orders.
    unit_price  REAL    NOT NULL,

    PRIMARY KEY (order_id, line_no)
);
`

// DB wraps the shared *sql.DB handle. All stores in this package are created
// from one DB so they share the connection pool and the TxScope.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// A single connection serialises writers, which is how SQLite performs
	// best, and makes the guarded decrement race-free across goroutines.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (d *DB) Close() error {
	return d.db.Close()
}

// txKey carries the active *sql.Tx through a context during TxScope.Run.
type txKey struct{}

// Run implements domain.TxScope: fn executes inside one transaction, and
// every store call made with fn's context joins it. An error from fn rolls
// everything back. Nested Run calls join the outer transaction.
func (d *DB) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("sqlite: rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit tx: %w", err)
	}
	return nil
}

// querier is the subset of *sql.DB and *sql.Tx the stores need, so every
// query transparently runs against the transaction when one is active.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (d *DB) querier(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return d.db
}

// formatTime / parseTime convert between time.Time and the RFC3339 TEXT
// representation stored in SQLite.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
