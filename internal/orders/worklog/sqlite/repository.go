// Package sqlite provides a SQLite-backed implementation of worklog.Repository.
//
// WAL mode is enabled on Open so readers never block the writer — the workflow
// goroutine appends entries while the worklog HTTP endpoint may be reading.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/storewell/orders/internal/orders/domain"
	"github.com/storewell/orders/internal/orders/worklog"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO, so
	// the binary builds and runs in minimal containers without a toolchain.
	_ "modernc.org/sqlite"
)

// schema is the DDL applied once on Open. The table is append-only: one row
// per stage transition, never updated.
const schema = `
CREATE TABLE IF NOT EXISTS order_worklog (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Workflow run id; equals the order id once the order is persisted.
    run_id       TEXT NOT NULL,

    customer_id  TEXT NOT NULL,

    -- Stage entered when this row was written (VALIDATING_CUSTOMER, ...).
    stage        TEXT NOT NULL,

    -- Failure message for FAILED rows, empty otherwise.
    detail       TEXT NOT NULL DEFAULT '',

    -- W3C trace_id / span_id of the active span, for trace correlation.
    trace_id     TEXT NOT NULL DEFAULT '',
    span_id      TEXT NOT NULL DEFAULT '',

    -- RFC3339 TEXT timestamp (SQLite has no native datetime type).
    recorded_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_worklog_run_id ON order_worklog(run_id, id);
CREATE INDEX IF NOT EXISTS idx_order_worklog_trace_id ON order_worklog(trace_id);
`

// Repository is the SQLite implementation of worklog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the worklog database at path and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("worklog: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("worklog: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends a new worklog entry. Safe for concurrent use.
func (r *Repository) Save(ctx context.Context, entry *worklog.Entry) error {
	const q = `
		INSERT INTO order_worklog
			(run_id, customer_id, stage, detail, trace_id, span_id, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.RunID,
		entry.CustomerID,
		string(entry.Stage),
		entry.Detail,
		entry.TraceID,
		entry.SpanID,
		entry.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("worklog: save entry for run %q: %w", entry.RunID, err)
	}
	return nil
}

// ListByRun returns all entries for a run, oldest first.
func (r *Repository) ListByRun(ctx context.Context, runID string) ([]*worklog.Entry, error) {
	const q = `
		SELECT run_id, customer_id, stage, detail, trace_id, span_id, recorded_at
		FROM   order_worklog
		WHERE  run_id = ?
		ORDER  BY id`

	rows, err := r.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, fmt.Errorf("worklog: list entries for run %q: %w", runID, err)
	}
	defer rows.Close()

	var entries []*worklog.Entry
	for rows.Next() {
		var entry worklog.Entry
		var stage, recordedAt string
		if err := rows.Scan(
			&entry.RunID,
			&entry.CustomerID,
			&stage,
			&entry.Detail,
			&entry.TraceID,
			&entry.SpanID,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("worklog: scan entry for run %q: %w", runID, err)
		}
		entry.Stage = domain.Stage(stage)
		entry.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("worklog: parse time %q: %w", recordedAt, err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("worklog: list entries for run %q: %w", runID, err)
	}
	return entries, nil
}
