// Package worklog defines the audit trail of the order-creation workflow.
//
// Every stage transition of every run is recorded as an immutable entry, so
// the log answers two questions:
//
//  1. Observability: where did run X stop, and which distributed trace does it
//     belong to (via the trace_id field)?
//
//  2. Forensics: if order persistence and the inventory write-back ever
//     diverge (a crash between commit and response, an operator mistake), the
//     log shows exactly which stage each run reached.
package worklog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/storewell/orders/internal/orders/domain"
)

// Entry is a single row in the order_worklog table: a point-in-time snapshot
// of one workflow run entering a stage.
type Entry struct {
	// RunID identifies the workflow run. The workflow mints the order id
	// before its first stage, so this always equals the order id — including
	// for failed runs whose order was never persisted.
	RunID string

	// CustomerID of the request being processed.
	CustomerID string

	// Stage the run transitioned to when this entry was written.
	Stage domain.Stage

	// Detail carries the failure message for FAILED entries, empty otherwise.
	Detail string

	// TraceID is the W3C trace id of the span active when the entry was
	// written. Lets an operator jump from a worklog row to the full trace.
	TraceID string

	// SpanID pinpoints the exact span within that trace.
	SpanID string

	// RecordedAt is the wall-clock time of the transition.
	RecordedAt time.Time
}

// Repository is the port for persisting and reading worklog entries.
// The workflow appends; nothing ever updates or deletes a row.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error

	// ListByRun returns all entries for a run in the order they were written.
	ListByRun(ctx context.Context, runID string) ([]*Entry, error)
}

// NewEntry builds an entry for the given transition, extracting trace and
// span ids from the active OpenTelemetry span in ctx. Without an active span
// (unit tests, for instance) both ids are empty strings.
func NewEntry(ctx context.Context, runID, customerID string, stage domain.Stage, detail string) *Entry {
	entry := &Entry{
		RunID:      runID,
		CustomerID: customerID,
		Stage:      stage,
		Detail:     detail,
		RecordedAt: time.Now().UTC(),
	}

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		entry.TraceID = sc.TraceID().String()
		entry.SpanID = sc.SpanID().String()
	}

	return entry
}
