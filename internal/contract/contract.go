// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/seobench/schema"
)

// Clock supplies the time used to derive run identifiers.
// Tests inject a fixed clock so that repeated runs produce identical outputs.
type Clock interface {
	Now() time.Time
}

// LedgerStore defines the interface for the optional run ledger.
// The ledger is write-only from the engine's point of view: runs never read it back.
type LedgerStore interface {
	// RecordRun stores the summary of a finished run and its per-issue-type counts.
	RecordRun(ctx context.Context, run schema.RunRecord, counts []schema.IssueCountRecord) error

	// ListRuns returns every recorded run ordered by start time.
	ListRuns(ctx context.Context) ([]schema.RunRecord, error)

	// ListIssueCounts returns every recorded issue count ordered by run and issue type.
	ListIssueCounts(ctx context.Context) ([]schema.IssueCountRecord, error)

	// GetStatus returns status information about the ledger.
	GetStatus(ctx context.Context) (schema.LedgerStatus, error)

	// Clear removes all recorded runs.
	Clear(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error
}
