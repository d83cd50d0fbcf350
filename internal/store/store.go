// Package store provides the transactional event store used by the
// differential merge: a Postgres implementation and an in-memory one.
package store

import (
	"context"

	"github.com/gyeh/joblog/internal/model"
)

// Store opens merge transactions.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one merge transaction. Staging tables are scoped to the transaction's
// session; DropStaging and Release must be called after Commit or Rollback.
type Tx interface {
	// CreateStaging creates an empty staging table shaped like table.
	CreateStaging(ctx context.Context, staging, table string) error
	// LoadStaging bulk-loads events into the staging table.
	LoadStaging(ctx context.Context, staging string, events []model.Event) (int64, error)
	// AppendAbsent appends staged rows whose composite key is not yet in
	// table and returns how many were appended.
	AppendAbsent(ctx context.Context, staging, table string) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	// DropStaging removes the staging table if it still exists.
	DropStaging(ctx context.Context, staging string) error
	// Release returns any held resources. It is safe to call more than once.
	Release()
}

// Recorder keeps an audit trail of per-source results.
type Recorder interface {
	RecordSource(ctx context.Context, s model.SourceSummary) error
}
