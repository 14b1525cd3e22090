/*
Package store persists sale records and hands read-only snapshots to the
report pipeline.

INTERFACES:

	Reader: QueryAll and QueryByRange, the only calls report generation makes
	Writer: record entry, correction and removal used by the CLI

IMPLEMENTATIONS:

	SQLStore: single-table SQLite database (go-sqlite3)
	Memory:   in-process store for tests and dry runs

ORDERING:

	Both queries return records newest first (timestamp DESC, id DESC).
	QueryByRange bounds are inclusive milliseconds since epoch.
*/
package store

import (
	"context"
	"errors"

	"github.com/ginjaninja78/salesreport/internal/types"
)

// ErrNotFound is returned when an id matches no record.
var ErrNotFound = errors.New("sale record not found")

// Reader supplies report snapshots.
type Reader interface {
	QueryAll(ctx context.Context) ([]types.SaleRecord, error)
	QueryByRange(ctx context.Context, startMs, endMs int64) ([]types.SaleRecord, error)
}

// Writer changes stored records.
type Writer interface {
	// Insert stores rec and returns its new id. rec.ID is ignored.
	Insert(ctx context.Context, rec types.SaleRecord) (int64, error)

	// InsertBatch stores all records atomically and returns how many were
	// written.
	InsertBatch(ctx context.Context, recs []types.SaleRecord) (int, error)

	// Replace swaps the whole data set for recs, as a backup restore does.
	Replace(ctx context.Context, recs []types.SaleRecord) (int, error)

	Update(ctx context.Context, rec types.SaleRecord) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
}

// Store is a Reader and Writer that must be closed.
type Store interface {
	Reader
	Writer
	Close() error
}

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*Memory)(nil)
)
