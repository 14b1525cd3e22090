package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/salesreport/internal/types"
)

const (
	selectSales = `SELECT id, brand, model, variant, quantity, price, segment, timestamp FROM sales`

	queryAll     = selectSales + ` ORDER BY timestamp DESC, id DESC`
	queryByRange = selectSales + ` WHERE timestamp BETWEEN ? AND ? ORDER BY timestamp DESC, id DESC`

	insertSale = `INSERT INTO sales (brand, model, variant, quantity, price, segment, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`
	updateSale = `UPDATE sales SET brand = ?, model = ?, variant = ?, quantity = ?, price = ?, segment = ?, timestamp = ? WHERE id = ?`
	deleteSale = `DELETE FROM sales WHERE id = ?`
	deleteAll  = `DELETE FROM sales`
)

// schema keeps prices as TEXT so decimal amounts round-trip exactly.
const schema = `
CREATE TABLE IF NOT EXISTS sales (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	brand     TEXT    NOT NULL,
	model     TEXT    NOT NULL,
	variant   TEXT    NOT NULL DEFAULT '',
	quantity  INTEGER NOT NULL CHECK (quantity > 0),
	price     TEXT    NOT NULL,
	segment   TEXT    NOT NULL DEFAULT '',
	timestamp INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sales_timestamp ON sales(timestamp);
`

// SQLStore implements Store on SQLite.
type SQLStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// memoryPath opens a throwaway database.
const memoryPath = ":memory:"

// Open opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == memoryPath {
		// Every connection to :memory: is a separate empty database.
		db.SetMaxOpenConns(1)
	}

	s := NewWithDB(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// NewWithDB wraps an open handle without migrating it.
func NewWithDB(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the schema if it is missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// READER
// =============================================================================

func (s *SQLStore) QueryAll(ctx context.Context) ([]types.SaleRecord, error) {
	return s.query(ctx, queryAll)
}

func (s *SQLStore) QueryByRange(ctx context.Context, startMs, endMs int64) ([]types.SaleRecord, error) {
	return s.query(ctx, queryByRange, startMs, endMs)
}

func (s *SQLStore) query(ctx context.Context, q string, args ...any) ([]types.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var out []types.SaleRecord
	for rows.Next() {
		var r types.SaleRecord
		if err := rows.Scan(&r.ID, &r.Brand, &r.Model, &r.Variant, &r.Quantity, &r.UnitPrice, &r.Segment, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Int("records", len(out)).Msg("sales loaded")
	return out, nil
}

// =============================================================================
// WRITER
// =============================================================================

func (s *SQLStore) Insert(ctx context.Context, rec types.SaleRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, insertSale, insertArgs(rec)...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sale: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read sale id: %w", err)
	}
	return id, nil
}

func (s *SQLStore) InsertBatch(ctx context.Context, recs []types.SaleRecord) (int, error) {
	return s.writeBatch(ctx, recs, false)
}

// Replace removes every stored sale and inserts recs in one transaction,
// so a failed restore leaves the previous data in place.
func (s *SQLStore) Replace(ctx context.Context, recs []types.SaleRecord) (int, error) {
	return s.writeBatch(ctx, recs, true)
}

func (s *SQLStore) writeBatch(ctx context.Context, recs []types.SaleRecord, replace bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, deleteAll); err != nil {
			return 0, fmt.Errorf("failed to clear sales: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertSale)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range recs {
		if _, err := stmt.ExecContext(ctx, insertArgs(rec)...); err != nil {
			return 0, fmt.Errorf("failed to insert sale %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Int("records", len(recs)).Bool("replace", replace).Msg("sales written")
	return len(recs), nil
}

func (s *SQLStore) Update(ctx context.Context, rec types.SaleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, updateSale, append(insertArgs(rec), rec.ID)...)
	if err != nil {
		return fmt.Errorf("failed to update sale %d: %w", rec.ID, err)
	}
	return affected(res, rec.ID)
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, deleteSale, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale %d: %w", id, err)
	}
	return affected(res, id)
}

func (s *SQLStore) DeleteAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, deleteAll)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sales: %w", err)
	}
	return res.RowsAffected()
}

func insertArgs(r types.SaleRecord) []any {
	return []any{r.Brand, r.Model, r.Variant, r.Quantity, r.UnitPrice.String(), r.Segment, r.Timestamp}
}

func affected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}
