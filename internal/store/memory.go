package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ginjaninja78/salesreport/internal/types"
)

// Memory is an in-process Store. Queries return copies.
type Memory struct {
	mu     sync.RWMutex
	sales  map[int64]types.SaleRecord
	nextID int64
}

// NewMemory returns a store seeded with recs; their ids are reassigned.
func NewMemory(recs ...types.SaleRecord) *Memory {
	m := &Memory{sales: make(map[int64]types.SaleRecord), nextID: 1}
	for _, r := range recs {
		m.insert(r)
	}
	return m
}

func (m *Memory) QueryAll(ctx context.Context) ([]types.SaleRecord, error) {
	return m.QueryByRange(ctx, minInt64, maxInt64)
}

func (m *Memory) QueryByRange(ctx context.Context, startMs, endMs int64) ([]types.SaleRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.SaleRecord
	for _, r := range m.sales {
		if r.Timestamp >= startMs && r.Timestamp <= endMs {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) Insert(_ context.Context, rec types.SaleRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(rec), nil
}

func (m *Memory) InsertBatch(_ context.Context, recs []types.SaleRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recs {
		m.insert(r)
	}
	return len(recs), nil
}

func (m *Memory) Replace(_ context.Context, recs []types.SaleRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales = make(map[int64]types.SaleRecord)
	for _, r := range recs {
		m.insert(r)
	}
	return len(recs), nil
}

func (m *Memory) Update(_ context.Context, rec types.SaleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sales[rec.ID]; !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, rec.ID)
	}
	m.sales[rec.ID] = rec
	return nil
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sales[id]; !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	delete(m.sales, id)
	return nil
}

func (m *Memory) DeleteAll(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.sales))
	m.sales = make(map[int64]types.SaleRecord)
	return n, nil
}

func (m *Memory) Close() error { return nil }

// insert assumes the write lock is held.
func (m *Memory) insert(r types.SaleRecord) int64 {
	r.ID = m.nextID
	m.nextID++
	m.sales[r.ID] = r
	return r.ID
}

const (
	minInt64 = -1 << 63
	maxInt64 = 1<<63 - 1
)
