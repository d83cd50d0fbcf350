package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gyeh/joblog/internal/model"
)

// ErrTxDone is returned when a finished Memory transaction is used again.
var ErrTxDone = errors.New("transaction already finished")

// Memory is an in-process Store. The novelty check builds a key set from a
// full scan of the target table's rows for the staged printers instead of a
// join. A transaction holds the store lock from Begin until it finishes.
type Memory struct {
	mu      sync.Mutex // serializes transactions
	dataMu  sync.RWMutex
	tables  map[string][]model.Event
	staging map[string][]model.Event
	records []model.SourceSummary
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tables:  make(map[string][]model.Event),
		staging: make(map[string][]model.Event),
	}
}

// Begin locks the store for the lifetime of the transaction.
func (m *Memory) Begin(ctx context.Context) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	return &memTx{m: m, pending: make(map[string][]model.Event)}, nil
}

// Rows returns a copy of the rows stored in table.
func (m *Memory) Rows(table string) []model.Event {
	m.dataMu.RLock()
	defer m.dataMu.RUnlock()
	return append([]model.Event(nil), m.tables[table]...)
}

// StagingTables lists staging tables that still exist, sorted by name.
func (m *Memory) StagingTables() []string {
	m.dataMu.RLock()
	defer m.dataMu.RUnlock()
	names := make([]string, 0, len(m.staging))
	for name := range m.staging {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RecordSource keeps the summary in memory.
func (m *Memory) RecordSource(ctx context.Context, s model.SourceSummary) error {
	m.dataMu.Lock()
	defer m.dataMu.Unlock()
	m.records = append(m.records, s)
	return nil
}

// Records returns the recorded source summaries in order.
func (m *Memory) Records() []model.SourceSummary {
	m.dataMu.RLock()
	defer m.dataMu.RUnlock()
	return append([]model.SourceSummary(nil), m.records...)
}

type memTx struct {
	m        *Memory
	pending  map[string][]model.Event
	done     bool
	released bool
}

func (t *memTx) CreateStaging(ctx context.Context, staging, table string) error {
	if t.done {
		return ErrTxDone
	}
	t.m.dataMu.Lock()
	defer t.m.dataMu.Unlock()
	if _, ok := t.m.staging[staging]; ok {
		return fmt.Errorf("staging table %s already exists", staging)
	}
	t.m.staging[staging] = nil
	return nil
}

func (t *memTx) LoadStaging(ctx context.Context, staging string, events []model.Event) (int64, error) {
	if t.done {
		return 0, ErrTxDone
	}
	t.m.dataMu.Lock()
	defer t.m.dataMu.Unlock()
	rows, ok := t.m.staging[staging]
	if !ok {
		return 0, fmt.Errorf("staging table %s does not exist", staging)
	}
	t.m.staging[staging] = append(rows, events...)
	return int64(len(events)), nil
}

func (t *memTx) AppendAbsent(ctx context.Context, staging, table string) (int64, error) {
	if t.done {
		return 0, ErrTxDone
	}
	t.m.dataMu.RLock()
	staged, ok := t.m.staging[staging]
	if !ok {
		t.m.dataMu.RUnlock()
		return 0, fmt.Errorf("staging table %s does not exist", staging)
	}

	printers := make(map[string]bool)
	for i := range staged {
		printers[staged[i].PrinterName] = true
	}
	existing := make(map[model.Key]bool)
	for _, rows := range [][]model.Event{t.m.tables[table], t.pending[table]} {
		for i := range rows {
			if printers[rows[i].PrinterName] {
				existing[rows[i].Key()] = true
			}
		}
	}
	t.m.dataMu.RUnlock()

	var n int64
	for _, e := range staged {
		if existing[e.Key()] {
			continue
		}
		existing[e.Key()] = true
		t.pending[table] = append(t.pending[table], e)
		n++
	}
	return n, nil
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.m.dataMu.Lock()
	for table, rows := range t.pending {
		t.m.tables[table] = append(t.m.tables[table], rows...)
	}
	t.m.dataMu.Unlock()
	t.pending = nil
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.pending = nil
	return nil
}

func (t *memTx) DropStaging(ctx context.Context, staging string) error {
	t.m.dataMu.Lock()
	defer t.m.dataMu.Unlock()
	delete(t.m.staging, staging)
	return nil
}

func (t *memTx) Release() {
	if t.released {
		return
	}
	t.released = true
	t.m.mu.Unlock()
}
