package catalog

import (
	"context"
	"sync"
)

// memoKey uniquely identifies one metadata lookup. All fields are required
// to form a key; the cache is exact-match only.
type memoKey struct {
	db     string
	schema string
	table  string
}

// Memo wraps a Catalog with in-memory memoization for the lifetime of a
// session. The interactive layer re-reads the same table definitions on
// every redraw; memoizing keeps that to one round trip per
// (database, schema, table).
//
// Only successful lookups are cached, so a transient failure is retried on
// the next call. There is no eviction: a Memo lives exactly as long as its
// session and is dropped with it. Safe for concurrent use.
type Memo struct {
	inner Catalog

	mu        sync.RWMutex
	databases []string
	schemas   map[memoKey][]string
	tables    map[memoKey][]string
	columns   map[memoKey][]ColumnDef
	qualified map[memoKey][]string
}

// NewMemo wraps inner with session-lifetime memoization.
func NewMemo(inner Catalog) *Memo {
	return &Memo{
		inner:     inner,
		schemas:   make(map[memoKey][]string),
		tables:    make(map[memoKey][]string),
		columns:   make(map[memoKey][]ColumnDef),
		qualified: make(map[memoKey][]string),
	}
}

// Databases returns the cached database list, filling it on first use.
func (m *Memo) Databases(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	cached := m.databases
	m.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	names, err := m.inner.Databases(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.databases = names
	m.mu.Unlock()
	return names, nil
}

// Schemas returns the cached schema list for one database.
func (m *Memo) Schemas(ctx context.Context, db string) ([]string, error) {
	key := memoKey{db: db}
	m.mu.RLock()
	cached, ok := m.schemas[key]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	names, err := m.inner.Schemas(ctx, db)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.schemas[key] = names
	m.mu.Unlock()
	return names, nil
}

// Tables returns the cached table list for one schema.
func (m *Memo) Tables(ctx context.Context, db, schema string) ([]string, error) {
	key := memoKey{db: db, schema: schema}
	m.mu.RLock()
	cached, ok := m.tables[key]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	names, err := m.inner.Tables(ctx, db, schema)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.tables[key] = names
	m.mu.Unlock()
	return names, nil
}

// Columns returns the cached column definitions for one table.
func (m *Memo) Columns(ctx context.Context, db, schema, table string) ([]ColumnDef, error) {
	key := memoKey{db: db, schema: schema, table: table}
	m.mu.RLock()
	cached, ok := m.columns[key]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	cols, err := m.inner.Columns(ctx, db, schema, table)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.columns[key] = cols
	m.mu.Unlock()
	return cols, nil
}

// QualifiedColumns returns the cached qualified column tokens for one
// table.
func (m *Memo) QualifiedColumns(ctx context.Context, db, schema, table string) ([]string, error) {
	key := memoKey{db: db, schema: schema, table: table}
	m.mu.RLock()
	cached, ok := m.qualified[key]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	refs, err := m.inner.QualifiedColumns(ctx, db, schema, table)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.qualified[key] = refs
	m.mu.Unlock()
	return refs, nil
}
