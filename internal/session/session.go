// Package session owns the mutable state of one interactive query-building
// conversation: the chosen database and schema, the query shape being
// edited, and a memoized view of the catalog.
//
// ISOLATION:
//
// Every session is owned by exactly one logical interaction handler at a
// time; there is no shared mutable state between sessions. The Registry
// only maps ids to sessions - it never touches a session's shape.
//
// ELIGIBILITY:
//
// The join-order invariants of the shape model are enforced here, where
// both the shape and the catalog are in reach: an ON condition's left
// column may only come from tables introduced strictly before its join
// (the primary table plus prior joins' right tables). The option helpers
// below compute exactly those column lists, so a forward reference is
// never offered and never enters the shape.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/quarry-dev/quarry/internal/catalog"
	"github.com/quarry-dev/quarry/internal/shape"
	"github.com/quarry-dev/quarry/internal/sqlgen"
)

// Session is the state of one query-building conversation.
type Session struct {
	ID string

	// Database and Schema scope every table in the shape; the primary
	// table itself lives on the shape.
	Database string
	Schema   string

	Shape *shape.QueryShape

	// Catalog is memoized for the session's lifetime, so repeated redraws
	// of the same table definitions cost one round trip each.
	Catalog *catalog.Memo
}

// Registry holds live sessions keyed by id. Safe for concurrent use; the
// sessions themselves are single-owner.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create starts a fresh session over the given catalog and registers it.
func (r *Registry) Create(cat catalog.Catalog) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Shape:   shape.New(),
		Catalog: catalog.NewMemo(cat),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given id, or nil.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Remove drops a session and its memoized catalog. Unknown ids are a
// no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Target returns the compiler target for the session's current context.
func (s *Session) Target() sqlgen.Target {
	return sqlgen.Target{
		Database: s.Database,
		Schema:   s.Schema,
		Table:    s.Shape.Table,
	}
}

// AllTables returns the primary table plus every join's resolved right
// table, in shape order, deduplicated.
func (s *Session) AllTables() []string {
	var tables []string
	seen := map[string]bool{}
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			tables = append(tables, t)
		}
	}
	add(s.Shape.Table)
	for _, join := range s.Shape.Joins {
		add(join.RightTable)
	}
	return tables
}

// TablesBefore returns the tables introduced strictly before the join at
// joinIndex: the primary table plus the resolved right tables of all
// earlier joins. These are the only tables an ON condition's left column
// may reference.
func (s *Session) TablesBefore(joinIndex int) []string {
	tables := []string{}
	if s.Shape.Table != "" {
		tables = append(tables, s.Shape.Table)
	}
	for i := 0; i < joinIndex && i < len(s.Shape.Joins); i++ {
		if t := s.Shape.Joins[i].RightTable; t != "" {
			tables = append(tables, t)
		}
	}
	return tables
}

// LeftColumnOptions returns the qualified columns eligible as the left
// side of an ON condition in the join at joinIndex. Columns of the join's
// own right table, or of any later join, are never offered.
func (s *Session) LeftColumnOptions(ctx context.Context, joinIndex int) ([]string, error) {
	return s.qualifiedColumnsOf(ctx, s.TablesBefore(joinIndex))
}

// RightColumnOptions returns the qualified columns of the join's own right
// table, the only legal right side of its ON conditions.
func (s *Session) RightColumnOptions(ctx context.Context, joinIndex int) ([]string, error) {
	if joinIndex < 0 || joinIndex >= len(s.Shape.Joins) {
		return nil, nil
	}
	right := s.Shape.Joins[joinIndex].RightTable
	if right == "" {
		return nil, nil
	}
	return s.qualifiedColumnsOf(ctx, []string{right})
}

// AvailableJoinTables returns the tables a join may pick as its right
// table: every table of the schema not already used by the shape, plus
// the join's current right table so an existing choice stays selectable.
func (s *Session) AvailableJoinTables(ctx context.Context, joinID string) ([]string, error) {
	all, err := s.Catalog.Tables(ctx, s.Database, s.Schema)
	if err != nil {
		return nil, err
	}

	used := map[string]bool{}
	if s.Shape.Table != "" {
		used[s.Shape.Table] = true
	}
	var own string
	for _, join := range s.Shape.Joins {
		if join.ID == joinID {
			own = join.RightTable
			continue
		}
		if join.RightTable != "" {
			used[join.RightTable] = true
		}
	}

	var available []string
	for _, t := range all {
		if !used[t] || t == own {
			available = append(available, t)
		}
	}
	return available, nil
}

// QualifiedColumns returns the valid-column universe for the current
// shape: every column of the primary table and of each resolved join
// table, in table order.
func (s *Session) QualifiedColumns(ctx context.Context) ([]string, error) {
	return s.qualifiedColumnsOf(ctx, s.AllTables())
}

// ColumnSet returns QualifiedColumns as the compiler's membership set.
func (s *Session) ColumnSet(ctx context.Context) (sqlgen.ColumnSet, error) {
	cols, err := s.QualifiedColumns(ctx)
	if err != nil {
		return nil, err
	}
	return sqlgen.NewColumnSet(cols), nil
}

// Compile assembles the session's current statement.
func (s *Session) Compile(ctx context.Context) (string, error) {
	valid, err := s.ColumnSet(ctx)
	if err != nil {
		return "", err
	}
	return sqlgen.Compile(s.Shape, s.Target(), valid)
}

// Validate dry-runs compilation and reports dropped fragments.
func (s *Session) Validate(ctx context.Context) (sqlgen.ValidationResult, error) {
	valid, err := s.ColumnSet(ctx)
	if err != nil {
		return sqlgen.ValidationResult{}, err
	}
	return sqlgen.Validate(s.Shape, s.Target(), valid), nil
}

func (s *Session) qualifiedColumnsOf(ctx context.Context, tables []string) ([]string, error) {
	var cols []string
	for _, table := range tables {
		refs, err := s.Catalog.QualifiedColumns(ctx, s.Database, s.Schema, table)
		if err != nil {
			return nil, err
		}
		cols = append(cols, refs...)
	}
	return cols, nil
}
