package shape

import "github.com/google/uuid"

// MaxJoins caps the number of join specifications in one shape.
// A policy ceiling, not a technical one: the builder targets beginners and
// two joins keeps the eligibility rules explainable.
const MaxJoins = 2

// SelectItem is one entry of the output list.
//
// Column is a qualified column reference ("table"."column") matched as an
// opaque token against the session's valid-column list, or empty when the
// user has not picked a column yet. An item without a column is never
// emitted into the final SELECT list.
type SelectItem struct {
	ID        string
	Column    string
	Aggregate AggregateKind
}

// FilterCondition is one entry of the WHERE chain.
//
// Logical chains this condition to the previous one and is ignored for the
// first emitted condition. Value is required for every operator except the
// null checks. A condition without a column contributes no predicate.
type FilterCondition struct {
	ID       string
	Logical  LogicalOp
	Column   string
	Operator OperatorKind
	Value    string
}

// OnCondition is one equality predicate binding two tables inside a join.
// LeftColumn must be drawn from tables introduced strictly before the
// owning join (the primary table plus prior joins' right tables); the
// session package computes that eligibility.
type OnCondition struct {
	ID          string
	LeftColumn  string
	RightColumn string
}

// JoinSpec describes one joined table. A join without a right table, or
// without at least one complete ON pair, contributes nothing to FROM.
type JoinSpec struct {
	ID         string
	Kind       JoinKind
	RightTable string
	On         []OnCondition
}

// QueryShape is the aggregate root: everything the user has configured for
// one statement. It is owned by exactly one session for its whole
// interactive lifetime; the compiler only reads it.
type QueryShape struct {
	// Table is the primary table the statement selects from. The owning
	// database and schema live on the session, not the shape.
	Table string

	Select  []SelectItem
	Filters []FilterCondition
	Joins   []JoinSpec
}

// New returns an empty shape.
func New() *QueryShape {
	return &QueryShape{}
}

// newID returns a fresh opaque id. IDs are random UUIDv4 strings; they are
// assigned once at creation and never reassigned or reused.
func newID() string {
	return uuid.NewString()
}

// AddSelectItem appends a blank output item (no column, no aggregate) and
// returns it for immediate mutation by the caller.
func (q *QueryShape) AddSelectItem() *SelectItem {
	q.Select = append(q.Select, SelectItem{
		ID:        newID(),
		Aggregate: AggregateNone,
	})
	return &q.Select[len(q.Select)-1]
}

// AddFilterCondition appends a blank condition (AND, =, empty value) and
// returns it for immediate mutation by the caller.
func (q *QueryShape) AddFilterCondition() *FilterCondition {
	q.Filters = append(q.Filters, FilterCondition{
		ID:       newID(),
		Logical:  LogicalAnd,
		Operator: OpEq,
	})
	return &q.Filters[len(q.Filters)-1]
}

// AddJoin appends a blank inner join with no right table and no ON
// conditions. Returns nil without mutating the shape once MaxJoins joins
// exist; exceeding the ceiling is a refusal, not an error.
func (q *QueryShape) AddJoin() *JoinSpec {
	if len(q.Joins) >= MaxJoins {
		return nil
	}
	q.Joins = append(q.Joins, JoinSpec{
		ID:   newID(),
		Kind: JoinInner,
	})
	return &q.Joins[len(q.Joins)-1]
}

// AddOnCondition appends a blank ON pair to the join with the given id and
// returns it. Returns nil without mutating anything when no join matches.
func (q *QueryShape) AddOnCondition(joinID string) *OnCondition {
	for i := range q.Joins {
		if q.Joins[i].ID == joinID {
			q.Joins[i].On = append(q.Joins[i].On, OnCondition{ID: newID()})
			return &q.Joins[i].On[len(q.Joins[i].On)-1]
		}
	}
	return nil
}

// RemoveSelectItem removes the output item with the given id.
// Unknown ids are a silent no-op.
func (q *QueryShape) RemoveSelectItem(id string) {
	for i := range q.Select {
		if q.Select[i].ID == id {
			q.Select = append(q.Select[:i], q.Select[i+1:]...)
			return
		}
	}
}

// RemoveFilterCondition removes the condition with the given id.
// Unknown ids are a silent no-op.
func (q *QueryShape) RemoveFilterCondition(id string) {
	for i := range q.Filters {
		if q.Filters[i].ID == id {
			q.Filters = append(q.Filters[:i], q.Filters[i+1:]...)
			return
		}
	}
}

// RemoveJoin removes the join with the given id, including its ON
// conditions. Unknown ids are a silent no-op.
func (q *QueryShape) RemoveJoin(id string) {
	for i := range q.Joins {
		if q.Joins[i].ID == id {
			q.Joins = append(q.Joins[:i], q.Joins[i+1:]...)
			return
		}
	}
}

// RemoveOnCondition removes one ON pair from the join with the given id.
// Unknown join or condition ids are a silent no-op.
func (q *QueryShape) RemoveOnCondition(joinID, id string) {
	for i := range q.Joins {
		if q.Joins[i].ID != joinID {
			continue
		}
		on := q.Joins[i].On
		for j := range on {
			if on[j].ID == id {
				q.Joins[i].On = append(on[:j], on[j+1:]...)
				return
			}
		}
		return
	}
}

// AggregationUsed reports whether any output item carries an aggregate,
// resolvable or not. This is the trigger for inferring GROUP BY: bare
// columns become grouping keys only once some item aggregates.
func (q *QueryShape) AggregationUsed() bool {
	for _, item := range q.Select {
		if item.Aggregate != AggregateNone {
			return true
		}
	}
	return false
}

// Clone returns a deep copy sharing no slices with the original. Used to
// snapshot a shape before a mutation that may need rolling back.
func (q *QueryShape) Clone() *QueryShape {
	out := &QueryShape{
		Table:   q.Table,
		Select:  append([]SelectItem(nil), q.Select...),
		Filters: append([]FilterCondition(nil), q.Filters...),
		Joins:   append([]JoinSpec(nil), q.Joins...),
	}
	for i := range out.Joins {
		out.Joins[i].On = append([]OnCondition(nil), q.Joins[i].On...)
	}
	return out
}
