package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSelectItem_Defaults(t *testing.T) {
	q := New()

	item := q.AddSelectItem()
	require.NotNil(t, item)

	assert.NotEmpty(t, item.ID)
	assert.Empty(t, item.Column, "new items start without a column")
	assert.Equal(t, AggregateNone, item.Aggregate)
	assert.Len(t, q.Select, 1)
}

func TestAddFilterCondition_Defaults(t *testing.T) {
	q := New()

	cond := q.AddFilterCondition()
	require.NotNil(t, cond)

	assert.NotEmpty(t, cond.ID)
	assert.Equal(t, LogicalAnd, cond.Logical)
	assert.Equal(t, OpEq, cond.Operator)
	assert.Empty(t, cond.Value)
}

func TestAddJoin_Ceiling(t *testing.T) {
	q := New()

	first := q.AddJoin()
	require.NotNil(t, first)
	assert.Equal(t, JoinInner, first.Kind)
	assert.Empty(t, first.RightTable)

	second := q.AddJoin()
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)

	// Third join is refused, not appended.
	third := q.AddJoin()
	assert.Nil(t, third)
	assert.Len(t, q.Joins, MaxJoins)
}

func TestAddOnCondition(t *testing.T) {
	q := New()
	join := q.AddJoin()
	require.NotNil(t, join)

	on := q.AddOnCondition(join.ID)
	require.NotNil(t, on)
	assert.NotEmpty(t, on.ID)
	assert.Len(t, q.Joins[0].On, 1)

	// Unknown join id is a no-op.
	assert.Nil(t, q.AddOnCondition("no-such-join"))
	assert.Len(t, q.Joins[0].On, 1)
}

func TestIDsAreUnique(t *testing.T) {
	q := New()

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		item := q.AddSelectItem()
		assert.False(t, seen[item.ID], "id %q reused", item.ID)
		seen[item.ID] = true
	}
}

func TestRemove_ByID(t *testing.T) {
	q := New()
	a := q.AddSelectItem()
	b := q.AddSelectItem()
	c := q.AddSelectItem()

	// Take copies; removal shifts the backing array.
	aID, bID, cID := a.ID, b.ID, c.ID

	q.RemoveSelectItem(bID)
	require.Len(t, q.Select, 2)
	assert.Equal(t, aID, q.Select[0].ID, "removal preserves order")
	assert.Equal(t, cID, q.Select[1].ID)
}

func TestRemove_UnknownIDIsNoOp(t *testing.T) {
	q := New()
	q.AddSelectItem()
	q.AddFilterCondition()
	join := q.AddJoin()
	q.AddOnCondition(join.ID)
	joinID := join.ID

	before := q.Clone()

	q.RemoveSelectItem("missing")
	q.RemoveFilterCondition("missing")
	q.RemoveJoin("missing")
	q.RemoveOnCondition(joinID, "missing")
	q.RemoveOnCondition("missing-join", q.Joins[0].On[0].ID)

	assert.Equal(t, before, q, "unknown ids must not mutate the shape")
}

func TestRemoveOnCondition(t *testing.T) {
	q := New()
	join := q.AddJoin()
	joinID := join.ID
	first := q.AddOnCondition(joinID).ID
	second := q.AddOnCondition(joinID).ID

	q.RemoveOnCondition(joinID, first)

	require.Len(t, q.Joins[0].On, 1)
	assert.Equal(t, second, q.Joins[0].On[0].ID)
}

func TestRemoveJoin_DropsOnConditions(t *testing.T) {
	q := New()
	join := q.AddJoin()
	joinID := join.ID
	q.AddOnCondition(joinID)

	q.RemoveJoin(joinID)

	assert.Empty(t, q.Joins)
	// The id is gone for good; re-adding mints a fresh one.
	next := q.AddJoin()
	require.NotNil(t, next)
	assert.NotEqual(t, joinID, next.ID)
}

func TestAggregationUsed(t *testing.T) {
	tests := []struct {
		name       string
		aggregates []AggregateKind
		want       bool
	}{
		{"empty shape", nil, false},
		{"all bare", []AggregateKind{AggregateNone, AggregateNone}, false},
		{"one count", []AggregateKind{AggregateNone, AggregateCount}, true},
		{"count distinct only", []AggregateKind{AggregateCountDistinct}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New()
			for _, agg := range tt.aggregates {
				item := q.AddSelectItem()
				item.Aggregate = agg
			}
			assert.Equal(t, tt.want, q.AggregationUsed())
		})
	}
}

func TestAggregationUsed_IgnoresColumnResolution(t *testing.T) {
	// An aggregate on an item that never picked a column still switches the
	// shape into grouping mode; resolution happens later in the compiler.
	q := New()
	item := q.AddSelectItem()
	item.Aggregate = AggregateSum

	assert.True(t, q.AggregationUsed())
}

func TestClone_IsDeep(t *testing.T) {
	q := New()
	q.Table = "ORDERS"
	q.AddSelectItem().Column = `"ORDERS"."ID"`
	join := q.AddJoin()
	join.RightTable = "CUSTOMERS"
	q.AddOnCondition(join.ID)

	cp := q.Clone()
	require.Equal(t, q, cp)

	cp.Select[0].Column = `"ORDERS"."AMOUNT"`
	cp.Joins[0].On[0].LeftColumn = `"ORDERS"."CUSTOMER_ID"`
	cp.Table = "OTHER"

	assert.Equal(t, `"ORDERS"."ID"`, q.Select[0].Column)
	assert.Empty(t, q.Joins[0].On[0].LeftColumn)
	assert.Equal(t, "ORDERS", q.Table)
}

func TestKindValidation(t *testing.T) {
	assert.True(t, AggregateCountDistinct.Valid())
	assert.False(t, AggregateKind("median").Valid())

	assert.True(t, OpLikeStartsWith.Valid())
	assert.False(t, OperatorKind("between").Valid())

	assert.True(t, JoinLeft.Valid())
	assert.False(t, JoinKind("full").Valid())

	assert.True(t, LogicalOr.Valid())
	assert.False(t, LogicalOp("xor").Valid())
}

func TestOperatorNeedsValue(t *testing.T) {
	for _, op := range ValidOperators {
		want := op != OpIsNull && op != OpIsNotNull
		assert.Equal(t, want, op.NeedsValue(), "operator %s", op)
	}
}
