package sqlgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/shape"
)

var testTarget = Target{Database: "DEMO", Schema: "SALES", Table: "ORDERS"}

func testColumns(cols ...string) ColumnSet {
	return NewColumnSet(cols)
}

func TestCompile_MissingContext(t *testing.T) {
	tests := []struct {
		name   string
		target Target
	}{
		{"no database", Target{Schema: "SALES", Table: "ORDERS"}},
		{"no schema", Target{Database: "DEMO", Table: "ORDERS"}},
		{"no table", Target{Database: "DEMO", Schema: "SALES"}},
		{"table sanitizes to empty", Target{Database: "DEMO", Schema: "SALES", Table: ";--"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := Compile(shape.New(), tt.target, nil)
			require.Error(t, err)
			assert.True(t, IsMissingContext(err))
			assert.Empty(t, sql, "no SQL on missing context")
		})
	}
}

func TestCompile_StarFallback(t *testing.T) {
	sql, err := Compile(shape.New(), testTarget, nil)
	require.NoError(t, err)

	assert.Equal(t, "SELECT\n    *\nFROM \"DEMO\".\"SALES\".\"ORDERS\";", sql)
}

func TestCompile_AlwaysSelectWithOneFrom(t *testing.T) {
	valid := testColumns(`"ORDERS"."ID"`, `"ORDERS"."STATUS"`)
	q := shape.New()
	q.AddSelectItem().Column = `"ORDERS"."ID"`
	q.AddSelectItem().Column = `"ORDERS"."STATUS"`

	sql, err := Compile(q, testTarget, valid)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "SELECT"))
	assert.Equal(t, 1, strings.Count(sql, "FROM"))
	assert.True(t, strings.HasSuffix(sql, ";"))
}

func TestCompile_UnselectedColumnSkipped(t *testing.T) {
	valid := testColumns(`"ORDERS"."ID"`)
	q := shape.New()
	q.AddSelectItem().Column = `"ORDERS"."ID"`
	q.AddSelectItem() // never picked a column
	item := q.AddSelectItem()
	item.Column = `"ORDERS"."GHOST"` // not in the valid set

	sql, err := Compile(q, testTarget, valid)
	require.NoError(t, err)

	assert.NotContains(t, sql, "GHOST")
	assert.Contains(t, sql, `"ORDERS"."ID"`)
}

func TestCompile_Aggregates(t *testing.T) {
	tests := []struct {
		agg  shape.AggregateKind
		want string
	}{
		{shape.AggregateCount, `COUNT("ORDERS"."ID")`},
		{shape.AggregateSum, `SUM("ORDERS"."ID")`},
		{shape.AggregateAvg, `AVG("ORDERS"."ID")`},
		{shape.AggregateMin, `MIN("ORDERS"."ID")`},
		{shape.AggregateMax, `MAX("ORDERS"."ID")`},
		{shape.AggregateCountDistinct, `COUNT(DISTINCT "ORDERS"."ID")`},
	}

	valid := testColumns(`"ORDERS"."ID"`)
	for _, tt := range tests {
		t.Run(string(tt.agg), func(t *testing.T) {
			q := shape.New()
			item := q.AddSelectItem()
			item.Column = `"ORDERS"."ID"`
			item.Aggregate = tt.agg

			sql, err := Compile(q, testTarget, valid)
			require.NoError(t, err)
			assert.Contains(t, sql, tt.want)
		})
	}
}

func TestCompile_GroupByInference(t *testing.T) {
	valid := testColumns("t.k", "t.v")

	t.Run("aggregate plus bare column infers GROUP BY", func(t *testing.T) {
		q := shape.New()
		q.AddSelectItem().Column = "t.k"
		item := q.AddSelectItem()
		item.Column = "t.v"
		item.Aggregate = shape.AggregateCount

		sql, err := Compile(q, testTarget, valid)
		require.NoError(t, err)
		assert.Contains(t, sql, "GROUP BY\n    t.k")
	})

	t.Run("no aggregates means no GROUP BY", func(t *testing.T) {
		q := shape.New()
		q.AddSelectItem().Column = "t.k"
		q.AddSelectItem().Column = "t.v"

		sql, err := Compile(q, testTarget, valid)
		require.NoError(t, err)
		assert.NotContains(t, sql, "GROUP BY")
	})

	t.Run("all aggregated means no GROUP BY", func(t *testing.T) {
		q := shape.New()
		item := q.AddSelectItem()
		item.Column = "t.k"
		item.Aggregate = shape.AggregateMax

		sql, err := Compile(q, testTarget, valid)
		require.NoError(t, err)
		assert.NotContains(t, sql, "GROUP BY")
	})
}

func TestCompile_DangerousValueDropped(t *testing.T) {
	valid := testColumns("t.c")
	q := shape.New()
	cond := q.AddFilterCondition()
	cond.Column = "t.c"
	cond.Value = "a'; DROP TABLE x; --"

	sql, err := Compile(q, testTarget, valid)
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
	assert.NotContains(t, sql, "DROP")
}

func TestCompile_QuoteDoubling(t *testing.T) {
	valid := testColumns("t.c")
	q := shape.New()
	cond := q.AddFilterCondition()
	cond.Column = "t.c"
	cond.Value = "O'Brien"

	sql, err := Compile(q, testTarget, valid)
	require.NoError(t, err)

	assert.Contains(t, sql, "t.c = 'O''Brien'")
}

func TestCompile_InSplitting(t *testing.T) {
	valid := testColumns("t.c")
	q := shape.New()
	cond := q.AddFilterCondition()
	cond.Column = "t.c"
	cond.Operator = shape.OpIn
	cond.Value = " A, B ,,C"

	sql, err := Compile(q, testTarget, valid)
	require.NoError(t, err)

	assert.Contains(t, sql, "t.c IN ('A', 'B', 'C')")
}

func TestCompile_InWithNoSegmentsOmitted(t *testing.T) {
	valid := testColumns("t.c")
	q := shape.New()
	cond := q.AddFilterCondition()
	cond.Column = "t.c"
	cond.Operator = shape.OpIn
	cond.Value = " , ,, "

	sql, err := Compile(q, testTarget, valid)
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
}

func TestCompile_LikeVariants(t *testing.T) {
	tests := []struct {
		op   shape.OperatorKind
		want string
	}{
		{shape.OpLikeContains, "t.c LIKE '%ship%'"},
		{shape.OpLikeStartsWith, "t.c LIKE 'ship%'"},
		{shape.OpLikeEndsWith, "t.c LIKE '%ship'"},
	}

	valid := testColumns("t.c")
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			q := shape.New()
			cond := q.AddFilterCondition()
			cond.Column = "t.c"
			cond.Operator = tt.op
			cond.Value = "ship"

			sql, err := Compile(q, testTarget, valid)
			require.NoError(t, err)
			assert.Contains(t, sql, tt.want)
		})
	}
}

func TestCompile_NullChecksNeedNoValue(t *testing.T) {
	valid := testColumns("t.c")
	q := shape.New()
	a := q.AddFilterCondition()
	a.Column = "t.c"
	a.Operator = shape.OpIsNull
	b := q.AddFilterCondition()
	b.Column = "t.c"
	b.Operator = shape.OpIsNotNull
	b.Logical = shape.LogicalOr

	sql, err := Compile(q, testTarget, valid)
	require.NoError(t, err)

	assert.Contains(t, sql, "t.c IS NULL")
	assert.Contains(t, sql, "OR t.c IS NOT NULL")
}

func TestCompile_EmptyValueDropped(t *testing.T) {
	valid := testColumns("t.c")
	q := shape.New()
	cond := q.AddFilterCondition()
	cond.Column = "t.c"
	// Operator defaults to Eq; value never entered.

	sql, err := Compile(q, testTarget, valid)
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
}

func TestCompile_FirstSurvivingConditionSuppressesLogical(t *testing.T) {
	valid := testColumns("t.a", "t.b")
	q := shape.New()
	dropped := q.AddFilterCondition()
	dropped.Column = "t.missing" // not valid, will be omitted
	dropped.Value = "x"
	kept := q.AddFilterCondition()
	kept.Column = "t.a"
	kept.Logical = shape.LogicalOr
	kept.Value = "1"

	sql, err := Compile(q, testTarget, valid)
	require.NoError(t, err)

	// The chain must not start with a dangling OR.
	assert.Contains(t, sql, "WHERE\n  t.a = 1")
	assert.NotContains(t, sql, "WHERE\n  OR")
}

func TestCompile_NumericValuesUnquoted(t *testing.T) {
	valid := testColumns("t.n")
	q := shape.New()
	cond := q.AddFilterCondition()
	cond.Column = "t.n"
	cond.Operator = shape.OpGt
	cond.Value = "100"

	sql, err := Compile(q, testTarget, valid)
	require.NoError(t, err)

	assert.Contains(t, sql, "t.n > 100")
	assert.NotContains(t, sql, "'100'")
}

func TestCompile_JoinEmission(t *testing.T) {
	valid := testColumns(
		`"ORDERS"."CUSTOMER_ID"`, `"CUSTOMERS"."ID"`, `"CUSTOMERS"."NAME"`,
	)

	q := shape.New()
	join := q.AddJoin()
	join.RightTable = "CUSTOMERS"
	on := q.AddOnCondition(join.ID)
	on.LeftColumn = `"ORDERS"."CUSTOMER_ID"`
	on.RightColumn = `"CUSTOMERS"."ID"`

	sql, err := Compile(q, testTarget, valid)
	require.NoError(t, err)

	assert.Contains(t, sql, "INNER JOIN \"DEMO\".\"SALES\".\"CUSTOMERS\"")
	assert.Contains(t, sql, "ON \"ORDERS\".\"CUSTOMER_ID\" = \"CUSTOMERS\".\"ID\"")
}

func TestCompile_JoinOnPairsAndCombined(t *testing.T) {
	valid := testColumns("o.a", "c.a", "o.b", "c.b")

	q := shape.New()
	join := q.AddJoin()
	join.RightTable = "CUSTOMERS"
	joinID := join.ID
	first := q.AddOnCondition(joinID)
	first.LeftColumn = "o.a"
	first.RightColumn = "c.a"
	second := q.AddOnCondition(joinID)
	second.LeftColumn = "o.b"
	second.RightColumn = "c.b"

	sql, err := Compile(q, testTarget, valid)
	require.NoError(t, err)

	assert.Contains(t, sql, "ON o.a = c.a AND o.b = c.b")
}

func TestCompile_IncompleteJoinOmitted(t *testing.T) {
	valid := testColumns("o.a", "c.a")

	t.Run("no right table", func(t *testing.T) {
		q := shape.New()
		join := q.AddJoin()
		on := q.AddOnCondition(join.ID)
		on.LeftColumn = "o.a"
		on.RightColumn = "c.a"

		sql, err := Compile(q, testTarget, valid)
		require.NoError(t, err)
		assert.NotContains(t, sql, "JOIN")
	})

	t.Run("no complete ON pair", func(t *testing.T) {
		q := shape.New()
		join := q.AddJoin()
		join.RightTable = "CUSTOMERS"
		on := q.AddOnCondition(join.ID)
		on.LeftColumn = "o.a" // right side never chosen

		sql, err := Compile(q, testTarget, valid)
		require.NoError(t, err)
		assert.NotContains(t, sql, "JOIN")
	})

	t.Run("right table sanitizes to empty", func(t *testing.T) {
		q := shape.New()
		join := q.AddJoin()
		join.RightTable = ";;"
		on := q.AddOnCondition(join.ID)
		on.LeftColumn = "o.a"
		on.RightColumn = "c.a"

		sql, err := Compile(q, testTarget, valid)
		require.NoError(t, err)
		assert.NotContains(t, sql, "JOIN")
	})
}

func TestCompile_Idempotent(t *testing.T) {
	valid := testColumns(`"ORDERS"."ID"`, `"ORDERS"."STATUS"`, `"ORDERS"."AMOUNT"`)

	q := shape.New()
	q.AddSelectItem().Column = `"ORDERS"."STATUS"`
	agg := q.AddSelectItem()
	agg.Column = `"ORDERS"."AMOUNT"`
	agg.Aggregate = shape.AggregateSum
	cond := q.AddFilterCondition()
	cond.Column = `"ORDERS"."ID"`
	cond.Operator = shape.OpGte
	cond.Value = "1000"

	first, err := Compile(q, testTarget, valid)
	require.NoError(t, err)
	second, err := Compile(q, testTarget, valid)
	require.NoError(t, err)

	assert.Equal(t, first, second, "unchanged inputs must recompile byte-identically")
}

func TestValidate_ReportsDroppedFragments(t *testing.T) {
	valid := testColumns("t.a")

	q := shape.New()
	q.AddSelectItem() // no column
	bad := q.AddFilterCondition()
	bad.Column = "t.a"
	bad.Value = "x; --"
	ghost := q.AddFilterCondition()
	ghost.Column = "t.ghost"
	ghost.Value = "1"

	res := Validate(q, testTarget, valid)

	assert.False(t, res.Clean)
	assert.NotEmpty(t, res.SQL)

	codes := map[WarnCode]int{}
	for _, w := range res.Warnings {
		codes[w.Code]++
	}
	assert.Equal(t, 1, codes[CodeIncompleteClauseItem])
	assert.Equal(t, 1, codes[CodeRejectedValue])
	assert.Equal(t, 1, codes[CodeUnresolvableIdentifier])
}

func TestValidate_MissingContextIsAWarning(t *testing.T) {
	res := Validate(shape.New(), Target{}, nil)

	assert.False(t, res.Clean)
	assert.Empty(t, res.SQL)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, CodeMissingContext, res.Warnings[len(res.Warnings)-1].Code)
}

func TestValidate_CleanShape(t *testing.T) {
	valid := testColumns("t.a")
	q := shape.New()
	q.AddSelectItem().Column = "t.a"

	res := Validate(q, testTarget, valid)

	assert.True(t, res.Clean)
	assert.Empty(t, res.Warnings)
}
