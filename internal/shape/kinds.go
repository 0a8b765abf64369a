package shape

// AggregateKind selects the aggregate function applied to an output item.
// AggregateNone means the column is emitted bare and becomes a GROUP BY
// candidate whenever any other item in the shape aggregates.
type AggregateKind string

const (
	AggregateNone          AggregateKind = "none"
	AggregateCount         AggregateKind = "count"
	AggregateSum           AggregateKind = "sum"
	AggregateAvg           AggregateKind = "avg"
	AggregateMin           AggregateKind = "min"
	AggregateMax           AggregateKind = "max"
	AggregateCountDistinct AggregateKind = "count_distinct"
)

// ValidAggregates lists every accepted aggregate kind, in display order.
var ValidAggregates = []AggregateKind{
	AggregateNone,
	AggregateCount,
	AggregateSum,
	AggregateAvg,
	AggregateMin,
	AggregateMax,
	AggregateCountDistinct,
}

// Valid reports whether k is one of the defined aggregate kinds.
func (k AggregateKind) Valid() bool {
	for _, v := range ValidAggregates {
		if k == v {
			return true
		}
	}
	return false
}

// OperatorKind selects the comparison operator of a filter condition.
type OperatorKind string

const (
	OpEq             OperatorKind = "eq"
	OpNeq            OperatorKind = "neq"
	OpGt             OperatorKind = "gt"
	OpGte            OperatorKind = "gte"
	OpLt             OperatorKind = "lt"
	OpLte            OperatorKind = "lte"
	OpLikeContains   OperatorKind = "like_contains"
	OpLikeStartsWith OperatorKind = "like_starts_with"
	OpLikeEndsWith   OperatorKind = "like_ends_with"
	OpIn             OperatorKind = "in"
	OpIsNull         OperatorKind = "is_null"
	OpIsNotNull      OperatorKind = "is_not_null"
)

// ValidOperators lists every accepted operator kind, in display order.
var ValidOperators = []OperatorKind{
	OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte,
	OpLikeContains, OpLikeStartsWith, OpLikeEndsWith,
	OpIn, OpIsNull, OpIsNotNull,
}

// Valid reports whether k is one of the defined operator kinds.
func (k OperatorKind) Valid() bool {
	for _, v := range ValidOperators {
		if k == v {
			return true
		}
	}
	return false
}

// NeedsValue reports whether the operator requires a comparison value.
// Only the null checks are complete without one.
func (k OperatorKind) NeedsValue() bool {
	return k != OpIsNull && k != OpIsNotNull
}

// JoinKind selects how a joined table combines with the tables before it.
// Only inner and left joins are offered; the builder targets beginners and
// right/full joins are expressible by reordering instead.
type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
)

// Valid reports whether k is one of the defined join kinds.
func (k JoinKind) Valid() bool {
	return k == JoinInner || k == JoinLeft
}

// LogicalOp chains a filter condition to the condition before it.
// The first emitted condition's LogicalOp is ignored.
type LogicalOp string

const (
	LogicalAnd LogicalOp = "and"
	LogicalOr  LogicalOp = "or"
)

// Valid reports whether op is one of the defined logical operators.
func (op LogicalOp) Valid() bool {
	return op == LogicalAnd || op == LogicalOr
}
