package sqlgen

import (
	"fmt"
	"strings"

	"github.com/quarry-dev/quarry/internal/shape"
)

// Target names the primary table a statement selects from.
type Target struct {
	Database string
	Schema   string
	Table    string
}

// ColumnSet is the set of qualified column references currently valid for
// the chosen tables. Shape entries referencing a column outside this set
// contribute nothing to the statement.
type ColumnSet map[string]struct{}

// NewColumnSet builds a ColumnSet from the catalog's qualified column list.
func NewColumnSet(cols []string) ColumnSet {
	s := make(ColumnSet, len(cols))
	for _, c := range cols {
		s[c] = struct{}{}
	}
	return s
}

// Contains reports whether col is a valid qualified column reference.
func (s ColumnSet) Contains(col string) bool {
	_, ok := s[col]
	return ok
}

// Compile translates a query shape into one SQL SELECT statement.
//
// Compile is pure and deterministic: the same shape, target, and column set
// always produce byte-identical SQL. It performs no I/O and never mutates
// the shape.
//
// Per-item problems (unselected columns, rejected values, incomplete joins)
// are absorbed silently - the offending fragment is omitted and a
// best-effort statement is still produced. The only hard failure is a
// missing primary context: no database, schema, or table to select from.
func Compile(q *shape.QueryShape, target Target, valid ColumnSet) (string, error) {
	sql, _, err := compile(q, target, valid)
	return sql, err
}

// Validate dry-runs compilation and reports every fragment that would be
// dropped, with the reason. The interactive layer surfaces these so a user
// can see why a condition vanished from the preview.
type ValidationResult struct {
	// SQL is the statement that would be produced, empty on hard failure.
	SQL string

	// Clean is true when nothing was dropped.
	Clean bool

	// Warnings lists the dropped fragments. Empty when Clean.
	Warnings []Warning
}

// Validate compiles the shape and collects omission diagnostics.
// A missing primary context is reported as a warning here, not an error:
// validation is advisory and never fails.
func Validate(q *shape.QueryShape, target Target, valid ColumnSet) ValidationResult {
	sql, warns, err := compile(q, target, valid)
	if err != nil {
		warns = append(warns, Warning{Code: CodeMissingContext, Message: err.Error()})
	}
	return ValidationResult{
		SQL:      sql,
		Clean:    len(warns) == 0,
		Warnings: warns,
	}
}

// compile is the shared worker behind Compile and Validate.
func compile(q *shape.QueryShape, target Target, valid ColumnSet) (string, []Warning, error) {
	var warns []Warning
	warn := func(code WarnCode, itemID, format string, args ...any) {
		warns = append(warns, Warning{Code: code, ItemID: itemID, Message: fmt.Sprintf(format, args...)})
	}

	db := SanitizeIdentifier(target.Database)
	schemaName := SanitizeIdentifier(target.Schema)
	table := SanitizeIdentifier(target.Table)
	if db == "" || schemaName == "" || table == "" {
		return "", warns, &CompileError{
			Code:    CodeMissingContext,
			Message: "no primary database, schema, and table selected",
		}
	}

	selectClause, groupBy := buildSelect(q, valid, warn)
	fromClause := buildFrom(q, db, schemaName, table, valid, warn)
	whereClause := buildWhere(q, valid, warn)

	var b strings.Builder
	b.WriteString("SELECT\n    ")
	b.WriteString(selectClause)
	b.WriteString("\n")
	b.WriteString(fromClause)
	if whereClause != "" {
		b.WriteString("\nWHERE\n  ")
		b.WriteString(whereClause)
	}
	if q.AggregationUsed() && len(groupBy) > 0 {
		b.WriteString("\nGROUP BY\n    ")
		b.WriteString(strings.Join(groupBy, ", "))
	}
	b.WriteString(";")

	return b.String(), warns, nil
}

// buildSelect renders the output list and collects GROUP BY candidates.
// Bare columns double as grouping keys; the caller only emits GROUP BY when
// the shape aggregates somewhere.
func buildSelect(q *shape.QueryShape, valid ColumnSet, warn warnFunc) (string, []string) {
	var parts []string
	var groupBy []string

	for _, item := range q.Select {
		if item.Column == "" {
			warn(CodeIncompleteClauseItem, item.ID, "select item has no column")
			continue
		}
		if !valid.Contains(item.Column) {
			warn(CodeUnresolvableIdentifier, item.ID, "column %s is not valid for the chosen tables", item.Column)
			continue
		}
		switch item.Aggregate {
		case shape.AggregateNone:
			parts = append(parts, item.Column)
			groupBy = append(groupBy, item.Column)
		case shape.AggregateCountDistinct:
			parts = append(parts, fmt.Sprintf("COUNT(DISTINCT %s)", item.Column))
		default:
			parts = append(parts, fmt.Sprintf("%s(%s)", aggregateKeyword(item.Aggregate), item.Column))
		}
	}

	if len(parts) == 0 {
		return "*", nil
	}
	return strings.Join(parts, ",\n    "), groupBy
}

// buildFrom renders the FROM clause plus every join that resolves. A join
// missing its right table or lacking a single complete ON pair is omitted
// entirely rather than producing a dangling JOIN.
func buildFrom(q *shape.QueryShape, db, schemaName, table string, valid ColumnSet, warn warnFunc) string {
	var b strings.Builder
	b.WriteString("FROM ")
	b.WriteString(qualifyTable(db, schemaName, table))

	for _, join := range q.Joins {
		right := SanitizeIdentifier(join.RightTable)
		if right == "" {
			if join.RightTable != "" {
				warn(CodeUnresolvableIdentifier, join.ID, "join table %q sanitized to empty", join.RightTable)
			} else {
				warn(CodeIncompleteClauseItem, join.ID, "join has no right table")
			}
			continue
		}

		var onParts []string
		for _, on := range join.On {
			if on.LeftColumn == "" || on.RightColumn == "" {
				warn(CodeIncompleteClauseItem, on.ID, "ON condition is missing a column")
				continue
			}
			if !valid.Contains(on.LeftColumn) || !valid.Contains(on.RightColumn) {
				warn(CodeUnresolvableIdentifier, on.ID, "ON condition references an unknown column")
				continue
			}
			onParts = append(onParts, fmt.Sprintf("%s = %s", on.LeftColumn, on.RightColumn))
		}
		if len(onParts) == 0 {
			warn(CodeIncompleteClauseItem, join.ID, "join has no complete ON condition")
			continue
		}

		b.WriteString("\n  ")
		b.WriteString(joinKeyword(join.Kind))
		b.WriteString(" ")
		b.WriteString(qualifyTable(db, schemaName, right))
		b.WriteString("\n    ON ")
		// ON pairs within one join are always AND-combined; OR between join
		// conditions is not representable in the shape.
		b.WriteString(strings.Join(onParts, " AND "))
	}

	return b.String()
}

// buildWhere renders the flat AND/OR chain. The logical keyword of the
// first surviving condition is suppressed so a dropped leading condition
// can never leave the clause starting with AND.
func buildWhere(q *shape.QueryShape, valid ColumnSet, warn warnFunc) string {
	var parts []string

	for _, cond := range q.Filters {
		pred, ok := buildPredicate(cond, valid, warn)
		if !ok {
			continue
		}
		if len(parts) == 0 {
			parts = append(parts, pred)
		} else {
			parts = append(parts, logicalKeyword(cond.Logical)+" "+pred)
		}
	}

	return strings.Join(parts, "\n  ")
}

// buildPredicate renders one filter condition, or reports why it was
// dropped.
func buildPredicate(cond shape.FilterCondition, valid ColumnSet, warn warnFunc) (string, bool) {
	if cond.Column == "" {
		warn(CodeIncompleteClauseItem, cond.ID, "condition has no column")
		return "", false
	}
	if !valid.Contains(cond.Column) {
		warn(CodeUnresolvableIdentifier, cond.ID, "column %s is not valid for the chosen tables", cond.Column)
		return "", false
	}

	if cond.Operator.NeedsValue() {
		if cond.Value == "" {
			warn(CodeIncompleteClauseItem, cond.ID, "operator %s requires a value", cond.Operator)
			return "", false
		}
		if valueRejected(cond.Value) {
			warn(CodeRejectedValue, cond.ID, "value matches a dangerous SQL pattern")
			return "", false
		}
	}

	switch cond.Operator {
	case shape.OpIsNull:
		return cond.Column + " IS NULL", true
	case shape.OpIsNotNull:
		return cond.Column + " IS NOT NULL", true
	case shape.OpIn:
		return buildInPredicate(cond, warn)
	case shape.OpLikeContains:
		return fmt.Sprintf("%s LIKE '%%%s%%'", cond.Column, escapeValue(cond.Value)), true
	case shape.OpLikeStartsWith:
		return fmt.Sprintf("%s LIKE '%s%%'", cond.Column, escapeValue(cond.Value)), true
	case shape.OpLikeEndsWith:
		return fmt.Sprintf("%s LIKE '%%%s'", cond.Column, escapeValue(cond.Value)), true
	case shape.OpEq, shape.OpNeq, shape.OpGt, shape.OpGte, shape.OpLt, shape.OpLte:
		return fmt.Sprintf("%s %s %s", cond.Column, comparisonKeyword(cond.Operator), formatValue(cond.Value)), true
	default:
		warn(CodeIncompleteClauseItem, cond.ID, "unknown operator %q", cond.Operator)
		return "", false
	}
}

// buildInPredicate splits the value on commas, trims whitespace, drops
// empty segments, and quotes each survivor. Zero survivors omit the whole
// condition.
func buildInPredicate(cond shape.FilterCondition, warn warnFunc) (string, bool) {
	var items []string
	for _, seg := range strings.Split(cond.Value, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		items = append(items, "'"+escapeValue(seg)+"'")
	}
	if len(items) == 0 {
		warn(CodeIncompleteClauseItem, cond.ID, "IN list has no usable segments")
		return "", false
	}
	return fmt.Sprintf("%s IN (%s)", cond.Column, strings.Join(items, ", ")), true
}

type warnFunc func(code WarnCode, itemID, format string, args ...any)

// aggregateKeyword maps an aggregate kind to its SQL function name.
// CountDistinct is handled separately by buildSelect.
func aggregateKeyword(k shape.AggregateKind) string {
	switch k {
	case shape.AggregateCount:
		return "COUNT"
	case shape.AggregateSum:
		return "SUM"
	case shape.AggregateAvg:
		return "AVG"
	case shape.AggregateMin:
		return "MIN"
	case shape.AggregateMax:
		return "MAX"
	default:
		return "COUNT"
	}
}

// comparisonKeyword maps a comparison operator to its SQL symbol.
func comparisonKeyword(k shape.OperatorKind) string {
	switch k {
	case shape.OpEq:
		return "="
	case shape.OpNeq:
		return "!="
	case shape.OpGt:
		return ">"
	case shape.OpGte:
		return ">="
	case shape.OpLt:
		return "<"
	case shape.OpLte:
		return "<="
	default:
		return "="
	}
}

// joinKeyword maps a join kind to its SQL keyword.
func joinKeyword(k shape.JoinKind) string {
	if k == shape.JoinLeft {
		return "LEFT JOIN"
	}
	return "INNER JOIN"
}

// logicalKeyword maps a logical operator to its SQL keyword.
func logicalKeyword(op shape.LogicalOp) string {
	if op == shape.LogicalOr {
		return "OR"
	}
	return "AND"
}
