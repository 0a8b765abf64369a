package shapedef

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/quarry-dev/quarry/internal/shape"
	"github.com/quarry-dev/quarry/internal/sqlgen"
)

// Definition is one saved query: the target context plus the shape.
type Definition struct {
	Database string
	Schema   string
	Shape    *shape.QueryShape
}

// Target returns the compiler target the definition was saved against.
func (d *Definition) Target() sqlgen.Target {
	return sqlgen.Target{Database: d.Database, Schema: d.Schema, Table: d.Shape.Table}
}

// LoadFile reads a CUE definition file and compiles its query struct.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	queryVal := v.LookupPath(cue.ParsePath("query"))
	if !queryVal.Exists() {
		return nil, &CompileError{
			Field:   "query",
			Message: "definition file must declare a query struct",
			Pos:     v.Pos(),
		}
	}
	return CompileDefinition(queryVal)
}

// CompileDefinition parses a CUE value into a Definition.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the query struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`query: { database: "DEMO", ... }`)
//	def, err := CompileDefinition(v.LookupPath(cue.ParsePath("query")))
func CompileDefinition(v cue.Value) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &Definition{Shape: shape.New()}

	// Database and schema may be omitted; callers can supply them from
	// their own configuration. The table is the one field a definition
	// cannot do without.
	var err error
	if def.Database, err = optionalString(v, "database"); err != nil {
		return nil, err
	}
	if def.Schema, err = optionalString(v, "schema"); err != nil {
		return nil, err
	}
	if def.Shape.Table, err = requiredString(v, "table"); err != nil {
		return nil, err
	}

	if err := parseSelect(v, def.Shape); err != nil {
		return nil, err
	}
	if err := parseWhere(v, def.Shape); err != nil {
		return nil, err
	}
	if err := parseJoins(v, def.Shape); err != nil {
		return nil, err
	}

	return def, nil
}

func parseSelect(v cue.Value, q *shape.QueryShape) error {
	listVal := v.LookupPath(cue.ParsePath("select"))
	if !listVal.Exists() {
		return nil
	}

	iter, err := listVal.List()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		entry := iter.Value()
		item := q.AddSelectItem()

		if item.Column, err = requiredString(entry, "column"); err != nil {
			return err
		}
		agg, err := optionalString(entry, "aggregate")
		if err != nil {
			return err
		}
		if agg != "" {
			item.Aggregate = shape.AggregateKind(agg)
			if !item.Aggregate.Valid() {
				return &CompileError{
					Field:   "select.aggregate",
					Message: fmt.Sprintf("unknown aggregate %q", agg),
					Pos:     entry.Pos(),
				}
			}
		}
	}
	return nil
}

func parseWhere(v cue.Value, q *shape.QueryShape) error {
	listVal := v.LookupPath(cue.ParsePath("where"))
	if !listVal.Exists() {
		return nil
	}

	iter, err := listVal.List()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		entry := iter.Value()
		cond := q.AddFilterCondition()

		logical, err := optionalString(entry, "logical")
		if err != nil {
			return err
		}
		switch shape.LogicalOp(logical) {
		case shape.LogicalAnd, shape.LogicalOr:
			cond.Logical = shape.LogicalOp(logical)
		case "":
			// keep the AND default
		default:
			return &CompileError{
				Field:   "where.logical",
				Message: fmt.Sprintf("unknown logical operator %q", logical),
				Pos:     entry.Pos(),
			}
		}

		if cond.Column, err = requiredString(entry, "column"); err != nil {
			return err
		}

		op, err := requiredString(entry, "operator")
		if err != nil {
			return err
		}
		cond.Operator = shape.OperatorKind(op)
		if !cond.Operator.Valid() {
			return &CompileError{
				Field:   "where.operator",
				Message: fmt.Sprintf("unknown operator %q", op),
				Pos:     entry.Pos(),
			}
		}

		if cond.Value, err = optionalString(entry, "value"); err != nil {
			return err
		}
	}
	return nil
}

func parseJoins(v cue.Value, q *shape.QueryShape) error {
	listVal := v.LookupPath(cue.ParsePath("joins"))
	if !listVal.Exists() {
		return nil
	}

	iter, err := listVal.List()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		entry := iter.Value()
		join := q.AddJoin()
		if join == nil {
			return &CompileError{
				Field:   "joins",
				Message: fmt.Sprintf("at most %d joins are allowed", shape.MaxJoins),
				Pos:     entry.Pos(),
			}
		}

		kind, err := optionalString(entry, "kind")
		if err != nil {
			return err
		}
		switch shape.JoinKind(kind) {
		case shape.JoinInner, shape.JoinLeft:
			join.Kind = shape.JoinKind(kind)
		case "":
			// keep the INNER default
		default:
			return &CompileError{
				Field:   "joins.kind",
				Message: fmt.Sprintf("unknown join kind %q", kind),
				Pos:     entry.Pos(),
			}
		}

		if join.RightTable, err = requiredString(entry, "right_table"); err != nil {
			return err
		}

		onVal := entry.LookupPath(cue.ParsePath("on"))
		if !onVal.Exists() {
			continue
		}
		onIter, err := onVal.List()
		if err != nil {
			return formatCUEError(err)
		}
		for onIter.Next() {
			pairVal := onIter.Value()
			pair := q.AddOnCondition(join.ID)
			if pair.LeftColumn, err = requiredString(pairVal, "left"); err != nil {
				return err
			}
			if pair.RightColumn, err = requiredString(pairVal, "right"); err != nil {
				return err
			}
		}
	}
	return nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", nil
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError represents a definition error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
