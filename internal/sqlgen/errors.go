package sqlgen

import (
	"errors"
	"fmt"
)

// WarnCode categorizes why a fragment of the shape was dropped, or why the
// whole compilation failed.
type WarnCode string

const (
	// CodeMissingContext indicates no primary database, schema, or table
	// resolved. This is the only statement-level failure: without a primary
	// table there is nothing to select from.
	CodeMissingContext WarnCode = "MISSING_CONTEXT"

	// CodeUnresolvableIdentifier indicates an identifier sanitized to empty,
	// so the object it names was treated as unselected.
	CodeUnresolvableIdentifier WarnCode = "UNRESOLVABLE_IDENTIFIER"

	// CodeRejectedValue indicates a filter value matched a dangerous SQL
	// pattern and its condition was dropped.
	CodeRejectedValue WarnCode = "REJECTED_VALUE"

	// CodeIncompleteClauseItem indicates a select item, filter condition,
	// join, or ON pair was missing a required part and was dropped.
	CodeIncompleteClauseItem WarnCode = "INCOMPLETE_CLAUSE_ITEM"
)

// Warning records one fragment the compiler silently omitted. Warnings are
// diagnostics for the surrounding UI; they never block compilation.
type Warning struct {
	Code    WarnCode
	ItemID  string // id of the shape entry that was dropped, if any
	Message string
}

func (w Warning) String() string {
	if w.ItemID != "" {
		return fmt.Sprintf("%s: %s (item=%s)", w.Code, w.Message, w.ItemID)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// CompileError is the statement-level failure returned by Compile. Per-item
// problems are absorbed as Warnings instead; only a missing primary context
// aborts compilation outright.
type CompileError struct {
	Code    WarnCode
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsMissingContext reports whether err is a missing-context compile failure.
// Uses errors.As to handle wrapped errors.
func IsMissingContext(err error) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == CodeMissingContext
	}
	return false
}
