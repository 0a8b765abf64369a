// Package sqlgen is the clause compiler: pure functions that translate a
// query shape into one SQL SELECT statement.
//
// The compiler consumes a shape.QueryShape, the primary target
// (database/schema/table), and the set of qualified columns currently valid
// for the chosen tables. It produces UTF-8 SQL text using double-quote
// identifier quoting, single-quote string literals, and a trailing
// semicolon.
//
// BEST EFFORT, NEVER BROKEN:
//
// The compiler always prefers emitting some runnable statement over
// failing. Per-item problems - an item without a column, a column outside
// the valid set, a join without a complete ON pair, a value matching a
// dangerous pattern - drop just that fragment. The single hard failure is
// a missing primary context (CodeMissingContext): with no table to select
// from there is no statement to build.
//
// SAFETY:
//
// Identifiers are sanitized to [A-Za-z0-9_"] before interpolation. Literal
// values are screened for comment markers, trailing terminators, and
// destructive keywords, then single quotes are doubled. Values that look
// numeric are emitted unquoted; see the numericLiteral sharp edge note.
//
// Compile is deterministic: unchanged inputs yield byte-identical SQL.
package sqlgen
