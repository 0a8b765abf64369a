// Package runner executes a finished SQL statement against a live
// database and returns a small tabular preview.
//
// The runner never inspects or rewrites the statement beyond the row cap:
// it strips a trailing terminator, appends a LIMIT clause, and hands the
// text to the driver unchanged. Statement safety is the clause compiler's
// responsibility.
package runner

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultRowLimit caps preview result sets. Ten rows is enough to judge
// whether a generated query selects the right data.
const DefaultRowLimit = 10

// Result is one executed preview: column names plus stringified rows.
type Result struct {
	Columns []string
	Rows    [][]string

	// Elapsed is the wall-clock execution time, for display only.
	Elapsed time.Duration
}

// Runner executes statements on one database connection.
type Runner struct {
	db  *sql.DB
	log *slog.Logger
}

// New creates a runner over an open connection. A nil logger falls back to
// slog's default.
func New(db *sql.DB, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{db: db, log: log}
}

// ApplyRowLimit rewrites a terminated statement into its row-capped
// execution form: the trailing terminator is stripped and a LIMIT clause
// appended. A non-positive limit falls back to DefaultRowLimit.
func ApplyRowLimit(sqlText string, limit int) string {
	if limit <= 0 {
		limit = DefaultRowLimit
	}
	trimmed := strings.TrimSuffix(strings.TrimSpace(sqlText), ";")
	return fmt.Sprintf("%s LIMIT %d;", trimmed, limit)
}

// StripDatabaseQualifier rewrites three-part table references for engines
// whose connections are already scoped to one database: every `"db".`
// prefix is removed, leaving schema-qualified names the connection can
// resolve.
func StripDatabaseQualifier(sqlText, database string) string {
	if database == "" {
		return sqlText
	}
	return strings.ReplaceAll(sqlText, `"`+database+`".`, "")
}

// Execute runs the statement with the row cap applied and collects the
// full (capped) result set. Driver and database failures are logged and
// returned wrapped; they are never fatal to the surrounding session.
func (r *Runner) Execute(ctx context.Context, sqlText string, limit int) (*Result, error) {
	capped := ApplyRowLimit(sqlText, limit)

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, capped)
	if err != nil {
		r.log.Error("query execution failed", "error", err)
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading result columns: %w", err)
	}

	result := &Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		result.Rows = append(result.Rows, renderRow(values))
	}
	if err := rows.Err(); err != nil {
		r.log.Error("result iteration failed", "error", err)
		return nil, fmt.Errorf("reading results: %w", err)
	}

	result.Elapsed = time.Since(start)
	r.log.Debug("query executed", "rows", len(result.Rows), "elapsed", result.Elapsed)
	return result, nil
}

// renderRow stringifies driver values for display. NULL renders as the
// literal NULL so it is distinguishable from an empty string.
func renderRow(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case nil:
			out[i] = "NULL"
		case []byte:
			out[i] = string(val)
		case time.Time:
			out[i] = val.Format(time.RFC3339)
		default:
			out[i] = fmt.Sprintf("%v", val)
		}
	}
	return out
}
