package sqlgen

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SanitizeIdentifier strips every rune outside [A-Za-z0-9_] and the double
// quote from a database object name. The quote survives because qualified
// column references ("table"."column") pass through here intact; everything
// else that could terminate or extend a statement is removed.
//
// An identifier that sanitizes to empty means "no selection" - callers drop
// the object it names and everything derived from it.
func SanitizeIdentifier(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '"':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// qualifyTable renders a fully qualified, quoted table reference from
// already-sanitized parts.
func qualifyTable(db, schema, table string) string {
	return `"` + db + `"."` + schema + `"."` + table + `"`
}

// dangerousKeyword matches DDL/DML keywords appearing as standalone tokens.
// Case-insensitive; \b keeps "dropship" or "updated_at" from matching.
var dangerousKeyword = regexp.MustCompile(`(?i)\b(drop|delete|update|insert|create|alter)\b`)

// valueRejected reports whether a literal value must not reach the
// generated statement. Rejection drops the owning condition entirely; there
// is no attempt to repair the value.
//
// Rejected patterns: SQL line comments, block comment markers, a trailing
// statement terminator, and the destructive keywords as standalone tokens.
func valueRejected(v string) bool {
	if strings.Contains(v, "--") {
		return true
	}
	if strings.Contains(v, "/*") || strings.Contains(v, "*/") {
		return true
	}
	if strings.HasSuffix(strings.TrimSpace(v), ";") {
		return true
	}
	return dangerousKeyword.MatchString(v)
}

// escapeValue normalizes a literal to NFC and doubles every single quote.
// NFC first: two visually identical inputs in different normalization forms
// would otherwise recompile to different bytes and break statement
// idempotence.
func escapeValue(v string) string {
	return strings.ReplaceAll(norm.NFC.String(v), "'", "''")
}

// numericLiteral reports whether v consists solely of digits with an
// optional single leading minus sign and at most one decimal point. Such
// values are emitted unquoted.
//
// Known sharp edge, kept on purpose: phone-number-like strings and
// zero-padded codes ("08012345678", "007") classify as numeric and lose
// their leading zeros server-side. The interactive layer warns about this;
// the compiler preserves the classification.
func numericLiteral(v string) bool {
	if v == "" {
		return false
	}
	rest := strings.TrimPrefix(v, "-")
	if rest == "" {
		return false
	}
	digits := 0
	dots := 0
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}

// formatValue renders a literal for direct interpolation: unquoted when it
// classifies as numeric, otherwise escaped and single-quoted.
func formatValue(v string) string {
	if numericLiteral(v) {
		return v
	}
	return "'" + escapeValue(v) + "'"
}
