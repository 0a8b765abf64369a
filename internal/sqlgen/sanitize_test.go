package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "ORDERS", "ORDERS"},
		{"underscore and digits", "order_items_2024", "order_items_2024"},
		{"quote survives", `"ORDERS"."ID"`, `"ORDERS"."ID"`},
		{"injection stripped", `abc"; DROP`, `abc"DROP`},
		{"spaces stripped", "my table", "mytable"},
		{"semicolons stripped", "t;--", "t"},
		{"unicode stripped", "注文テーブル", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeIdentifier(tt.input))
		})
	}
}

func TestValueRejected(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		rejected bool
	}{
		{"plain", "O'Brien", false},
		{"numeric", "100", false},
		{"classic injection", "a'; DROP TABLE x; --", true},
		{"line comment", "x -- y", true},
		{"block comment open", "x /* y", true},
		{"block comment close", "x */ y", true},
		{"trailing terminator", "value;", true},
		{"trailing terminator with space", "value; ", true},
		{"interior terminator allowed", "a;b", false},
		{"drop keyword", "please DROP this", true},
		{"lowercase delete", "delete everything", true},
		{"keyword inside word is fine", "dropship updated_at", false},
		{"update keyword", "UPDATE", true},
		{"insert keyword", "Insert", true},
		{"create keyword", "create", true},
		{"alter keyword", "ALTER", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rejected, valueRejected(tt.value))
		})
	}
}

func TestNumericLiteral(t *testing.T) {
	tests := []struct {
		value   string
		numeric bool
	}{
		{"100", true},
		{"-42", true},
		{"3.14", true},
		{"-0.5", true},
		{"", false},
		{"-", false},
		{"1.2.3", false},
		{"1e5", false},
		{"12a", false},
		{"--5", false},
		{"5-", false},
		// Sharp edge kept from the source semantics: phone-number-like and
		// zero-padded strings classify as numeric and are emitted unquoted.
		{"08012345678", true},
		{"007", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.numeric, numericLiteral(tt.value))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "100", formatValue("100"))
	assert.Equal(t, "-2.5", formatValue("-2.5"))
	assert.Equal(t, "'hello'", formatValue("hello"))
	assert.Equal(t, "'O''Brien'", formatValue("O'Brien"))
	assert.Equal(t, "''''''", formatValue("''"))
}

func TestEscapeValue_Normalizes(t *testing.T) {
	// e + combining acute composes to the same bytes as the precomposed
	// form, so recompiling a shape loaded from either form stays byte-identical.
	decomposed := "Cafe\u0301"
	precomposed := "Caf\u00e9"
	assert.Equal(t, escapeValue(precomposed), escapeValue(decomposed))
}
