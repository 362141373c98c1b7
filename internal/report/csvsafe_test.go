package report

import (
	"reflect"
	"testing"
)

func TestEscapeCSVCell(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// Safe values
		{"empty", "", ""},
		{"normal_text", "Cole Caufield", "Cole Caufield"},
		{"number", "123.45", "123.45"},
		{"safe_special", "#236", "#236"},
		{"internal_equal", "A=B", "A=B"},
		{"season", "2021-22 Upper Deck", "2021-22 Upper Deck"},

		// Formula injections
		{"formula_equal", "=SUM(A1:A10)", "'=SUM(A1:A10)"},
		{"formula_plus", "+123", "'+123"},
		{"formula_minus", "-123", "'-123"},
		{"formula_at", "@SUM(A:A)", "'@SUM(A:A)"},
		{"formula_pipe", "|echo test", "'|echo test"},
		{"formula_percent", "%PATH%", "'%PATH%"},

		// Whitespace injections
		{"tab_start", "\t=EXEC()", "'\t=EXEC()"},
		{"newline_start", "\n=FORMULA()", "'\n=FORMULA()"},
		{"carriage_return", "\r=DATA()", "'\r=DATA()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EscapeCSVCell(tt.input)
			if result != tt.expected {
				t.Errorf("EscapeCSVCell(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestEscapeCSVRow(t *testing.T) {
	input := []string{"Charizard", "=HYPERLINK(\"x\")", "4", "@Holo"}
	expected := []string{"Charizard", "'=HYPERLINK(\"x\")", "4", "'@Holo"}

	if result := EscapeCSVRow(input); !reflect.DeepEqual(result, expected) {
		t.Errorf("EscapeCSVRow() = %v, want %v", result, expected)
	}
}
