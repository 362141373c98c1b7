package report

import "strings"

// formulaPrefixes are leading characters spreadsheets treat as a formula
// or control sequence.
const formulaPrefixes = "=+-@|%\t\r\n"

// EscapeCSVCell protects against CSV formula injection by prefixing risky
// cells with a single quote
func EscapeCSVCell(value string) string {
	if value == "" || !strings.ContainsRune(formulaPrefixes, rune(value[0])) {
		return value
	}
	return "'" + value
}

// EscapeCSVRow escapes all cells in a row
func EscapeCSVRow(row []string) []string {
	escaped := make([]string, len(row))
	for i, cell := range row {
		escaped[i] = EscapeCSVCell(cell)
	}
	return escaped
}
