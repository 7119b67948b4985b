package google

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

func TestParseColumn(t *testing.T) {
	values := [][]any{
		{"Food"},
		{"Transport"},
		{""},          // empty
		{"#Comment"},  // comment
		{" Food "},    // duplicate after trim
		{},            // empty row
		{"Shopping", "ignored"},
	}

	got := parseColumn(values)
	want := []string{"Food", "Transport", "Shopping"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseColumn() = %v, want %v", got, want)
	}
}

func TestRowValues(t *testing.T) {
	r := ports.Row{
		EntryID:     "e-1",
		Kind:        core.KindExpense,
		Date:        core.NewDate(2025, 3, 15),
		Label:       "Utilities",
		Description: "internet",
		Amount:      decimal.RequireFromString("29.9"),
	}

	got := rowValues(r)
	want := []any{"2025-03-15", "Utilities", "internet", "29.90", "expense", "e-1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rowValues() = %v, want %v", got, want)
	}
}
