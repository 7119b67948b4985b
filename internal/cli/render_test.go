package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decs(vals ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func TestRenderSparkline(t *testing.T) {
	assert.Equal(t, "", RenderSparkline(nil))
	assert.Equal(t, "▁▁▁", RenderSparkline(decs(5, 5, 5)), "flat series")
	assert.Equal(t, "▁█", RenderSparkline(decs(0, 10)))
	assert.Equal(t, "▁▄█", RenderSparkline(decs(-100, 0, 100)), "negatives are shifted")
}

func TestRenderUtilizationBar(t *testing.T) {
	half := decimal.NewFromInt(50)
	full := decimal.NewFromInt(100)

	assert.Equal(t, 10, lipgloss.Width(RenderUtilizationBar(nil, false, 10)))
	assert.Equal(t, 5, strings.Count(RenderUtilizationBar(&half, false, 10), "█"))
	assert.Equal(t, 10, strings.Count(RenderUtilizationBar(&full, true, 10), "█"))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Expenses",
		Headers: []string{"Category", "Amount"},
		Rows: [][]string{
			{"Food", "12.50"},
			{"Transport", "3.20"},
			SeparatorRow,
			{"Total", "15.70"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 9)
	assert.Contains(t, lines[0], "Expenses")

	width := lipgloss.Width(lines[1])
	for i, l := range lines[1:] {
		assert.Equal(t, width, lipgloss.Width(l), "line %d is aligned", i+1)
	}
	assert.Contains(t, out, "│ Transport │   3.20 │", "amount column right-aligned by default")
	assert.True(t, strings.HasPrefix(lines[6], "├"), "separator row is a rule")
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Equal(t, "", RenderTable(Table{}))
}
