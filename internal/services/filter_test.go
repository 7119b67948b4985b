package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"fintrack/internal/core"
)

func TestFilterExpenses(t *testing.T) {
	entries := []core.Expense{
		exp(core.NewDate(2024, 1, 1), "Food", "5"),
		exp(core.NewDate(2024, 1, 15), "Transport", "50"),
		exp(core.NewDate(2024, 1, 31), "Food", "500"),
		exp(core.NewDate(2024, 2, 1), "Fun", "0"),
	}

	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{"zero filter keeps all", Filter{}, []int{0, 1, 2, 3}},
		{"inclusive dates", Filter{From: core.NewDate(2024, 1, 1), To: core.NewDate(2024, 1, 31)}, []int{0, 1, 2}},
		{"open start", Filter{To: core.NewDate(2024, 1, 15)}, []int{0, 1}},
		{"open end", Filter{From: core.NewDate(2024, 1, 15)}, []int{1, 2, 3}},
		{"category subset", Filter{Categories: []string{"Food", "Fun"}}, []int{0, 2, 3}},
		{"min inclusive", Filter{Min: d("50")}, []int{1, 2}},
		{"max inclusive", Filter{Max: d("50")}, []int{0, 1, 3}},
		{"max zero is unbounded", Filter{Min: d("1"), Max: decimal.Zero}, []int{0, 1, 2}},
		{"combined", Filter{From: core.NewDate(2024, 1, 2), Categories: []string{"Food"}, Max: d("1000")}, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterExpenses(entries, tt.filter)
			want := make([]core.Expense, 0, len(tt.want))
			for _, i := range tt.want {
				want = append(want, entries[i])
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestFilterIncome_IgnoresCategories(t *testing.T) {
	entries := []core.Income{
		{ID: "a", Date: core.NewDate(2024, 1, 1), Source: "Salary", Amount: d("1000")},
		{ID: "b", Date: core.NewDate(2024, 2, 1), Source: "Gift", Amount: d("20")},
	}

	got := FilterIncome(entries, Filter{Categories: []string{"Food"}, From: core.NewDate(2024, 1, 15), Max: decimal.Zero})

	assert.Equal(t, []core.Income{entries[1]}, got)

	got = FilterIncome(entries, Filter{Min: d("100")})
	assert.Equal(t, []core.Income{entries[0]}, got)
}
