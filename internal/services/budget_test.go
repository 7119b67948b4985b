package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func exp(date core.Date, category, amount string) core.Expense {
	return core.Expense{ID: core.NewID(), Date: date, Category: category, Amount: d(amount)}
}

func TestEvaluateBudgets(t *testing.T) {
	start, end := MonthBounds(core.NewDate(2024, 2, 10))
	categories := core.CategorySet{"Food", "Transport", "Fun"}
	budgets := core.BudgetMap{"Food": d("200"), "Transport": d("50")}
	expenses := []core.Expense{
		exp(core.NewDate(2024, 2, 1), "Food", "120.50"),
		exp(core.NewDate(2024, 2, 29), "Food", "29.50"),
		exp(core.NewDate(2024, 1, 31), "Food", "999"), // previous month
		exp(core.NewDate(2024, 3, 1), "Food", "999"),  // next month
		exp(core.NewDate(2024, 2, 14), "Transport", "80"),
		exp(core.NewDate(2024, 2, 14), "Gifts", "15"),
		exp(core.NewDate(2024, 2, 15), "Books", "7"),
	}

	got := EvaluateBudgets(expenses, categories, budgets, start, end)

	require.Len(t, got, 5)

	food := got[0]
	assert.Equal(t, "Food", food.Category)
	assert.True(t, food.Spent.Equal(d("150")))
	require.NotNil(t, food.Utilization)
	assert.True(t, food.Utilization.Equal(d("75")), food.Utilization.String())
	assert.False(t, food.OverBudget)

	transport := got[1]
	require.NotNil(t, transport.Utilization)
	assert.True(t, transport.Utilization.Equal(d("100")), "utilization is capped")
	assert.True(t, transport.OverBudget)
	assert.True(t, transport.Overage.Equal(d("30")))

	fun := got[2]
	assert.True(t, fun.Spent.IsZero())
	assert.Nil(t, fun.Utilization, "no budget means no utilization")
	assert.False(t, fun.OverBudget)

	assert.Equal(t, "Books", got[3].Category)
	assert.Equal(t, "Gifts", got[4].Category)
	assert.False(t, got[3].Known)
	assert.True(t, got[4].Spent.Equal(d("15")))
	assert.True(t, got[0].Known)
}

func TestEvaluateBudgets_ZeroBudgetNeverDivides(t *testing.T) {
	start, end := MonthBounds(core.NewDate(2024, 5, 1))
	got := EvaluateBudgets(
		[]core.Expense{exp(core.NewDate(2024, 5, 2), "Food", "10")},
		core.CategorySet{"Food"},
		core.BudgetMap{"Food": decimal.Zero},
		start, end,
	)

	require.Len(t, got, 1)
	assert.Nil(t, got[0].Utilization)
	assert.False(t, got[0].OverBudget)
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		today       core.Date
		first, last core.Date
	}{
		{core.NewDate(2024, 2, 10), core.NewDate(2024, 2, 1), core.NewDate(2024, 2, 29)},
		{core.NewDate(2023, 2, 28), core.NewDate(2023, 2, 1), core.NewDate(2023, 2, 28)},
		{core.NewDate(2024, 12, 31), core.NewDate(2024, 12, 1), core.NewDate(2024, 12, 31)},
	}
	for _, tt := range tests {
		first, last := MonthBounds(tt.today)
		assert.True(t, first.Equal(tt.first), "first of %s = %s", tt.today, first)
		assert.True(t, last.Equal(tt.last), "last of %s = %s", tt.today, last)
	}
}
