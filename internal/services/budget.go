package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var hundred = decimal.NewFromInt(100)

// BudgetStatus is the month-to-date position of one category.
type BudgetStatus struct {
	Category string
	Spent    decimal.Decimal
	Budget   decimal.Decimal
	// Utilization is spent as a percentage of budget, capped at 100. It is
	// nil when no budget is set (budget <= 0).
	Utilization *decimal.Decimal
	OverBudget  bool
	Overage     decimal.Decimal
	// Known is false for categories that appear in expenses but not in the
	// category set.
	Known bool
}

// EvaluateBudgets sums expenses dated within [monthStart, monthEnd] by
// category and compares them with budgets. Every category of the set is
// reported, in set order, followed by unknown categories sorted by name.
func EvaluateBudgets(expenses []core.Expense, categories core.CategorySet, budgets core.BudgetMap, monthStart, monthEnd core.Date) []BudgetStatus {
	spent := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		if !e.Date.Between(monthStart, monthEnd) {
			continue
		}
		spent[e.Category] = spent[e.Category].Add(e.Amount)
	}

	out := make([]BudgetStatus, 0, len(categories)+len(spent))
	for _, c := range categories {
		out = append(out, budgetStatus(c, spent[c], budgets.Get(c), true))
	}

	var unknown []string
	for c := range spent {
		if !categories.Contains(c) {
			unknown = append(unknown, c)
		}
	}
	sort.Strings(unknown)
	for _, c := range unknown {
		out = append(out, budgetStatus(c, spent[c], budgets.Get(c), false))
	}
	return out
}

func budgetStatus(category string, spent, budget decimal.Decimal, known bool) BudgetStatus {
	st := BudgetStatus{
		Category: category,
		Spent:    spent,
		Budget:   budget,
		Known:    known,
	}
	if !budget.IsPositive() {
		return st
	}
	pct := decimal.Min(hundred, spent.Mul(hundred).Div(budget))
	st.Utilization = &pct
	if spent.GreaterThan(budget) {
		st.OverBudget = true
		st.Overage = spent.Sub(budget)
	}
	return st
}

// MonthBounds returns the first and last day of today's month.
func MonthBounds(today core.Date) (core.Date, core.Date) {
	first := core.NewDate(today.Year(), today.Month(), 1)
	last := core.NewDate(today.Year(), today.Month(), core.DaysIn(today.Year(), today.Time.Month()))
	return first, last
}
