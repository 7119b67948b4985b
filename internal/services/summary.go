package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Summarize totals the given ledgers. ByCategory is sorted by amount,
// largest first, ties by name. Cashflow has one point per day that has at
// least one entry, in date order, with the running balance.
func Summarize(expenses []core.Expense, income []core.Income) core.Summary {
	var s core.Summary

	byCat := make(map[string]decimal.Decimal)
	// keyed by YYYY-MM-DD, which also sorts chronologically
	net := make(map[string]decimal.Decimal)

	for _, e := range expenses {
		s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
		byCat[e.Category] = byCat[e.Category].Add(e.Amount)
		net[e.Date.String()] = net[e.Date.String()].Sub(e.Amount)
	}
	for _, i := range income {
		s.TotalIncome = s.TotalIncome.Add(i.Amount)
		net[i.Date.String()] = net[i.Date.String()].Add(i.Amount)
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)

	s.ByCategory = make([]core.CategoryAmount, 0, len(byCat))
	for name, amt := range byCat {
		s.ByCategory = append(s.ByCategory, core.CategoryAmount{Name: name, Amount: amt})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		a, b := s.ByCategory[i], s.ByCategory[j]
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c > 0
		}
		return a.Name < b.Name
	})

	days := make([]string, 0, len(net))
	for d := range net {
		days = append(days, d)
	}
	sort.Strings(days)

	running := decimal.Zero
	s.Cashflow = make([]core.CashflowPoint, 0, len(days))
	for _, d := range days {
		date, _ := core.ParseDate(d)
		running = running.Add(net[d])
		s.Cashflow = append(s.Cashflow, core.CashflowPoint{Date: date, Net: net[d], Cumulative: running})
	}
	return s
}

// Balance is total income minus total expenses.
func Balance(expenses []core.Expense, income []core.Income) decimal.Decimal {
	total := decimal.Zero
	for _, i := range income {
		total = total.Add(i.Amount)
	}
	for _, e := range expenses {
		total = total.Sub(e.Amount)
	}
	return total
}
