package services

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Filter selects ledger entries. Zero values disable a bound: a zero From
// or To leaves that side of the date range open, and a zero Max means no
// upper amount limit, so an upper limit of exactly zero cannot be expressed.
type Filter struct {
	From       core.Date
	To         core.Date
	Categories []string // expenses only; empty means all
	Min        decimal.Decimal
	Max        decimal.Decimal
}

func (f Filter) matchAmount(a decimal.Decimal) bool {
	if a.LessThan(f.Min) {
		return false
	}
	if !f.Max.IsZero() && a.GreaterThan(f.Max) {
		return false
	}
	return true
}

func (f Filter) matchCategory(c string) bool {
	if len(f.Categories) == 0 {
		return true
	}
	for _, want := range f.Categories {
		if want == c {
			return true
		}
	}
	return false
}

// FilterExpenses returns the entries matching f, in ledger order.
func FilterExpenses(entries []core.Expense, f Filter) []core.Expense {
	out := make([]core.Expense, 0, len(entries))
	for _, e := range entries {
		if e.Date.Between(f.From, f.To) && f.matchCategory(e.Category) && f.matchAmount(e.Amount) {
			out = append(out, e)
		}
	}
	return out
}

// FilterIncome returns the entries matching f's date and amount bounds.
// Categories do not apply to income.
func FilterIncome(entries []core.Income, f Filter) []core.Income {
	out := make([]core.Income, 0, len(entries))
	for _, i := range entries {
		if i.Date.Between(f.From, f.To) && f.matchAmount(i.Amount) {
			out = append(out, i)
		}
	}
	return out
}
