package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// CashflowPoint is the net movement of one day and the running balance
// up to and including that day.
type CashflowPoint struct {
	Date       Date
	Net        decimal.Decimal
	Cumulative decimal.Decimal
}

// Summary is the overview of a (usually filtered) pair of ledgers.
type Summary struct {
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal
	ByCategory    []CategoryAmount
	Cashflow      []CashflowPoint
}

// Warning describes a record that was skipped without aborting the batch.
type Warning struct {
	Err        error // wraps ErrDataIntegrity or ErrInvalidFrequency
	Collection string
	RecordID   string
}

func (w Warning) Error() string {
	if w.RecordID == "" {
		return w.Collection + ": " + w.Err.Error()
	}
	return w.Collection + "[" + w.RecordID + "]: " + w.Err.Error()
}

func (w Warning) Unwrap() error { return w.Err }
