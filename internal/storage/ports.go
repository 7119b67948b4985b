// Package storage defines the persistence ports used by the services layer.
//
// Every Load method returns the well-formed records together with one
// core.Warning per stored row that could not be decoded. A non-nil error
// means the collection itself could not be read or written.
package storage

import (
	"context"

	"fintrack/internal/core"
)

type (
	ExpenseLedger interface {
		LoadExpenses(ctx context.Context) ([]core.Expense, []core.Warning, error)
		AppendExpenses(ctx context.Context, entries []core.Expense) error
		ReplaceExpenses(ctx context.Context, entries []core.Expense) error
		UpdateExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id string) error
	}

	IncomeLedger interface {
		LoadIncome(ctx context.Context) ([]core.Income, []core.Warning, error)
		AppendIncome(ctx context.Context, entries []core.Income) error
		ReplaceIncome(ctx context.Context, entries []core.Income) error
		UpdateIncome(ctx context.Context, i core.Income) error
		DeleteIncome(ctx context.Context, id string) error
	}

	ScheduleStore interface {
		LoadSchedules(ctx context.Context) ([]core.Schedule, []core.Warning, error)
		ReplaceSchedules(ctx context.Context, schedules []core.Schedule) error
		AddSchedule(ctx context.Context, s core.Schedule) error
		UpdateSchedule(ctx context.Context, s core.Schedule) error
		DeleteSchedule(ctx context.Context, id string) error
	}

	// SettingsStore holds the category set and budget documents.
	SettingsStore interface {
		LoadCategories(ctx context.Context) (core.CategorySet, error)
		SaveCategories(ctx context.Context, set core.CategorySet) error
		LoadBudgets(ctx context.Context) (core.BudgetMap, []core.Warning, error)
		SaveBudgets(ctx context.Context, budgets core.BudgetMap) error
	}

	Store interface {
		ExpenseLedger
		IncomeLedger
		ScheduleStore
		SettingsStore
		Close() error
	}

	// Transactor is implemented by stores that can apply several writes as a
	// single unit. fn receives a Store bound to the transaction; returning an
	// error rolls everything back.
	Transactor interface {
		InTx(ctx context.Context, fn func(Store) error) error
	}
)

// Collection names used in warnings and logs.
const (
	CollectionExpenses  = "expenses"
	CollectionIncome    = "income"
	CollectionSchedules = "schedules"
	CollectionBudgets   = "budgets"
)
