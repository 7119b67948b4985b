// Package sqlite implements storage.Store on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/storage"

	_ "modernc.org/sqlite"
)

var (
	_ storage.Store      = (*Repository)(nil)
	_ storage.Transactor = (*Repository)(nil)
)

type Repository struct {
	db      *sql.DB // nil for a repository bound to a transaction
	queries *Queries
}

// NewRepository opens (creating if absent) the database at dbPath and
// migrates it to the latest schema.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes writers and keeps transactions simple.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, queries: New(db)}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InTx implements storage.Transactor.
func (r *Repository) InTx(ctx context.Context, fn func(storage.Store) error) error {
	return r.withTx(ctx, func(q *Queries) error {
		return fn(&Repository{queries: q})
	})
}

// withTx runs fn inside a transaction, or directly when r is already bound
// to one.
func (r *Repository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	if r.db == nil {
		return fn(r.queries)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(r.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Expenses

func (r *Repository) LoadExpenses(ctx context.Context) ([]core.Expense, []core.Warning, error) {
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list expenses: %w", err)
	}
	var (
		out      = make([]core.Expense, 0, len(rows))
		warnings []core.Warning
	)
	for _, row := range rows {
		e, err := decodeExpense(row)
		if err != nil {
			warnings = append(warnings, core.Warning{Err: err, Collection: storage.CollectionExpenses, RecordID: row.ID})
			continue
		}
		out = append(out, e)
	}
	return out, warnings, nil
}

func (r *Repository) AppendExpenses(ctx context.Context, entries []core.Expense) error {
	if len(entries) == 0 {
		return nil
	}
	err := r.withTx(ctx, func(q *Queries) error {
		for _, e := range entries {
			if err := q.InsertExpense(ctx, encodeExpense(e)); err != nil {
				return fmt.Errorf("insert expense %s: %w", e.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "Expenses appended", "count", len(entries))
	return nil
}

func (r *Repository) ReplaceExpenses(ctx context.Context, entries []core.Expense) error {
	return r.withTx(ctx, func(q *Queries) error {
		if err := q.DeleteAllExpenses(ctx); err != nil {
			return fmt.Errorf("clear expenses: %w", err)
		}
		for _, e := range entries {
			if err := q.InsertExpense(ctx, encodeExpense(e)); err != nil {
				return fmt.Errorf("insert expense %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) error {
	n, err := r.queries.UpdateExpense(ctx, encodeExpense(e))
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", e.ID, core.ErrNotFound)
	}
	return nil
}

func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// Income

func (r *Repository) LoadIncome(ctx context.Context) ([]core.Income, []core.Warning, error) {
	rows, err := r.queries.ListIncome(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list income: %w", err)
	}
	var (
		out      = make([]core.Income, 0, len(rows))
		warnings []core.Warning
	)
	for _, row := range rows {
		i, err := decodeIncome(row)
		if err != nil {
			warnings = append(warnings, core.Warning{Err: err, Collection: storage.CollectionIncome, RecordID: row.ID})
			continue
		}
		out = append(out, i)
	}
	return out, warnings, nil
}

func (r *Repository) AppendIncome(ctx context.Context, entries []core.Income) error {
	if len(entries) == 0 {
		return nil
	}
	err := r.withTx(ctx, func(q *Queries) error {
		for _, i := range entries {
			if err := q.InsertIncome(ctx, encodeIncome(i)); err != nil {
				return fmt.Errorf("insert income %s: %w", i.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "Income appended", "count", len(entries))
	return nil
}

func (r *Repository) ReplaceIncome(ctx context.Context, entries []core.Income) error {
	return r.withTx(ctx, func(q *Queries) error {
		if err := q.DeleteAllIncome(ctx); err != nil {
			return fmt.Errorf("clear income: %w", err)
		}
		for _, i := range entries {
			if err := q.InsertIncome(ctx, encodeIncome(i)); err != nil {
				return fmt.Errorf("insert income %s: %w", i.ID, err)
			}
		}
		return nil
	})
}

func (r *Repository) UpdateIncome(ctx context.Context, i core.Income) error {
	n, err := r.queries.UpdateIncome(ctx, encodeIncome(i))
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("income %s: %w", i.ID, core.ErrNotFound)
	}
	return nil
}

func (r *Repository) DeleteIncome(ctx context.Context, id string) error {
	n, err := r.queries.DeleteIncome(ctx, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("income %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// Schedules

func (r *Repository) LoadSchedules(ctx context.Context) ([]core.Schedule, []core.Warning, error) {
	rows, err := r.queries.ListSchedules(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list schedules: %w", err)
	}
	var (
		out      = make([]core.Schedule, 0, len(rows))
		warnings []core.Warning
	)
	for _, row := range rows {
		s, err := decodeSchedule(row)
		if err != nil {
			warnings = append(warnings, core.Warning{Err: err, Collection: storage.CollectionSchedules, RecordID: row.ID})
			continue
		}
		out = append(out, s)
	}
	return out, warnings, nil
}

func (r *Repository) ReplaceSchedules(ctx context.Context, schedules []core.Schedule) error {
	return r.withTx(ctx, func(q *Queries) error {
		if err := q.DeleteAllSchedules(ctx); err != nil {
			return fmt.Errorf("clear schedules: %w", err)
		}
		for _, s := range schedules {
			if err := q.InsertSchedule(ctx, encodeSchedule(s)); err != nil {
				return fmt.Errorf("insert schedule %s: %w", s.ID, err)
			}
		}
		return nil
	})
}

func (r *Repository) AddSchedule(ctx context.Context, s core.Schedule) error {
	if err := r.queries.InsertSchedule(ctx, encodeSchedule(s)); err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func (r *Repository) UpdateSchedule(ctx context.Context, s core.Schedule) error {
	n, err := r.queries.UpdateSchedule(ctx, encodeSchedule(s))
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("schedule %s: %w", s.ID, core.ErrNotFound)
	}
	return nil
}

func (r *Repository) DeleteSchedule(ctx context.Context, id string) error {
	n, err := r.queries.DeleteSchedule(ctx, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("schedule %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// Settings

// LoadCategories returns the stored set, or the defaults when the table has
// been emptied by hand.
func (r *Repository) LoadCategories(ctx context.Context) (core.CategorySet, error) {
	names, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	set, err := core.NewCategorySet(names)
	if errors.Is(err, core.ErrNoCategories) {
		return core.NewCategorySet(core.DefaultCategories)
	}
	return set, err
}

func (r *Repository) SaveCategories(ctx context.Context, set core.CategorySet) error {
	if len(set) == 0 {
		return core.ErrNoCategories
	}
	return r.withTx(ctx, func(q *Queries) error {
		if err := q.DeleteAllCategories(ctx); err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}
		for pos, name := range set {
			if err := q.InsertCategory(ctx, int64(pos), name); err != nil {
				return fmt.Errorf("insert category %q: %w", name, err)
			}
		}
		return nil
	})
}

func (r *Repository) LoadBudgets(ctx context.Context) (core.BudgetMap, []core.Warning, error) {
	rows, err := r.queries.ListBudgets(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list budgets: %w", err)
	}
	budgets := make(core.BudgetMap, len(rows))
	var warnings []core.Warning
	for _, row := range rows {
		amt, err := decodeAmount(row.Amount)
		if err != nil {
			warnings = append(warnings, core.Warning{Err: err, Collection: storage.CollectionBudgets, RecordID: row.Category})
			continue
		}
		budgets[row.Category] = amt
	}
	return budgets, warnings, nil
}

func (r *Repository) SaveBudgets(ctx context.Context, budgets core.BudgetMap) error {
	if err := budgets.Validate(); err != nil {
		return err
	}
	return r.withTx(ctx, func(q *Queries) error {
		if err := q.DeleteAllBudgets(ctx); err != nil {
			return fmt.Errorf("clear budgets: %w", err)
		}
		for cat, amt := range budgets {
			if err := q.UpsertBudget(ctx, BudgetRow{Category: cat, Amount: amt.String()}); err != nil {
				return fmt.Errorf("upsert budget %q: %w", cat, err)
			}
		}
		return nil
	})
}

// Row codecs

func decodeAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q", core.ErrDataIntegrity, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative amount %s", core.ErrDataIntegrity, s)
	}
	return d, nil
}

func decodeDate(s string) (core.Date, error) {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: date %q", core.ErrDataIntegrity, s)
	}
	return d, nil
}

func decodeExpense(row ExpenseRow) (core.Expense, error) {
	date, err := decodeDate(row.Date)
	if err != nil {
		return core.Expense{}, err
	}
	amt, err := decodeAmount(row.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		ID:          row.ID,
		Date:        date,
		Category:    row.Category,
		Description: row.Description,
		Amount:      amt,
		ScheduleID:  row.ScheduleID,
	}, nil
}

func encodeExpense(e core.Expense) ExpenseRow {
	return ExpenseRow{
		ID:          e.ID,
		Date:        e.Date.String(),
		Category:    e.Category,
		Description: e.Description,
		Amount:      e.Amount.String(),
		ScheduleID:  e.ScheduleID,
	}
}

func decodeIncome(row IncomeRow) (core.Income, error) {
	date, err := decodeDate(row.Date)
	if err != nil {
		return core.Income{}, err
	}
	amt, err := decodeAmount(row.Amount)
	if err != nil {
		return core.Income{}, err
	}
	return core.Income{
		ID:         row.ID,
		Date:       date,
		Source:     row.Source,
		Amount:     amt,
		ScheduleID: row.ScheduleID,
	}, nil
}

func encodeIncome(i core.Income) IncomeRow {
	return IncomeRow{
		ID:         i.ID,
		Date:       i.Date.String(),
		Source:     i.Source,
		Amount:     i.Amount.String(),
		ScheduleID: i.ScheduleID,
	}
}

// decodeSchedule rejects only a malformed amount. Kind and frequency are kept
// as stored and an unreadable next occurrence decodes to the zero date; the
// recurrence engine reports those per schedule.
func decodeSchedule(row ScheduleRow) (core.Schedule, error) {
	amt, err := decodeAmount(row.Amount)
	if err != nil {
		return core.Schedule{}, err
	}
	kind, _ := core.ParseKind(row.Kind)
	freq, _ := core.ParseFrequency(row.Frequency)
	next, _ := core.ParseDate(row.NextOccurrence)
	return core.Schedule{
		ID:             row.ID,
		Kind:           kind,
		Label:          row.Label,
		Description:    row.Description,
		Amount:         amt,
		Frequency:      freq,
		NextOccurrence: next,
	}, nil
}

func encodeSchedule(s core.Schedule) ScheduleRow {
	return ScheduleRow{
		ID:             s.ID,
		Kind:           string(s.Kind),
		Label:          s.Label,
		Description:    s.Description,
		Amount:         s.Amount.String(),
		Frequency:      string(s.Frequency),
		NextOccurrence: s.NextOccurrence.String(),
	}
}
