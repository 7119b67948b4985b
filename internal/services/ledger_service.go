package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

// LedgerService validates and applies user edits to the store.
type LedgerService struct {
	store  storage.Store
	logger *applog.Logger
}

func NewLedgerService(store storage.Store, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &LedgerService{
		store:  store,
		logger: logger.WithComponent(applog.ComponentLedger),
	}
}

// AddExpense validates e, assigns an id if it has none and appends it.
func (s *LedgerService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("invalid expense: %w", err)
	}
	if e.ID == "" {
		e.ID = core.NewID()
	}
	if err := s.store.AppendExpenses(ctx, []core.Expense{e}); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.logger.InfoContext(ctx, "Expense added",
		applog.FieldEntryID, e.ID,
		applog.FieldDate, e.Date.String(),
		applog.FieldAmount, e.Amount.String())
	return e, nil
}

func (s *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid expense: %w", err)
	}
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.logger.InfoContext(ctx, "Expense deleted", applog.FieldEntryID, id)
	return nil
}

// Expenses returns the entries matching f.
func (s *LedgerService) Expenses(ctx context.Context, f Filter) ([]core.Expense, []core.Warning, error) {
	all, warnings, err := s.store.LoadExpenses(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load expenses: %w", err)
	}
	return FilterExpenses(all, f), warnings, nil
}

// AddIncome validates i, assigns an id if it has none and appends it.
func (s *LedgerService) AddIncome(ctx context.Context, i core.Income) (core.Income, error) {
	if err := i.Validate(); err != nil {
		return core.Income{}, fmt.Errorf("invalid income: %w", err)
	}
	if i.ID == "" {
		i.ID = core.NewID()
	}
	if err := s.store.AppendIncome(ctx, []core.Income{i}); err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}
	s.logger.InfoContext(ctx, "Income added",
		applog.FieldEntryID, i.ID,
		applog.FieldDate, i.Date.String(),
		applog.FieldAmount, i.Amount.String())
	return i, nil
}

func (s *LedgerService) UpdateIncome(ctx context.Context, i core.Income) error {
	if err := i.Validate(); err != nil {
		return fmt.Errorf("invalid income: %w", err)
	}
	if err := s.store.UpdateIncome(ctx, i); err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	return nil
}

func (s *LedgerService) DeleteIncome(ctx context.Context, id string) error {
	if err := s.store.DeleteIncome(ctx, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	s.logger.InfoContext(ctx, "Income deleted", applog.FieldEntryID, id)
	return nil
}

// Income returns the entries matching f. Categories in f are ignored.
func (s *LedgerService) Income(ctx context.Context, f Filter) ([]core.Income, []core.Warning, error) {
	all, warnings, err := s.store.LoadIncome(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load income: %w", err)
	}
	return FilterIncome(all, f), warnings, nil
}

// AddSchedule validates sc, assigns an id if it has none and stores it.
func (s *LedgerService) AddSchedule(ctx context.Context, sc core.Schedule) (core.Schedule, error) {
	if err := sc.Validate(); err != nil {
		return core.Schedule{}, fmt.Errorf("invalid schedule: %w", err)
	}
	if sc.Kind == core.KindIncome {
		sc.Description = ""
	}
	if sc.ID == "" {
		sc.ID = core.NewID()
	}
	if err := s.store.AddSchedule(ctx, sc); err != nil {
		return core.Schedule{}, fmt.Errorf("save schedule: %w", err)
	}
	s.logger.InfoContext(ctx, "Schedule added", applog.NewFields().WithSchedule(sc).ToSlice()...)
	return sc, nil
}

func (s *LedgerService) UpdateSchedule(ctx context.Context, sc core.Schedule) error {
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}
	if sc.Kind == core.KindIncome {
		sc.Description = ""
	}
	if err := s.store.UpdateSchedule(ctx, sc); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

func (s *LedgerService) DeleteSchedule(ctx context.Context, id string) error {
	if err := s.store.DeleteSchedule(ctx, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	s.logger.InfoContext(ctx, "Schedule deleted", applog.FieldScheduleID, id)
	return nil
}

func (s *LedgerService) Schedules(ctx context.Context) ([]core.Schedule, []core.Warning, error) {
	all, warnings, err := s.store.LoadSchedules(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load schedules: %w", err)
	}
	return all, warnings, nil
}

// ErrAmbiguousID is returned when an id prefix matches more than one record.
var ErrAmbiguousID = errors.New("ambiguous id prefix")

// findByID matches id exactly, or as a prefix of exactly one record id.
func findByID[T any](items []T, id string, idOf func(T) string) (T, error) {
	var (
		zero    T
		match   T
		matches int
	)
	id = strings.TrimSpace(id)
	if id == "" {
		return zero, core.ErrNotFound
	}
	for _, it := range items {
		got := idOf(it)
		if got == id {
			return it, nil
		}
		if strings.HasPrefix(got, id) {
			match = it
			matches++
		}
	}
	switch matches {
	case 0:
		return zero, core.ErrNotFound
	case 1:
		return match, nil
	default:
		return zero, fmt.Errorf("%w: %q matches %d records", ErrAmbiguousID, id, matches)
	}
}

// FindExpense returns the expense whose id is or starts with id.
func (s *LedgerService) FindExpense(ctx context.Context, id string) (core.Expense, error) {
	all, _, err := s.store.LoadExpenses(ctx)
	if err != nil {
		return core.Expense{}, fmt.Errorf("load expenses: %w", err)
	}
	e, err := findByID(all, id, func(e core.Expense) string { return e.ID })
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, err)
	}
	return e, nil
}

func (s *LedgerService) FindIncome(ctx context.Context, id string) (core.Income, error) {
	all, _, err := s.store.LoadIncome(ctx)
	if err != nil {
		return core.Income{}, fmt.Errorf("load income: %w", err)
	}
	i, err := findByID(all, id, func(i core.Income) string { return i.ID })
	if err != nil {
		return core.Income{}, fmt.Errorf("income %s: %w", id, err)
	}
	return i, nil
}

func (s *LedgerService) FindSchedule(ctx context.Context, id string) (core.Schedule, error) {
	all, _, err := s.store.LoadSchedules(ctx)
	if err != nil {
		return core.Schedule{}, fmt.Errorf("load schedules: %w", err)
	}
	sc, err := findByID(all, id, func(sc core.Schedule) string { return sc.ID })
	if err != nil {
		return core.Schedule{}, fmt.Errorf("schedule %s: %w", id, err)
	}
	return sc, nil
}

// Categories

func (s *LedgerService) Categories(ctx context.Context) (core.CategorySet, error) {
	return s.store.LoadCategories(ctx)
}

// SaveCategories replaces the category set. Names are trimmed and
// deduplicated; an empty result is rejected with core.ErrNoCategories.
func (s *LedgerService) SaveCategories(ctx context.Context, names []string) (core.CategorySet, error) {
	set, err := core.NewCategorySet(names)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveCategories(ctx, set); err != nil {
		return nil, fmt.Errorf("save categories: %w", err)
	}
	return set, nil
}

func (s *LedgerService) AddCategory(ctx context.Context, name string) (core.CategorySet, error) {
	set, err := s.store.LoadCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	next, err := set.With(name)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveCategories(ctx, next); err != nil {
		return nil, fmt.Errorf("save categories: %w", err)
	}
	return next, nil
}

// RemoveCategory drops name from the set. Existing expenses keep their
// category and show up as unknown in budget reports.
func (s *LedgerService) RemoveCategory(ctx context.Context, name string) (core.CategorySet, error) {
	set, err := s.store.LoadCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	next, err := set.Without(name)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveCategories(ctx, next); err != nil {
		return nil, fmt.Errorf("save categories: %w", err)
	}
	return next, nil
}

// Budgets

func (s *LedgerService) Budgets(ctx context.Context) (core.BudgetMap, []core.Warning, error) {
	return s.store.LoadBudgets(ctx)
}

// SetBudget stores one category's monthly budget. Zero clears it.
func (s *LedgerService) SetBudget(ctx context.Context, category string, amount decimal.Decimal) error {
	budgets, _, err := s.store.LoadBudgets(ctx)
	if err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}
	if budgets == nil {
		budgets = core.BudgetMap{}
	}
	budgets[strings.TrimSpace(category)] = amount
	if err := budgets.Validate(); err != nil {
		return err
	}
	return s.store.SaveBudgets(ctx, budgets)
}

func (s *LedgerService) SaveBudgets(ctx context.Context, budgets core.BudgetMap) error {
	if err := budgets.Validate(); err != nil {
		return err
	}
	return s.store.SaveBudgets(ctx, budgets)
}

// BudgetReport evaluates the month containing today.
func (s *LedgerService) BudgetReport(ctx context.Context, today core.Date) ([]BudgetStatus, error) {
	var (
		expenses []core.Expense
		cats     core.CategorySet
		budgets  core.BudgetMap
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		expenses, _, err = s.store.LoadExpenses(gctx)
		return err
	})
	g.Go(func() (err error) {
		cats, err = s.store.LoadCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		budgets, _, err = s.store.LoadBudgets(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load budget inputs: %w", err)
	}
	start, end := MonthBounds(today)
	return EvaluateBudgets(expenses, cats, budgets, start, end), nil
}

// Summary summarizes the entries matching f.
func (s *LedgerService) Summary(ctx context.Context, f Filter) (core.Summary, error) {
	expenses, income, err := s.loadLedgers(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return Summarize(FilterExpenses(expenses, f), FilterIncome(income, f)), nil
}

// Balance is total income minus total expenses over the whole ledger.
func (s *LedgerService) Balance(ctx context.Context) (decimal.Decimal, error) {
	expenses, income, err := s.loadLedgers(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return Balance(expenses, income), nil
}

func (s *LedgerService) loadLedgers(ctx context.Context) ([]core.Expense, []core.Income, error) {
	var (
		expenses []core.Expense
		income   []core.Income
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		expenses, _, err = s.store.LoadExpenses(gctx)
		return err
	})
	g.Go(func() (err error) {
		income, _, err = s.store.LoadIncome(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("load ledgers: %w", err)
	}
	return expenses, income, nil
}

// Close closes the underlying store.
func (s *LedgerService) Close() error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close ledger service: %w", err)
	}
	return nil
}
