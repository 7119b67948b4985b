// Package memory is an in-process storage.Store used by tests and by the
// "memory" backend. Nothing survives the process.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

var (
	_ storage.Store      = (*Store)(nil)
	_ storage.Transactor = (*Store)(nil)
)

type Store struct {
	txMu sync.Mutex // serializes InTx callers
	mu   sync.Mutex
	data state
}

type state struct {
	expenses  []core.Expense
	income    []core.Income
	schedules []core.Schedule
	cats      core.CategorySet
	budgets   core.BudgetMap
}

func (st state) clone() state {
	budgets := make(core.BudgetMap, len(st.budgets))
	for k, v := range st.budgets {
		budgets[k] = v
	}
	return state{
		expenses:  append([]core.Expense(nil), st.expenses...),
		income:    append([]core.Income(nil), st.income...),
		schedules: append([]core.Schedule(nil), st.schedules...),
		cats:      append(core.CategorySet(nil), st.cats...),
		budgets:   budgets,
	}
}

// New returns an empty store seeded with cats, or the default categories
// when cats has no usable names.
func New(cats []string) *Store {
	set, err := core.NewCategorySet(cats)
	if err != nil {
		set, _ = core.NewCategorySet(core.DefaultCategories)
	}
	return &Store{data: state{cats: set, budgets: core.BudgetMap{}}}
}

// NewFromFiles seeds categories from base/seed_categories.txt, one per line.
// Blank lines and lines starting with # are ignored.
func NewFromFiles(base string) *Store {
	return New(readLines(filepath.Join(base, "seed_categories.txt")))
}

func (s *Store) Close() error { return nil }

// InTx runs fn against the store and restores the previous state if fn
// fails.
func (s *Store) InTx(_ context.Context, fn func(storage.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) LoadExpenses(_ context.Context) ([]core.Expense, []core.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.data.expenses...), nil, nil
}

func (s *Store) AppendExpenses(_ context.Context, entries []core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.expenses = append(s.data.expenses, entries...)
	return nil
}

func (s *Store) ReplaceExpenses(_ context.Context, entries []core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.expenses = append([]core.Expense(nil), entries...)
	return nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.expenses {
		if s.data.expenses[i].ID == e.ID {
			s.data.expenses[i] = e
			return nil
		}
	}
	return fmt.Errorf("expense %s: %w", e.ID, core.ErrNotFound)
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.expenses {
		if s.data.expenses[i].ID == id {
			s.data.expenses = append(s.data.expenses[:i:i], s.data.expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
}

func (s *Store) LoadIncome(_ context.Context) ([]core.Income, []core.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Income(nil), s.data.income...), nil, nil
}

func (s *Store) AppendIncome(_ context.Context, entries []core.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.income = append(s.data.income, entries...)
	return nil
}

func (s *Store) ReplaceIncome(_ context.Context, entries []core.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.income = append([]core.Income(nil), entries...)
	return nil
}

func (s *Store) UpdateIncome(_ context.Context, in core.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.income {
		if s.data.income[i].ID == in.ID {
			s.data.income[i] = in
			return nil
		}
	}
	return fmt.Errorf("income %s: %w", in.ID, core.ErrNotFound)
}

func (s *Store) DeleteIncome(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.income {
		if s.data.income[i].ID == id {
			s.data.income = append(s.data.income[:i:i], s.data.income[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("income %s: %w", id, core.ErrNotFound)
}

func (s *Store) LoadSchedules(_ context.Context) ([]core.Schedule, []core.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Schedule(nil), s.data.schedules...), nil, nil
}

func (s *Store) ReplaceSchedules(_ context.Context, schedules []core.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.schedules = append([]core.Schedule(nil), schedules...)
	return nil
}

func (s *Store) AddSchedule(_ context.Context, sc core.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.schedules {
		if existing.ID == sc.ID {
			return fmt.Errorf("schedule %s already exists", sc.ID)
		}
	}
	s.data.schedules = append(s.data.schedules, sc)
	return nil
}

func (s *Store) UpdateSchedule(_ context.Context, sc core.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.schedules {
		if s.data.schedules[i].ID == sc.ID {
			s.data.schedules[i] = sc
			return nil
		}
	}
	return fmt.Errorf("schedule %s: %w", sc.ID, core.ErrNotFound)
}

func (s *Store) DeleteSchedule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.schedules {
		if s.data.schedules[i].ID == id {
			s.data.schedules = append(s.data.schedules[:i:i], s.data.schedules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("schedule %s: %w", id, core.ErrNotFound)
}

func (s *Store) LoadCategories(_ context.Context) (core.CategorySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(core.CategorySet(nil), s.data.cats...), nil
}

func (s *Store) SaveCategories(_ context.Context, set core.CategorySet) error {
	if len(set) == 0 {
		return core.ErrNoCategories
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.cats = append(core.CategorySet(nil), set...)
	return nil
}

func (s *Store) LoadBudgets(_ context.Context) (core.BudgetMap, []core.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(core.BudgetMap, len(s.data.budgets))
	for k, v := range s.data.budgets {
		out[k] = v
	}
	return out, nil, nil
}

func (s *Store) SaveBudgets(_ context.Context, budgets core.BudgetMap) error {
	if err := budgets.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.budgets = make(core.BudgetMap, len(budgets))
	for k, v := range budgets {
		s.data.budgets[k] = v
	}
	return nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
