// Package testutil holds test doubles shared by package tests.
package testutil

import (
	"context"
	"sync"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

// FlakyStore wraps a memory store, fails selected operations and records
// every write that reaches it.
type FlakyStore struct {
	*memory.Store

	LoadSchedulesErr  error
	LoadExpensesErr   error
	LoadIncomeErr     error
	AppendExpensesErr error
	AppendIncomeErr   error
	UpdateScheduleErr error

	mu     sync.Mutex
	Writes []string
}

// NewFlakyStore creates a FlakyStore over an empty memory store.
func NewFlakyStore() *FlakyStore {
	return &FlakyStore{Store: memory.New(nil)}
}

var _ storage.Store = (*FlakyStore)(nil)

// InTx keeps the memory store's rollback but routes writes through f.
func (f *FlakyStore) InTx(ctx context.Context, fn func(storage.Store) error) error {
	return f.Store.InTx(ctx, func(storage.Store) error { return fn(f) })
}

func (f *FlakyStore) record(op string) {
	f.mu.Lock()
	f.Writes = append(f.Writes, op)
	f.mu.Unlock()
}

// WriteCount returns the number of write calls that reached the store.
func (f *FlakyStore) WriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Writes)
}

func (f *FlakyStore) LoadSchedules(ctx context.Context) ([]core.Schedule, []core.Warning, error) {
	if f.LoadSchedulesErr != nil {
		return nil, nil, f.LoadSchedulesErr
	}
	return f.Store.LoadSchedules(ctx)
}

func (f *FlakyStore) LoadExpenses(ctx context.Context) ([]core.Expense, []core.Warning, error) {
	if f.LoadExpensesErr != nil {
		return nil, nil, f.LoadExpensesErr
	}
	return f.Store.LoadExpenses(ctx)
}

func (f *FlakyStore) LoadIncome(ctx context.Context) ([]core.Income, []core.Warning, error) {
	if f.LoadIncomeErr != nil {
		return nil, nil, f.LoadIncomeErr
	}
	return f.Store.LoadIncome(ctx)
}

func (f *FlakyStore) AppendExpenses(ctx context.Context, entries []core.Expense) error {
	f.record("append_expenses")
	if f.AppendExpensesErr != nil {
		return f.AppendExpensesErr
	}
	return f.Store.AppendExpenses(ctx, entries)
}

func (f *FlakyStore) AppendIncome(ctx context.Context, entries []core.Income) error {
	f.record("append_income")
	if f.AppendIncomeErr != nil {
		return f.AppendIncomeErr
	}
	return f.Store.AppendIncome(ctx, entries)
}

func (f *FlakyStore) ReplaceSchedules(ctx context.Context, schedules []core.Schedule) error {
	f.record("replace_schedules")
	return f.Store.ReplaceSchedules(ctx, schedules)
}

func (f *FlakyStore) UpdateSchedule(ctx context.Context, s core.Schedule) error {
	f.record("update_schedule")
	if f.UpdateScheduleErr != nil {
		return f.UpdateScheduleErr
	}
	return f.Store.UpdateSchedule(ctx, s)
}

// MockPublisher records published postings.
type MockPublisher struct {
	mu       sync.Mutex
	Messages []*amqp.PostingMessage
	Err      error
}

func (m *MockPublisher) PublishPosting(_ context.Context, msg *amqp.PostingMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msg)
	return nil
}
