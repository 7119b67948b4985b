package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "fintrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func expense(date core.Date, category, amount string) core.Expense {
	return core.Expense{
		ID:       core.NewID(),
		Date:     date,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
	}
}

func TestNewRepository_SeedsDefaultCategories(t *testing.T) {
	repo := newTestRepo(t)

	cats, err := repo.LoadCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.CategorySet(core.DefaultCategories), cats)
}

func TestNewRepository_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fintrack.db")

	repo, err := NewRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.AppendExpenses(ctx, []core.Expense{expense(core.NewDate(2024, 1, 2), "Food", "3.50")}))
	require.NoError(t, repo.SaveCategories(ctx, core.CategorySet{"Rent"}))
	require.NoError(t, repo.Close())

	repo, err = NewRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	got, _, err := repo.LoadExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	cats, err := repo.LoadCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.CategorySet{"Rent"}, cats, "seed migration must not run twice")

	version, dirty, err := SchemaVersion(path)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)
}

func TestRepository_Expenses(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	a := expense(core.NewDate(2024, 1, 15), "Food", "12.30")
	b := expense(core.NewDate(2024, 1, 10), "Transport", "0.10")
	b.Description = "bus"
	require.NoError(t, repo.AppendExpenses(ctx, []core.Expense{a, b}))

	got, warnings, err := repo.LoadExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID, "append order is preserved")
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("12.3")))
	assert.Equal(t, "bus", got[1].Description)
	assert.True(t, got[1].Date.Equal(b.Date))

	b.Amount = decimal.NewFromInt(2)
	require.NoError(t, repo.UpdateExpense(ctx, b))
	require.NoError(t, repo.DeleteExpense(ctx, a.ID))

	got, _, err = repo.LoadExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(2)))

	err = repo.DeleteExpense(ctx, a.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	err = repo.UpdateExpense(ctx, a)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestRepository_ReplaceIncome(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	old := core.Income{ID: core.NewID(), Date: core.NewDate(2024, 1, 1), Source: "Salary", Amount: decimal.NewFromInt(1000)}
	require.NoError(t, repo.AppendIncome(ctx, []core.Income{old}))

	fresh := core.Income{ID: core.NewID(), Date: core.NewDate(2024, 2, 1), Source: "Bonus", Amount: decimal.NewFromInt(50)}
	require.NoError(t, repo.ReplaceIncome(ctx, []core.Income{fresh}))

	got, _, err := repo.LoadIncome(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bonus", got[0].Source)
}

func TestRepository_MalformedRowsAreReported(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	good := expense(core.NewDate(2024, 3, 1), "Food", "5")
	require.NoError(t, repo.AppendExpenses(ctx, []core.Expense{good}))
	require.NoError(t, repo.queries.InsertExpense(ctx, ExpenseRow{ID: "bad-date", Date: "03/01/2024", Category: "Food", Amount: "1"}))
	require.NoError(t, repo.queries.InsertExpense(ctx, ExpenseRow{ID: "bad-amount", Date: "2024-03-01", Category: "Food", Amount: "abc"}))
	require.NoError(t, repo.queries.InsertExpense(ctx, ExpenseRow{ID: "negative", Date: "2024-03-01", Category: "Food", Amount: "-4"}))

	got, warnings, err := repo.LoadExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, good.ID, got[0].ID)
	require.Len(t, warnings, 3)
	for _, w := range warnings {
		assert.True(t, errors.Is(w, core.ErrDataIntegrity), w.Error())
		assert.Equal(t, storage.CollectionExpenses, w.Collection)
	}
}

func TestRepository_Schedules(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	s := core.Schedule{
		ID:             core.NewID(),
		Kind:           core.KindExpense,
		Label:          "Utilities",
		Description:    "internet",
		Amount:         decimal.RequireFromString("29.99"),
		Frequency:      core.Monthly,
		NextOccurrence: core.NewDate(2024, 1, 31),
	}
	require.NoError(t, repo.AddSchedule(ctx, s))

	s.NextOccurrence = core.NewDate(2024, 2, 29)
	require.NoError(t, repo.UpdateSchedule(ctx, s))

	// Hand-edited rows keep kind and frequency as stored and lose only an
	// unreadable date.
	require.NoError(t, repo.queries.InsertSchedule(ctx, ScheduleRow{
		ID: "legacy", Kind: "Income", Label: "Salary", Amount: "100", Frequency: "Fortnightly", NextOccurrence: "soon",
	}))

	got, warnings, err := repo.LoadSchedules(ctx)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, got, 2)
	assert.Equal(t, s, got[0])
	assert.Equal(t, core.KindIncome, got[1].Kind)
	assert.Equal(t, core.Frequency("fortnightly"), got[1].Frequency)
	assert.True(t, got[1].NextOccurrence.IsZero())

	require.NoError(t, repo.DeleteSchedule(ctx, "legacy"))
	assert.ErrorIs(t, repo.DeleteSchedule(ctx, "legacy"), core.ErrNotFound)
}

func TestRepository_Settings(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.SaveCategories(ctx, core.CategorySet{"Rent", "Food"}))
	cats, err := repo.LoadCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.CategorySet{"Rent", "Food"}, cats)

	assert.ErrorIs(t, repo.SaveCategories(ctx, nil), core.ErrNoCategories)

	budgets := core.BudgetMap{"Food": decimal.NewFromInt(300), "Rent": decimal.Zero}
	require.NoError(t, repo.SaveBudgets(ctx, budgets))
	got, warnings, err := repo.LoadBudgets(ctx)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, got.Get("Food").Equal(decimal.NewFromInt(300)))
	assert.True(t, got.Get("Rent").IsZero())

	err = repo.SaveBudgets(ctx, core.BudgetMap{"Food": decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestRepository_InTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	boom := errors.New("boom")

	err := repo.InTx(ctx, func(s storage.Store) error {
		if err := s.AppendExpenses(ctx, []core.Expense{expense(core.NewDate(2024, 1, 1), "Food", "1")}); err != nil {
			return err
		}
		if err := s.AppendIncome(ctx, []core.Income{{ID: core.NewID(), Date: core.NewDate(2024, 1, 1), Source: "x", Amount: decimal.NewFromInt(1)}}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	expenses, _, err := repo.LoadExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, expenses)
	income, _, err := repo.LoadIncome(ctx)
	require.NoError(t, err)
	assert.Empty(t, income)
}
