package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategorySet(t *testing.T) {
	set, err := NewCategorySet([]string{" Food", "Rent", "Food", "", "Fun"})
	require.NoError(t, err)
	assert.Equal(t, CategorySet{"Food", "Rent", "Fun"}, set)

	_, err = NewCategorySet([]string{" ", ""})
	assert.ErrorIs(t, err, ErrNoCategories)
}

func TestCategorySetWithout(t *testing.T) {
	set := CategorySet{"Food", "Fun"}

	next, err := set.Without("Food")
	require.NoError(t, err)
	assert.Equal(t, CategorySet{"Fun"}, next)
	assert.Equal(t, CategorySet{"Food", "Fun"}, set, "receiver must not change")

	_, err = next.Without("Fun")
	assert.True(t, errors.Is(err, ErrNoCategories), "the set can never become empty")

	_, err = set.Without("Travel")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategorySetWith(t *testing.T) {
	set, err := CategorySet{"Food"}.With("Travel")
	require.NoError(t, err)
	assert.Equal(t, CategorySet{"Food", "Travel"}, set)

	same, err := set.With("Food")
	require.NoError(t, err)
	assert.Len(t, same, 2)
}

func TestBudgetMap(t *testing.T) {
	b := BudgetMap{"Food": decimal.NewFromInt(300)}
	assert.True(t, b.Get("Food").Equal(decimal.NewFromInt(300)))
	assert.True(t, b.Get("Fun").IsZero())
	assert.NoError(t, b.Validate())

	b["Fun"] = decimal.NewFromInt(-1)
	assert.ErrorIs(t, b.Validate(), ErrInvalidAmount)
}
