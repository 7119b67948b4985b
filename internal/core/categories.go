package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCategories seeds a fresh store.
var DefaultCategories = []string{"Food", "Transport", "Utilities", "Fun", "Health", "Other"}

// CategorySet is an ordered set of unique category names. It is never empty
// once built through NewCategorySet.
type CategorySet []string

// BudgetMap maps a category to its monthly budget. A missing category means
// "no budget set", not "zero allowed".
type BudgetMap map[string]decimal.Decimal

// NewCategorySet trims, drops blanks and duplicates, and preserves order.
func NewCategorySet(names []string) (CategorySet, error) {
	seen := map[string]struct{}{}
	out := make(CategorySet, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, ErrNoCategories
	}
	return out, nil
}

func (c CategorySet) Contains(name string) bool {
	for _, n := range c {
		if n == name {
			return true
		}
	}
	return false
}

// With returns a copy with name appended if not already present.
func (c CategorySet) With(name string) (CategorySet, error) {
	return NewCategorySet(append(append([]string(nil), c...), name))
}

// Without returns a copy with name removed. Removing the last category fails.
func (c CategorySet) Without(name string) (CategorySet, error) {
	if !c.Contains(name) {
		return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	out := make([]string, 0, len(c))
	for _, n := range c {
		if n != name {
			out = append(out, n)
		}
	}
	return NewCategorySet(out)
}

// Get returns the budget for category, zero when unset.
func (b BudgetMap) Get(category string) decimal.Decimal {
	if v, ok := b[category]; ok {
		return v
	}
	return decimal.Zero
}

// Validate rejects negative budgets and blank category keys.
func (b BudgetMap) Validate() error {
	for cat, amt := range b {
		if strings.TrimSpace(cat) == "" {
			return fmt.Errorf("%w: budget category", ErrEmptyLabel)
		}
		if amt.IsNegative() {
			return fmt.Errorf("budget for %q: %w", cat, ErrInvalidAmount)
		}
	}
	return nil
}
