// Package sheets defines the ports of the spreadsheet ledger mirror.
package sheets

import (
	"context"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Row is one ledger entry as mirrored to a spreadsheet.
type Row struct {
	EntryID     string
	Kind        core.Kind
	Date        core.Date
	Label       string // category or source
	Description string
	Amount      decimal.Decimal
}

// Ports for outbound adapters.
type (
	LedgerWriter interface {
		AppendRow(ctx context.Context, r Row) (rowRef string, err error)
	}

	CategoryReader interface {
		ListCategories(ctx context.Context) ([]string, error)
	}
)
