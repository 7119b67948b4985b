package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type filterFlags struct {
	from       string
	to         string
	categories []string
	min        string
	max        string
}

func (f *filterFlags) register(cmd *cobra.Command, withCategory bool) {
	cmd.Flags().StringVar(&f.from, "from", "", "Start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "End date, inclusive (YYYY-MM-DD)")
	if withCategory {
		cmd.Flags().StringSliceVarP(&f.categories, "category", "c", nil, "Only these categories (repeatable)")
	}
	cmd.Flags().StringVar(&f.min, "min", "", "Minimum amount, inclusive")
	cmd.Flags().StringVar(&f.max, "max", "", "Maximum amount, inclusive; 0 means no limit")
}

func (f filterFlags) build() (services.Filter, error) {
	var (
		out services.Filter
		err error
	)
	if out.From, err = optionalDate("from", f.from); err != nil {
		return out, err
	}
	if out.To, err = optionalDate("to", f.to); err != nil {
		return out, err
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.To.Before(out.From) {
		return out, fmt.Errorf("--to %s is before --from %s", out.To, out.From)
	}
	if out.Min, err = optionalAmount("min", f.min); err != nil {
		return out, err
	}
	if out.Max, err = optionalAmount("max", f.max); err != nil {
		return out, err
	}
	for _, c := range f.categories {
		if c = strings.TrimSpace(c); c != "" {
			out.Categories = append(out.Categories, c)
		}
	}
	return out, nil
}

func optionalDate(flag, s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return d, nil
}

func optionalAmount(flag, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return parseAmount(flag, s)
}

func parseAmount(flag, s string) (decimal.Decimal, error) {
	d, err := core.ParseAmount(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s %q: %w", flag, s, err)
	}
	return d, nil
}

// dateOrToday parses s, defaulting to today when empty.
func (a *App) dateOrToday(flag, s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return a.today()
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return d, nil
}
