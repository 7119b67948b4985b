package cli

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (a *App) reportCommand() *cobra.Command {
	var (
		f        filterFlags
		cashflow bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Totals, spending by category and cash flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := f.build()
			if err != nil {
				return err
			}
			sum, err := a.ledger.Summary(cmd.Context(), filter)
			if err != nil {
				return err
			}
			cur := a.currency()

			printf(a.out, "\n%s\n\n", RenderTitle("REPORT  "+FormatDateRange(filter.From, filter.To)))
			printf(a.out, "%s\n", RenderTable(Table{
				Rows: [][]string{
					{"Income", FormatMoney(sum.TotalIncome, cur)},
					{"Expenses", FormatMoney(sum.TotalExpenses, cur)},
					SeparatorRow,
					{"Balance", Amount(sum.Balance, cur)},
				},
			}))

			if len(sum.ByCategory) > 0 {
				rows := make([][]string, 0, len(sum.ByCategory))
				for _, c := range sum.ByCategory {
					share := "-"
					if sum.TotalExpenses.IsPositive() {
						share = c.Amount.Mul(decimal.NewFromInt(100)).Div(sum.TotalExpenses).StringFixed(1) + "%"
					}
					rows = append(rows, []string{c.Name, FormatMoney(c.Amount, cur), share})
				}
				printf(a.out, "%s\n", RenderTable(Table{
					Title:   "Spending by category",
					Headers: []string{"Category", "Amount", "Share"},
					Rows:    rows,
				}))
			}

			if len(sum.Cashflow) == 0 {
				return nil
			}
			cumulative := make([]decimal.Decimal, len(sum.Cashflow))
			for i, p := range sum.Cashflow {
				cumulative[i] = p.Cumulative
			}
			printf(a.out, "  %s %s\n", Muted("Running balance"), RenderSparkline(cumulative))

			if !cashflow {
				return nil
			}
			rows := make([][]string, 0, len(sum.Cashflow))
			for _, p := range sum.Cashflow {
				rows = append(rows, []string{p.Date.String(), FormatSigned(p.Net, cur), FormatMoney(p.Cumulative, cur)})
			}
			printf(a.out, "\n%s", RenderTable(Table{
				Title:   "Cash flow",
				Headers: []string{"Date", "Net", "Running"},
				Rows:    rows,
			}))
			return nil
		},
	}
	f.register(cmd, true)
	cmd.Flags().BoolVar(&cashflow, "cashflow", false, "Also print the day-by-day cash flow table")
	return cmd
}

func (a *App) balanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Total income minus total expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			balance, err := a.ledger.Balance(cmd.Context())
			if err != nil {
				return err
			}
			printf(a.out, "Balance: %s\n", Amount(balance, a.currency()))
			return nil
		},
	}
}
