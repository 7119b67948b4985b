package cli

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fintrack/internal/core"
)

type expenseFlags struct {
	date        string
	category    string
	description string
	amount      string
}

func (f *expenseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "Date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Category")
	cmd.Flags().StringVar(&f.description, "description", "", "Free-text description")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "Amount, e.g. 12.50 or 12,50")
}

func (a *App) expenseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"expenses", "e"},
		Short:   "Record and manage expenses",
	}
	cmd.AddCommand(a.expenseAddCommand(), a.expenseListCommand(), a.expenseEditCommand(), a.expenseDeleteCommand())
	return cmd
}

func (a *App) expenseAddCommand() *cobra.Command {
	var f expenseFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			date, err := a.dateOrToday("date", f.date)
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", f.amount)
			if err != nil {
				return err
			}
			e, err := a.ledger.AddExpense(ctx, core.Expense{
				Date:        date,
				Category:    f.category,
				Description: f.description,
				Amount:      amount,
			})
			if err != nil {
				return err
			}
			a.warnUnknownCategory(cmd, e.Category)
			printf(a.out, "Added expense %s: %s %s on %s\n",
				ShortID(e.ID), FormatMoney(e.Amount, a.currency()), e.Category, e.Date)
			return nil
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (a *App) warnUnknownCategory(cmd *cobra.Command, category string) {
	cats, err := a.ledger.Categories(cmd.Context())
	if err != nil || cats.Contains(category) {
		return
	}
	printf(a.errOut, "  %s\n", Warn(fmt.Sprintf("%q is not in the category list; add it with: fintrack category add %q", category, category)))
}

func (a *App) expenseListCommand() *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List expenses",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := f.build()
			if err != nil {
				return err
			}
			entries, _, err := a.ledger.Expenses(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printf(a.out, "\n  No expenses found.\n")
				return nil
			}
			slices.SortStableFunc(entries, func(x, y core.Expense) int { return x.Date.Compare(y.Date.Time) })

			total := decimal.Zero
			rows := make([][]string, 0, len(entries)+2)
			for _, e := range entries {
				total = total.Add(e.Amount)
				rows = append(rows, []string{
					ShortID(e.ID), e.Date.String(), e.Category, e.Description, FormatMoney(e.Amount, a.currency()),
				})
			}
			rows = append(rows, SeparatorRow, []string{"", "", "Total", fmt.Sprintf("%d entries", len(entries)), FormatMoney(total, a.currency())})

			printf(a.out, "%s", RenderTable(Table{
				Title:      "Expenses, " + FormatDateRange(filter.From, filter.To),
				Headers:    []string{"ID", "Date", "Category", "Description", "Amount"},
				Rows:       rows,
				RightAlign: []bool{false, false, false, false, true},
			}))
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

func (a *App) expenseEditCommand() *cobra.Command {
	var f expenseFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := a.ledger.FindExpense(ctx, args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("date") {
				if e.Date, err = core.ParseDate(f.date); err != nil {
					return fmt.Errorf("--date: %w", err)
				}
			}
			if flags.Changed("category") {
				e.Category = f.category
			}
			if flags.Changed("description") {
				e.Description = f.description
			}
			if flags.Changed("amount") {
				if e.Amount, err = parseAmount("amount", f.amount); err != nil {
					return err
				}
			}
			if err := a.ledger.UpdateExpense(ctx, e); err != nil {
				return err
			}
			printf(a.out, "Updated expense %s\n", ShortID(e.ID))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *App) expenseDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an expense",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := a.ledger.FindExpense(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.ledger.DeleteExpense(ctx, e.ID); err != nil {
				return err
			}
			printf(a.out, "Deleted expense %s (%s %s on %s)\n",
				ShortID(e.ID), FormatMoney(e.Amount, a.currency()), e.Category, e.Date)
			return nil
		},
	}
}

type incomeFlags struct {
	date   string
	source string
	amount string
}

func (f *incomeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "Date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "Source, e.g. Salary")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "Amount, e.g. 1500 or 1500,00")
}

func (a *App) incomeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "income",
		Aliases: []string{"i"},
		Short:   "Record and manage income",
	}
	cmd.AddCommand(a.incomeAddCommand(), a.incomeListCommand(), a.incomeEditCommand(), a.incomeDeleteCommand())
	return cmd
}

func (a *App) incomeAddCommand() *cobra.Command {
	var f incomeFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an income entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := a.dateOrToday("date", f.date)
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", f.amount)
			if err != nil {
				return err
			}
			in, err := a.ledger.AddIncome(cmd.Context(), core.Income{Date: date, Source: f.source, Amount: amount})
			if err != nil {
				return err
			}
			printf(a.out, "Added income %s: %s from %s on %s\n",
				ShortID(in.ID), FormatMoney(in.Amount, a.currency()), in.Source, in.Date)
			return nil
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (a *App) incomeListCommand() *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List income",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := f.build()
			if err != nil {
				return err
			}
			entries, _, err := a.ledger.Income(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printf(a.out, "\n  No income found.\n")
				return nil
			}
			slices.SortStableFunc(entries, func(x, y core.Income) int { return x.Date.Compare(y.Date.Time) })

			total := decimal.Zero
			rows := make([][]string, 0, len(entries)+2)
			for _, in := range entries {
				total = total.Add(in.Amount)
				rows = append(rows, []string{ShortID(in.ID), in.Date.String(), in.Source, FormatMoney(in.Amount, a.currency())})
			}
			rows = append(rows, SeparatorRow, []string{"", "", "Total", FormatMoney(total, a.currency())})

			printf(a.out, "%s", RenderTable(Table{
				Title:      "Income, " + FormatDateRange(filter.From, filter.To),
				Headers:    []string{"ID", "Date", "Source", "Amount"},
				Rows:       rows,
				RightAlign: []bool{false, false, false, true},
			}))
			return nil
		},
	}
	f.register(cmd, false)
	return cmd
}

func (a *App) incomeEditCommand() *cobra.Command {
	var f incomeFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an income entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in, err := a.ledger.FindIncome(ctx, args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("date") {
				if in.Date, err = core.ParseDate(f.date); err != nil {
					return fmt.Errorf("--date: %w", err)
				}
			}
			if flags.Changed("source") {
				in.Source = f.source
			}
			if flags.Changed("amount") {
				if in.Amount, err = parseAmount("amount", f.amount); err != nil {
					return err
				}
			}
			if err := a.ledger.UpdateIncome(ctx, in); err != nil {
				return err
			}
			printf(a.out, "Updated income %s\n", ShortID(in.ID))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *App) incomeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an income entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in, err := a.ledger.FindIncome(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.ledger.DeleteIncome(ctx, in.ID); err != nil {
				return err
			}
			printf(a.out, "Deleted income %s (%s from %s on %s)\n",
				ShortID(in.ID), FormatMoney(in.Amount, a.currency()), in.Source, in.Date)
			return nil
		},
	}
}
