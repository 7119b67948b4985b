package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
)

func (a *App) budgetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budget",
		Aliases: []string{"budgets", "b"},
		Short:   "Monthly budgets per category",
	}
	cmd.AddCommand(a.budgetSetCommand(), a.budgetShowCommand())
	return cmd
}

func (a *App) budgetSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <amount>",
		Short: "Set a category's monthly budget; 0 clears it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := strings.TrimSpace(args[0])
			amount, err := parseAmount("amount", args[1])
			if err != nil {
				return err
			}
			if err := a.ledger.SetBudget(cmd.Context(), category, amount); err != nil {
				return err
			}
			a.warnUnknownCategory(cmd, category)
			if amount.IsZero() {
				printf(a.out, "Cleared budget for %s\n", category)
				return nil
			}
			printf(a.out, "Budget for %s set to %s per month\n", category, FormatMoney(amount, a.currency()))
			return nil
		},
	}
}

func (a *App) budgetShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "show",
		Aliases: []string{"status"},
		Short:   "Show this month's spending against budgets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			today, err := a.today()
			if err != nil {
				return err
			}
			report, err := a.ledger.BudgetReport(cmd.Context(), today)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(report))
			for _, st := range report {
				name := st.Category
				if !st.Known {
					name += Muted(" (unlisted)")
				}
				budget := Muted("none")
				if st.Budget.IsPositive() {
					budget = FormatMoney(st.Budget, a.currency())
				}
				status := ""
				if st.OverBudget {
					status = Bad("over by " + FormatMoney(st.Overage, a.currency()))
				}
				rows = append(rows, []string{
					name,
					FormatMoney(st.Spent, a.currency()),
					budget,
					FormatPercent(st.Utilization),
					RenderUtilizationBar(st.Utilization, st.OverBudget, 20),
					status,
				})
			}

			printf(a.out, "\n%s\n\n", RenderTitle(fmt.Sprintf("BUDGETS  %d-%02d", today.Year(), today.Month())))
			printf(a.out, "%s", RenderTable(Table{
				Headers:    []string{"Category", "Spent", "Budget", "Used", "", ""},
				Rows:       rows,
				RightAlign: []bool{false, true, true, true, false, false},
			}))
			return nil
		},
	}
}

func (a *App) categoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories", "cat"},
		Short:   "Manage expense categories",
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List categories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats, err := a.ledger.Categories(cmd.Context())
			if err != nil {
				return err
			}
			a.printCategories(cats)
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := a.ledger.AddCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printCategories(cats)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a category; existing expenses keep it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := a.ledger.RemoveCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printCategories(cats)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <name>...",
		Short: "Replace the whole category list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := a.ledger.SaveCategories(cmd.Context(), args)
			if err != nil {
				return err
			}
			a.printCategories(cats)
			return nil
		},
	}

	cmd.AddCommand(list, add, remove, set)
	return cmd
}

func (a *App) printCategories(cats core.CategorySet) {
	for _, c := range cats {
		printf(a.out, "  %s\n", c)
	}
}
