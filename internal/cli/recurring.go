package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type scheduleFlags struct {
	kind        string
	label       string
	description string
	amount      string
	frequency   string
	next        string
}

func (f *scheduleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.kind, "type", "t", string(core.KindExpense), "expense or income")
	cmd.Flags().StringVarP(&f.label, "label", "l", "", "Category for expenses, source for income")
	cmd.Flags().StringVar(&f.description, "description", "", "Description (expenses only)")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "Amount per occurrence")
	cmd.Flags().StringVarP(&f.frequency, "frequency", "f", string(core.Monthly), "daily, weekly, monthly or yearly")
	cmd.Flags().StringVarP(&f.next, "next", "n", "", "Next occurrence (YYYY-MM-DD, default today)")
}

func (a *App) recurringCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recurring",
		Aliases: []string{"schedule", "r"},
		Short:   "Manage recurring transactions",
	}
	cmd.AddCommand(a.recurringAddCommand(), a.recurringListCommand(), a.recurringEditCommand(), a.recurringDeleteCommand())
	return cmd
}

func (a *App) recurringAddCommand() *cobra.Command {
	var f scheduleFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recurring transaction",
		Long: "Add a recurring transaction. Occurrences on or before today are\n" +
			"posted immediately.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			kind, err := core.ParseKind(f.kind)
			if err != nil {
				return err
			}
			freq, err := core.ParseFrequency(f.frequency)
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", f.amount)
			if err != nil {
				return err
			}
			next, err := a.dateOrToday("next", f.next)
			if err != nil {
				return err
			}
			sc, err := a.ledger.AddSchedule(ctx, core.Schedule{
				Kind:           kind,
				Label:          f.label,
				Description:    f.description,
				Amount:         amount,
				Frequency:      freq,
				NextOccurrence: next,
			})
			if err != nil {
				return err
			}
			printf(a.out, "Added %s %s recurring %s: %s %s, next on %s\n",
				sc.Frequency, sc.Kind, ShortID(sc.ID), FormatMoney(sc.Amount, a.currency()), sc.Label, sc.NextOccurrence)

			if a.noCatchUp {
				return nil
			}
			_, err = a.catchUp(ctx)
			return err
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("label")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func scheduleRows(schedules []core.Schedule, currency string) [][]string {
	rows := make([][]string, 0, len(schedules))
	for _, sc := range schedules {
		next := sc.NextOccurrence.String()
		if next == "" {
			next = Bad("missing")
		}
		rows = append(rows, []string{
			ShortID(sc.ID),
			string(sc.Kind),
			sc.Label,
			sc.Description,
			FormatMoney(sc.Amount, currency),
			string(sc.Frequency),
			next,
		})
	}
	return rows
}

func (a *App) recurringListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recurring transactions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schedules, warnings, err := a.ledger.Schedules(cmd.Context())
			if err != nil {
				return err
			}
			if len(schedules) == 0 {
				printf(a.out, "\n  No recurring transactions.\n")
			} else {
				printf(a.out, "%s", RenderTable(Table{
					Title:      "Recurring transactions",
					Headers:    []string{"ID", "Type", "Label", "Description", "Amount", "Frequency", "Next"},
					Rows:       scheduleRows(schedules, a.currency()),
					RightAlign: []bool{false, false, false, false, true, false, false},
				}))
			}
			for _, w := range warnings {
				printf(a.errOut, "  %s\n", Warn("skipped "+w.Error()))
			}
			return nil
		},
	}
}

func (a *App) recurringEditCommand() *cobra.Command {
	var f scheduleFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a recurring transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sc, err := a.ledger.FindSchedule(ctx, args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("type") {
				if sc.Kind, err = core.ParseKind(f.kind); err != nil {
					return err
				}
			}
			if flags.Changed("label") {
				sc.Label = f.label
			}
			if flags.Changed("description") {
				sc.Description = f.description
			}
			if flags.Changed("amount") {
				if sc.Amount, err = parseAmount("amount", f.amount); err != nil {
					return err
				}
			}
			if flags.Changed("frequency") {
				if sc.Frequency, err = core.ParseFrequency(f.frequency); err != nil {
					return err
				}
			}
			if flags.Changed("next") {
				if sc.NextOccurrence, err = core.ParseDate(f.next); err != nil {
					return fmt.Errorf("--next: %w", err)
				}
			}
			if err := a.ledger.UpdateSchedule(ctx, sc); err != nil {
				return err
			}
			printf(a.out, "Updated recurring %s\n", ShortID(sc.ID))

			if a.noCatchUp || !flags.Changed("next") {
				return nil
			}
			_, err = a.catchUp(ctx)
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func (a *App) recurringDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a recurring transaction; posted entries are kept",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sc, err := a.ledger.FindSchedule(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.ledger.DeleteSchedule(ctx, sc.ID); err != nil {
				return err
			}
			printf(a.out, "Deleted recurring %s (%s %s)\n", ShortID(sc.ID), sc.Frequency, sc.Label)
			return nil
		},
	}
}

func (a *App) catchUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "catchup",
		Short:       "Post every recurring transaction due up to today",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationCatchUp: "skip"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := a.catchUp(cmd.Context())
			if err != nil {
				return err
			}
			if report.Posted() == 0 {
				printf(a.out, "\n  Nothing due as of %s.\n", report.Today)
				return nil
			}
			printf(a.out, "%s", RenderTable(Table{
				Title:      "Posted as of " + report.Today.String(),
				Headers:    []string{"ID", "Type", "Date", "Label", "Amount"},
				Rows:       postedRows(report, a.currency()),
				RightAlign: []bool{false, false, false, false, true},
			}))
			return nil
		},
	}
}

func postedRows(r services.Report, currency string) [][]string {
	rows := make([][]string, 0, r.Posted())
	for _, e := range r.NewExpenses {
		label := e.Category
		if e.Description != "" {
			label += " (" + strings.TrimSpace(e.Description) + ")"
		}
		rows = append(rows, []string{ShortID(e.ID), string(core.KindExpense), e.Date.String(), label, FormatMoney(e.Amount, currency)})
	}
	for _, in := range r.NewIncome {
		rows = append(rows, []string{ShortID(in.ID), string(core.KindIncome), in.Date.String(), in.Source, FormatMoney(in.Amount, currency)})
	}
	return rows
}
