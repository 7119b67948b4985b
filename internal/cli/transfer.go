package cli

import (
	"github.com/spf13/cobra"

	"fintrack/internal/services"
)

func (a *App) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write expenses.csv, income.csv and recurring.csv to dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.transfer.Export(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(a.out, "Exported to %s\n", args[0])
			return nil
		},
	}
}

func (a *App) importCommand() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Read expenses.csv, income.csv and recurring.csv from dir",
		Long: "Read whichever of expenses.csv, income.csv and recurring.csv exist in\n" +
			"dir. Rows are appended unless --replace is given, in which case each\n" +
			"collection with a file is replaced. Malformed rows are skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := services.ImportAppend
			if replace {
				mode = services.ImportReplace
			}
			res, err := a.transfer.Import(cmd.Context(), args[0], mode)
			if err != nil {
				return err
			}
			printf(a.out, "Imported %d expenses, %d income entries, %d recurring transactions\n",
				res.Expenses, res.Income, res.Schedules)
			for _, w := range res.Warnings {
				printf(a.errOut, "  %s\n", Warn("skipped "+w.Error()))
			}
			if a.noCatchUp {
				return nil
			}
			// Imported schedules may already be due.
			_, err = a.catchUp(cmd.Context())
			return err
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace collections instead of appending")
	return cmd
}
