// Command fintrack is a personal finance tracker for expenses, income,
// recurring transactions and budgets.
package main

import (
	"os"

	"fintrack/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
