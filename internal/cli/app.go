package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// Command annotations.
const (
	annotationCatchUp = "fintrack/catchup" // "skip" disables the implicit pass
	annotationStore   = "fintrack/store"   // "none" runs without opening a store
)

// App holds the state shared by every command of one invocation.
type App struct {
	out    io.Writer
	errOut io.Writer
	clock  func() core.Date

	configPath string
	todayFlag  string
	noCatchUp  bool

	cfg       *config.Config
	logger    *applog.Logger
	store     storage.Store
	publisher services.PostingPublisher
	cleanup   backend.CleanupFunc

	ledger    *services.LedgerService
	recurring *services.RecurringProcessor
	transfer  *services.TransferService
}

// Option configures an App.
type Option func(*App)

// WithOutput redirects command output and diagnostics.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		a.out = out
		a.errOut = errOut
	}
}

// WithStore skips configuration and uses store directly.
func WithStore(store storage.Store, logger *applog.Logger) Option {
	return func(a *App) {
		a.store = store
		a.logger = logger
		a.cfg = ptr(config.DefaultConfig())
	}
}

// WithClock fixes "today".
func WithClock(clock func() core.Date) Option {
	return func(a *App) { a.clock = clock }
}

func ptr[T any](v T) *T { return &v }

func NewApp(opts ...Option) *App {
	a := &App{
		out:    os.Stdout,
		errOut: os.Stderr,
		clock:  core.Today,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute runs the fintrack CLI and returns the process exit code.
func Execute() int {
	app := NewApp()
	err := app.RootCommand().ExecuteContext(context.Background())
	if cerr := app.close(); cerr != nil {
		printf(app.errOut, "Error: %v\n", cerr)
		return 1
	}
	if err != nil {
		return 1
	}
	return 0
}

// RootCommand builds the command tree bound to a.
func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "fintrack",
		Short: "Personal finance tracker",
		Long: "Track expenses, income, recurring transactions and monthly budgets.\n" +
			"Recurring transactions due on or before today are posted at the start\n" +
			"of every command.",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default "+config.Path()+")")
	root.PersistentFlags().StringVar(&a.todayFlag, "today", "", "Treat this date as today (YYYY-MM-DD)")
	root.PersistentFlags().BoolVar(&a.noCatchUp, "no-catchup", false, "Do not post due recurring transactions")

	root.AddCommand(
		a.catchUpCommand(),
		a.expenseCommand(),
		a.incomeCommand(),
		a.recurringCommand(),
		a.budgetCommand(),
		a.categoryCommand(),
		a.reportCommand(),
		a.balanceCommand(),
		a.exportCommand(),
		a.importCommand(),
		a.configCommand(),
		a.setupCommand(),
	)
	return root
}

func (a *App) today() (core.Date, error) {
	if a.todayFlag != "" {
		return core.ParseDate(a.todayFlag)
	}
	return a.clock(), nil
}

func (a *App) currency() string {
	if a.cfg == nil {
		return ""
	}
	return a.cfg.Display.Currency
}

// setup opens the store, builds the services and runs the implicit
// catch-up pass.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotationStore] == "none" {
		return nil
	}
	ctx := cmd.Context()

	if a.store == nil {
		cfg, err := LoadAndValidateConfig(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
		a.logger = SetupLogger(cfg, a.errOut)

		res, err := OpenBackend(ctx, cfg, a.logger)
		if err != nil {
			return err
		}
		a.store, a.cleanup = res.Store, res.Cleanup
		if res.Publisher != nil {
			a.publisher = res.Publisher
		}
	}
	if a.logger == nil {
		a.logger = applog.New(applog.Config{Format: applog.FormatText, Output: io.Discard})
	}

	a.ledger = services.NewLedgerService(a.store, a.logger)
	a.recurring = services.NewRecurringProcessor(a.store, a.publisher, a.logger)
	a.transfer = services.NewTransferService(a.store, a.logger)

	if a.noCatchUp || cmd.Annotations[annotationCatchUp] == "skip" {
		return nil
	}
	_, err := a.catchUp(ctx)
	return err
}

func (a *App) close() error {
	if a.cleanup == nil {
		return nil
	}
	err := a.cleanup()
	a.cleanup = nil
	return err
}

// catchUp posts everything due and reports it on the diagnostics stream.
func (a *App) catchUp(ctx context.Context) (services.Report, error) {
	today, err := a.today()
	if err != nil {
		return services.Report{}, err
	}
	report, err := a.recurring.Run(ctx, today)
	if err != nil {
		if errors.Is(err, core.ErrStoreUnavailable) {
			return report, fmt.Errorf("recurring catch-up failed: %w", err)
		}
		return report, err
	}
	if n := report.Posted(); n > 0 {
		printf(a.errOut, "  %s\n", Muted(fmt.Sprintf("Posted %d recurring %s (%d schedules advanced)",
			n, plural(n, "entry", "entries"), report.Advanced)))
	}
	if n := len(report.Warnings); n > 0 {
		printf(a.errOut, "  %s\n", Warn(fmt.Sprintf("%d %s skipped during catch-up, see log",
			n, plural(n, "record", "records"))))
	}
	return report, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
