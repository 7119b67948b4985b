package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

// CSV headers, one file per collection.
var (
	ExpenseHeader  = []string{"date", "category", "description", "amount"}
	IncomeHeader   = []string{"date", "source", "amount"}
	ScheduleHeader = []string{"type", "category_or_source", "description", "amount", "frequency", "next_date"}
)

// Default file names used by Export and Import.
const (
	ExpensesFile  = "expenses.csv"
	IncomeFile    = "income.csv"
	RecurringFile = "recurring.csv"
)

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

func WriteExpensesCSV(w io.Writer, entries []core.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExpenseHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Date.String(), e.Category, e.Description, e.Amount.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteIncomeCSV(w io.Writer, entries []core.Income) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(IncomeHeader); err != nil {
		return err
	}
	for _, i := range entries {
		if err := cw.Write([]string{i.Date.String(), i.Source, i.Amount.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteSchedulesCSV(w io.Writer, schedules []core.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ScheduleHeader); err != nil {
		return err
	}
	for _, s := range schedules {
		row := []string{
			string(s.Kind), s.Label, s.Description, s.Amount.String(),
			string(s.Frequency), s.NextOccurrence.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvTable maps header names to column positions.
type csvTable struct {
	cols map[string]int
	rows [][]string
}

func readTable(r io.Reader, required []string) (csvTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return csvTable{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return csvTable{}, fmt.Errorf("read csv: %w: empty file", ErrMissingColumn)
	}

	t := csvTable{cols: make(map[string]int), rows: records[1:]}
	for i, name := range records[0] {
		t.cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := t.cols[name]; !ok {
			return csvTable{}, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	return t, nil
}

func (t csvTable) get(row []string, name string) string {
	i, ok := t.cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func rowWarning(collection string, line int, err error) core.Warning {
	return core.Warning{
		Err:        fmt.Errorf("%w: %w", core.ErrDataIntegrity, err),
		Collection: collection,
		RecordID:   fmt.Sprintf("line %d", line),
	}
}

func parseRowDate(s string) (core.Date, error) {
	// accept a pandas-style timestamp such as "2024-01-15 00:00:00"
	if len(s) > len(core.DateLayout) {
		s = s[:len(core.DateLayout)]
	}
	return core.ParseDate(s)
}

// ReadExpensesCSV decodes expenses, assigning fresh ids. Rows with an
// unreadable date or amount are skipped and reported.
func ReadExpensesCSV(r io.Reader) ([]core.Expense, []core.Warning, error) {
	t, err := readTable(r, []string{"date", "category", "amount"})
	if err != nil {
		return nil, nil, err
	}
	var (
		out      []core.Expense
		warnings []core.Warning
	)
	for n, row := range t.rows {
		line := n + 2
		date, err := parseRowDate(t.get(row, "date"))
		if err != nil {
			warnings = append(warnings, rowWarning(storage.CollectionExpenses, line, err))
			continue
		}
		amount, err := core.ParseAmount(t.get(row, "amount"))
		if err != nil {
			warnings = append(warnings, rowWarning(storage.CollectionExpenses, line, err))
			continue
		}
		out = append(out, core.Expense{
			ID:          core.NewID(),
			Date:        date,
			Category:    t.get(row, "category"),
			Description: t.get(row, "description"),
			Amount:      amount,
		})
	}
	return out, warnings, nil
}

func ReadIncomeCSV(r io.Reader) ([]core.Income, []core.Warning, error) {
	t, err := readTable(r, []string{"date", "source", "amount"})
	if err != nil {
		return nil, nil, err
	}
	var (
		out      []core.Income
		warnings []core.Warning
	)
	for n, row := range t.rows {
		line := n + 2
		date, err := parseRowDate(t.get(row, "date"))
		if err != nil {
			warnings = append(warnings, rowWarning(storage.CollectionIncome, line, err))
			continue
		}
		amount, err := core.ParseAmount(t.get(row, "amount"))
		if err != nil {
			warnings = append(warnings, rowWarning(storage.CollectionIncome, line, err))
			continue
		}
		out = append(out, core.Income{
			ID:     core.NewID(),
			Date:   date,
			Source: t.get(row, "source"),
			Amount: amount,
		})
	}
	return out, warnings, nil
}

// ReadSchedulesCSV decodes recurring schedules. Kind, frequency, amount and
// next date must all be readable for a row to be kept.
func ReadSchedulesCSV(r io.Reader) ([]core.Schedule, []core.Warning, error) {
	t, err := readTable(r, []string{"type", "category_or_source", "amount", "frequency", "next_date"})
	if err != nil {
		return nil, nil, err
	}
	var (
		out      []core.Schedule
		warnings []core.Warning
	)
	for n, row := range t.rows {
		line := n + 2
		kind, err := core.ParseKind(t.get(row, "type"))
		if err != nil {
			warnings = append(warnings, rowWarning(storage.CollectionSchedules, line, err))
			continue
		}
		freq, err := core.ParseFrequency(t.get(row, "frequency"))
		if err != nil {
			warnings = append(warnings, rowWarning(storage.CollectionSchedules, line, err))
			continue
		}
		amount, err := core.ParseAmount(t.get(row, "amount"))
		if err != nil {
			warnings = append(warnings, rowWarning(storage.CollectionSchedules, line, err))
			continue
		}
		next, err := parseRowDate(t.get(row, "next_date"))
		if err != nil {
			warnings = append(warnings, rowWarning(storage.CollectionSchedules, line, err))
			continue
		}
		s := core.Schedule{
			ID:             core.NewID(),
			Kind:           kind,
			Label:          t.get(row, "category_or_source"),
			Amount:         amount,
			Frequency:      freq,
			NextOccurrence: next,
		}
		if kind == core.KindExpense {
			s.Description = t.get(row, "description")
		}
		out = append(out, s)
	}
	return out, warnings, nil
}

// TransferService moves whole collections between the store and CSV files.
type TransferService struct {
	store  storage.Store
	logger *applog.Logger
}

func NewTransferService(store storage.Store, logger *applog.Logger) *TransferService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &TransferService{store: store, logger: logger.WithComponent(applog.ComponentLedger)}
}

// Export writes expenses.csv, income.csv and recurring.csv into dir.
func (s *TransferService) Export(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, _, err := s.store.LoadExpenses(gctx)
		if err != nil {
			return fmt.Errorf("load expenses: %w", err)
		}
		return writeFile(filepath.Join(dir, ExpensesFile), func(w io.Writer) error { return WriteExpensesCSV(w, entries) })
	})
	g.Go(func() error {
		entries, _, err := s.store.LoadIncome(gctx)
		if err != nil {
			return fmt.Errorf("load income: %w", err)
		}
		return writeFile(filepath.Join(dir, IncomeFile), func(w io.Writer) error { return WriteIncomeCSV(w, entries) })
	})
	g.Go(func() error {
		schedules, _, err := s.store.LoadSchedules(gctx)
		if err != nil {
			return fmt.Errorf("load schedules: %w", err)
		}
		return writeFile(filepath.Join(dir, RecurringFile), func(w io.Writer) error { return WriteSchedulesCSV(w, schedules) })
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Export complete", applog.FieldOperation, applog.OpExport, "dir", dir)
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ImportResult counts what an import added.
type ImportResult struct {
	Expenses  int
	Income    int
	Schedules int
	Warnings  []core.Warning
}

// ImportMode selects how imported rows meet the existing collections.
type ImportMode int

const (
	// ImportAppend adds rows next to what is already stored.
	ImportAppend ImportMode = iota
	// ImportReplace swaps each collection that has a file in the import
	// directory for the file's contents. Collections without a file are kept.
	ImportReplace
)

// Import loads whichever of the three CSV files exist in dir. Nothing is
// written unless every present file could be read.
func (s *TransferService) Import(ctx context.Context, dir string, mode ImportMode) (ImportResult, error) {
	var (
		res       ImportResult
		expenses  []core.Expense
		income    []core.Income
		schedules []core.Schedule
	)

	present := map[string]bool{}
	readers := []struct {
		name string
		read func(io.Reader) ([]core.Warning, error)
	}{
		{ExpensesFile, func(r io.Reader) (w []core.Warning, err error) { expenses, w, err = ReadExpensesCSV(r); return }},
		{IncomeFile, func(r io.Reader) (w []core.Warning, err error) { income, w, err = ReadIncomeCSV(r); return }},
		{RecurringFile, func(r io.Reader) (w []core.Warning, err error) { schedules, w, err = ReadSchedulesCSV(r); return }},
	}
	for _, rd := range readers {
		path := filepath.Join(dir, rd.name)
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("open %s: %w", path, err)
		}
		present[rd.name] = true
		warnings, err := rd.read(f)
		f.Close()
		if err != nil {
			return ImportResult{}, fmt.Errorf("%s: %w", rd.name, err)
		}
		res.Warnings = append(res.Warnings, warnings...)
	}
	if len(present) == 0 {
		return ImportResult{}, fmt.Errorf("no csv files in %s", dir)
	}

	write := func(st storage.Store) error {
		if mode == ImportReplace {
			return replaceAll(ctx, st, present, expenses, income, schedules)
		}
		if err := st.AppendExpenses(ctx, expenses); err != nil {
			return fmt.Errorf("append expenses: %w", err)
		}
		if err := st.AppendIncome(ctx, income); err != nil {
			return fmt.Errorf("append income: %w", err)
		}
		for _, sc := range schedules {
			if err := st.AddSchedule(ctx, sc); err != nil {
				return fmt.Errorf("add schedule: %w", err)
			}
		}
		return nil
	}
	var err error
	if tx, ok := s.store.(storage.Transactor); ok {
		err = tx.InTx(ctx, write)
	} else {
		err = write(s.store)
	}
	if err != nil {
		return ImportResult{}, err
	}

	res.Expenses, res.Income, res.Schedules = len(expenses), len(income), len(schedules)
	for _, w := range res.Warnings {
		s.logger.WarnContext(ctx, "Skipped CSV row", applog.NewFields().WithWarning(w).ToSlice()...)
	}
	s.logger.InfoContext(ctx, "Import complete",
		applog.FieldOperation, applog.OpImport,
		"replace", mode == ImportReplace,
		"expenses", res.Expenses,
		"income", res.Income,
		"schedules", res.Schedules)
	return res, nil
}

func replaceAll(ctx context.Context, st storage.Store, present map[string]bool, expenses []core.Expense, income []core.Income, schedules []core.Schedule) error {
	if present[ExpensesFile] {
		if err := st.ReplaceExpenses(ctx, expenses); err != nil {
			return fmt.Errorf("replace expenses: %w", err)
		}
	}
	if present[IncomeFile] {
		if err := st.ReplaceIncome(ctx, income); err != nil {
			return fmt.Errorf("replace income: %w", err)
		}
	}
	if present[RecurringFile] {
		if err := st.ReplaceSchedules(ctx, schedules); err != nil {
			return fmt.Errorf("replace schedules: %w", err)
		}
	}
	return nil
}
