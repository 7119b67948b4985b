package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	ports "fintrack/internal/sheets"

	"golang.org/x/time/rate"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultWritesPerMinute stays under the Sheets API per-user write quota.
const DefaultWritesPerMinute = 50

// Options configures a Client. Sheet names are base names; the entry year is
// prefixed automatically ("Expenses" becomes "2025 Expenses").
type Options struct {
	SpreadsheetID   string
	ExpensesSheet   string
	IncomeSheet     string
	CategoriesSheet string
	CredentialsFile string
	CredentialsJSON string
	// WritesPerMinute caps AppendRow calls; 0 means DefaultWritesPerMinute,
	// a negative value disables the limit.
	WritesPerMinute int
}

type Client struct {
	svc             *gsheet.Service
	spreadsheetID   string
	expensesBase    string
	incomeBase      string
	categoriesSheet string
	limiter         *rate.Limiter // nil when unlimited
	logger          *applog.Logger
}

// Ensure interface conformance
var (
	_ ports.LedgerWriter   = (*Client)(nil)
	_ ports.CategoryReader = (*Client)(nil)
)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options, logger *applog.Logger) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, opts, logger), nil
}

// NewWithService wraps an existing service, letting callers point the client
// at a custom endpoint.
func NewWithService(svc *gsheet.Service, opts Options, logger *applog.Logger) *Client {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	c := &Client{
		svc:             svc,
		spreadsheetID:   strings.TrimSpace(opts.SpreadsheetID),
		expensesBase:    strings.TrimSpace(opts.ExpensesSheet),
		incomeBase:      strings.TrimSpace(opts.IncomeSheet),
		categoriesSheet: strings.TrimSpace(opts.CategoriesSheet),
		logger:          logger.WithComponent(applog.ComponentSheets),
	}
	if c.expensesBase == "" {
		c.expensesBase = "Expenses"
	}
	if c.incomeBase == "" {
		c.incomeBase = "Income"
	}
	if c.categoriesSheet == "" {
		c.categoriesSheet = "Categories"
	}
	if perMinute := opts.WritesPerMinute; perMinute >= 0 {
		if perMinute == 0 {
			perMinute = DefaultWritesPerMinute
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
	}
	return c
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Inline JSON wins over the file; GOOGLE_APPLICATION_CREDENTIALS is the last resort.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	credentialsJSON := []byte(strings.TrimSpace(opts.CredentialsJSON))
	if len(credentialsJSON) == 0 {
		path := strings.TrimSpace(opts.CredentialsFile)
		if path == "" {
			path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		}
		if path == "" {
			return nil, errors.New("missing service account credentials")
		}
		var err error
		credentialsJSON, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendRow appends r to the year sheet of its kind and returns the updated
// range, e.g. "2025 Expenses!A12:F12".
func (c *Client) AppendRow(ctx context.Context, r ports.Row) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if r.Date.IsZero() {
		return "", fmt.Errorf("validation failed: %w", core.ErrMissingDate)
	}

	sheet, err := c.sheetFor(r.Kind, r.Date.Year())
	if err != nil {
		return "", err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("wait for write quota: %w", err)
		}
	}

	rng := fmt.Sprintf("%s!A:F", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{rowValues(r)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Appended row",
		applog.FieldEntryID, r.EntryID,
		applog.FieldSheetsRef, ref)
	return ref, nil
}

func (c *Client) sheetFor(kind core.Kind, year int) (string, error) {
	switch kind {
	case core.KindExpense:
		return yearPrefixedName(c.expensesBase, year), nil
	case core.KindIncome:
		return yearPrefixedName(c.incomeBase, year), nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
}

// ListCategories reads column A of the categories sheet, skipping blanks,
// comments and duplicates.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.categoriesSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseColumn(resp.Values), nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
