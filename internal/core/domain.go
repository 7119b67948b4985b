package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// DateLayout is the on-disk and CLI representation of a civil date.
const DateLayout = "2006-01-02"

type (
	Frequency string

	Kind string

	// Date is a civil calendar date. The time part is always UTC midnight.
	Date struct {
		time.Time
	}

	Expense struct {
		ID          string
		Date        Date
		Category    string
		Description string
		Amount      decimal.Decimal
		ScheduleID  string // set when posted by the recurrence engine
	}

	Income struct {
		ID         string
		Date       Date
		Source     string
		Amount     decimal.Decimal
		ScheduleID string
	}

	// Schedule is a recurring transaction template. Label is the category for
	// expense schedules and the source for income schedules.
	Schedule struct {
		ID             string
		Kind           Kind
		Label          string
		Description    string
		Amount         decimal.Decimal
		Frequency      Frequency
		NextOccurrence Date
	}
)

var (
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidKind      = errors.New("invalid schedule kind")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyLabel       = errors.New("empty label")
	ErrMissingDate      = errors.New("missing date")
	ErrNoCategories     = errors.New("at least one category is required")
	ErrNotFound         = errors.New("record not found")
	ErrDataIntegrity    = errors.New("data integrity")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// NewID returns a fresh immutable identifier for a ledger entry or schedule.
func NewID() string {
	return uuid.NewString()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time of day and location of t.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current civil date in the local calendar.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrMissingDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// AddDays moves the date by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Between reports whether from <= d <= to. A zero bound is open.
func (d Date) Between(from, to Date) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

// DaysIn returns the number of days in the given month of year.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseFrequency normalizes user or stored input ("Monthly ", "weekly").
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return f, fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
	return f, nil
}

func (f Frequency) IsValid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

// ParseKind normalizes a schedule kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return k, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

func (k Kind) IsValid() bool {
	return k == KindExpense || k == KindIncome
}

func validateAmount(a decimal.Decimal) error {
	if !a.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(e.Category) == "" {
		return fmt.Errorf("%w: category", ErrEmptyLabel)
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return validateAmount(e.Amount)
}

func (i Income) Validate() error {
	if i.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(i.Source) == "" {
		return fmt.Errorf("%w: source", ErrEmptyLabel)
	}
	return validateAmount(i.Amount)
}

// Validate runs the creation-time checks. The recurrence engine never calls
// it: stored schedules are posted as they are.
func (s Schedule) Validate() error {
	if !s.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, s.Kind)
	}
	if strings.TrimSpace(s.Label) == "" {
		if s.Kind == KindExpense {
			return fmt.Errorf("%w: category", ErrEmptyLabel)
		}
		return fmt.Errorf("%w: source", ErrEmptyLabel)
	}
	if !s.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, s.Frequency)
	}
	if s.NextOccurrence.IsZero() {
		return fmt.Errorf("%w: next occurrence", ErrMissingDate)
	}
	if len(s.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return validateAmount(s.Amount)
}
