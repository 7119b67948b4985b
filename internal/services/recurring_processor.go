package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

// CatchUpResult is the outcome of one catch-up pass. Expenses and Income are
// the input ledgers followed by the new postings; Schedules are the input
// schedules with advanced next occurrences.
type CatchUpResult struct {
	Schedules   []core.Schedule
	Expenses    []core.Expense
	Income      []core.Income
	NewExpenses []core.Expense
	NewIncome   []core.Income
	Advanced    []core.Schedule
	Changed     bool
	Warnings    []core.Warning
}

// CatchUp posts every occurrence of every schedule due on or before today.
// Each schedule is handled independently: a schedule with a missing next
// occurrence, an unknown kind or an unknown frequency is reported in
// Warnings and left as it is. The inputs are not modified.
func CatchUp(schedules []core.Schedule, expenses []core.Expense, income []core.Income, today core.Date) CatchUpResult {
	res := CatchUpResult{
		Schedules: make([]core.Schedule, len(schedules)),
		Expenses:  append([]core.Expense(nil), expenses...),
		Income:    append([]core.Income(nil), income...),
	}
	copy(res.Schedules, schedules)

	for i := range res.Schedules {
		s := &res.Schedules[i]

		if err := checkPostable(*s); err != nil {
			res.Warnings = append(res.Warnings, core.Warning{Err: err, Collection: storage.CollectionSchedules, RecordID: s.ID})
			continue
		}

		next, posted := s.NextOccurrence, 0
		for !next.After(today) {
			switch s.Kind {
			case core.KindExpense:
				res.NewExpenses = append(res.NewExpenses, core.Expense{
					ID:          core.NewID(),
					Date:        next,
					Category:    s.Label,
					Description: s.Description,
					Amount:      s.Amount,
					ScheduleID:  s.ID,
				})
			case core.KindIncome:
				res.NewIncome = append(res.NewIncome, core.Income{
					ID:         core.NewID(),
					Date:       next,
					Source:     s.Label,
					Amount:     s.Amount,
					ScheduleID: s.ID,
				})
			}
			posted++

			following, _ := Advance(next, s.Frequency)
			if !following.After(next) {
				// Only a misbehaving registered advancer gets here.
				res.Warnings = append(res.Warnings, core.Warning{
					Err:        fmt.Errorf("%w: advancer for %q did not move past %s", core.ErrDataIntegrity, s.Frequency, next),
					Collection: storage.CollectionSchedules,
					RecordID:   s.ID,
				})
				break
			}
			next = following
		}

		if posted > 0 {
			s.NextOccurrence = next
			res.Advanced = append(res.Advanced, *s)
		}
	}

	res.Changed = len(res.Advanced) > 0
	res.Expenses = append(res.Expenses, res.NewExpenses...)
	res.Income = append(res.Income, res.NewIncome...)
	return res
}

func checkPostable(s core.Schedule) error {
	if s.NextOccurrence.IsZero() {
		return fmt.Errorf("%w: missing next occurrence", core.ErrDataIntegrity)
	}
	if !s.Kind.IsValid() {
		return fmt.Errorf("%w: unknown schedule kind %q", core.ErrDataIntegrity, s.Kind)
	}
	if _, err := GetAdvancer(s.Frequency); err != nil {
		return err
	}
	return nil
}

// PostingPublisher receives one event per materialized ledger entry.
type PostingPublisher interface {
	PublishPosting(ctx context.Context, msg *amqp.PostingMessage) error
}

// RecurringProcessor runs catch-up passes against a store.
type RecurringProcessor struct {
	store     storage.Store
	publisher PostingPublisher
	logger    *applog.Logger
}

// Report summarizes a completed pass.
type Report struct {
	Today       core.Date
	NewExpenses []core.Expense
	NewIncome   []core.Income
	Advanced    int
	Warnings    []core.Warning
}

// Posted is the number of ledger entries created by the pass.
func (r Report) Posted() int { return len(r.NewExpenses) + len(r.NewIncome) }

// NewRecurringProcessor creates a processor. publisher may be nil.
func NewRecurringProcessor(store storage.Store, publisher PostingPublisher, logger *applog.Logger) *RecurringProcessor {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &RecurringProcessor{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentRecurring),
	}
}

// Run loads schedules and both ledgers, posts everything due on or before
// today and writes back only what changed. Any load or write failure aborts
// the pass with an error wrapping core.ErrStoreUnavailable; when the store
// is a storage.Transactor the writes are applied as a single unit.
func (p *RecurringProcessor) Run(ctx context.Context, today core.Date) (Report, error) {
	if p.store == nil {
		return Report{}, fmt.Errorf("processor not properly initialized: %w", core.ErrStoreUnavailable)
	}
	start := time.Now()

	var (
		schedules                         []core.Schedule
		expenses                          []core.Expense
		income                            []core.Income
		schedWarns, expWarns, incomeWarns []core.Warning
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		schedules, schedWarns, err = p.store.LoadSchedules(gctx)
		return err
	})
	g.Go(func() (err error) {
		expenses, expWarns, err = p.store.LoadExpenses(gctx)
		return err
	})
	g.Go(func() (err error) {
		income, incomeWarns, err = p.store.LoadIncome(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("%w: load: %w", core.ErrStoreUnavailable, err)
	}

	res := CatchUp(schedules, expenses, income, today)

	report := Report{
		Today:       today,
		NewExpenses: res.NewExpenses,
		NewIncome:   res.NewIncome,
		Advanced:    len(res.Advanced),
	}
	report.Warnings = append(report.Warnings, schedWarns...)
	report.Warnings = append(report.Warnings, expWarns...)
	report.Warnings = append(report.Warnings, incomeWarns...)
	report.Warnings = append(report.Warnings, res.Warnings...)

	for _, w := range report.Warnings {
		p.logger.WarnContext(ctx, "Skipped record", applog.NewFields().WithWarning(w).ToSlice()...)
	}

	if !res.Changed {
		p.logger.DebugContext(ctx, "Nothing due", applog.FieldToday, today.String())
		return report, nil
	}

	if err := p.persist(ctx, res); err != nil {
		return Report{}, fmt.Errorf("%w: persist: %w", core.ErrStoreUnavailable, err)
	}

	p.publish(ctx, res)

	p.logger.InfoContext(ctx, "Recurring catch-up complete",
		applog.FieldToday, today.String(),
		"posted_expenses", len(res.NewExpenses),
		"posted_income", len(res.NewIncome),
		"advanced", len(res.Advanced),
		"warnings", len(report.Warnings),
		applog.FieldDuration, time.Since(start).Milliseconds())

	return report, nil
}

func (p *RecurringProcessor) persist(ctx context.Context, res CatchUpResult) error {
	write := func(s storage.Store) error {
		if len(res.NewExpenses) > 0 {
			if err := s.AppendExpenses(ctx, res.NewExpenses); err != nil {
				return fmt.Errorf("append expenses: %w", err)
			}
		}
		if len(res.NewIncome) > 0 {
			if err := s.AppendIncome(ctx, res.NewIncome); err != nil {
				return fmt.Errorf("append income: %w", err)
			}
		}
		for _, sc := range res.Advanced {
			if err := s.UpdateSchedule(ctx, sc); err != nil {
				return fmt.Errorf("advance schedule %s: %w", sc.ID, err)
			}
		}
		return nil
	}

	if tx, ok := p.store.(storage.Transactor); ok {
		return tx.InTx(ctx, write)
	}
	return write(p.store)
}

// publish never fails the pass: the entries are already stored.
func (p *RecurringProcessor) publish(ctx context.Context, res CatchUpResult) {
	if p.publisher == nil {
		return
	}
	msgs := make([]*amqp.PostingMessage, 0, len(res.NewExpenses)+len(res.NewIncome))
	for _, e := range res.NewExpenses {
		msgs = append(msgs, amqp.NewExpensePosting(e))
	}
	for _, i := range res.NewIncome {
		msgs = append(msgs, amqp.NewIncomePosting(i))
	}
	for _, msg := range msgs {
		if err := p.publisher.PublishPosting(ctx, msg); err != nil {
			p.logger.ErrorContext(ctx, "Failed to publish posting",
				applog.FieldEntryID, msg.EntryID,
				applog.FieldScheduleID, msg.ScheduleID,
				applog.FieldError, err)
		}
	}
}
