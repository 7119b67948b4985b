// Package worker mirrors posting events into a spreadsheet.
package worker

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// SyncWorker appends each posted ledger entry to the spreadsheet and keeps
// the local category set in step with the spreadsheet's category list.
type SyncWorker struct {
	writer   sheets.LedgerWriter
	taxonomy sheets.CategoryReader
	settings storage.SettingsStore
	recent   cache.Cache[string] // entry ID -> sheets range, nil disables dedup
	metrics  *Metrics
	logger   *applog.Logger
}

// NewSyncWorker creates a worker. taxonomy and settings may be nil, which
// disables category sync.
func NewSyncWorker(writer sheets.LedgerWriter, taxonomy sheets.CategoryReader, settings storage.SettingsStore, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SyncWorker{
		writer:   writer,
		taxonomy: taxonomy,
		settings: settings,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// WithDedup makes the worker remember appended entries in recent and skip
// redeliveries of them.
func (w *SyncWorker) WithDedup(recent cache.Cache[string]) *SyncWorker {
	w.recent = recent
	return w
}

// WithMetrics records posting outcomes in m.
func (w *SyncWorker) WithMetrics(m *Metrics) *SyncWorker {
	w.metrics = m
	return w
}

// HandlePosting processes a single posting message from AMQP. Messages that
// can never succeed are logged and acknowledged by returning nil; only
// spreadsheet failures are returned so the delivery is requeued.
func (w *SyncWorker) HandlePosting(ctx context.Context, msg *amqp.PostingMessage) error {
	w.logger.DebugContext(ctx, "Processing posting message",
		applog.FieldEntryID, msg.EntryID,
		applog.FieldScheduleID, msg.ScheduleID,
		applog.FieldKind, string(msg.Kind))

	if w.recent != nil {
		if ref, ok := w.recent.Get(msg.EntryID); ok {
			w.logger.InfoContext(ctx, "Skipping redelivered posting",
				applog.FieldEntryID, msg.EntryID,
				applog.FieldSheetsRef, ref)
			w.metrics.posting(resultDuplicate)
			return nil
		}
	}

	date, amount, err := msg.Parts()
	if err != nil {
		w.logger.ErrorContext(ctx, "Dropping malformed posting message",
			applog.FieldEntryID, msg.EntryID,
			applog.FieldError, err)
		w.metrics.posting(resultDropped)
		return nil
	}

	row := sheets.Row{
		EntryID:     msg.EntryID,
		Kind:        msg.Kind,
		Date:        date,
		Label:       msg.Label,
		Description: msg.Description,
		Amount:      amount,
	}
	ref, err := w.writer.AppendRow(ctx, row)
	if err != nil {
		w.metrics.posting(resultFailed)
		return fmt.Errorf("append to sheets: %w", err)
	}
	w.metrics.posting(resultSynced)
	if w.recent != nil {
		w.recent.Set(msg.EntryID, ref)
	}

	w.logger.InfoContext(ctx, "Successfully synced posting",
		applog.FieldEntryID, msg.EntryID,
		applog.FieldSheetsRef, ref,
		applog.FieldDate, msg.Date,
		applog.FieldAmount, msg.Amount)
	return nil
}

// SyncCategories adds every spreadsheet category missing from the local set,
// after the existing ones. It never removes local categories.
func (w *SyncWorker) SyncCategories(ctx context.Context) (added int, err error) {
	if w.taxonomy == nil || w.settings == nil {
		return 0, nil
	}

	remote, err := w.taxonomy.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("load categories from Google Sheets: %w", err)
	}
	local, err := w.settings.LoadCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("load local categories: %w", err)
	}

	merged, err := core.NewCategorySet(append(append([]string(nil), local...), remote...))
	if err != nil {
		return 0, err
	}
	added = len(merged) - len(local)
	if added == 0 {
		w.logger.DebugContext(ctx, "Categories already up to date", applog.FieldCount, len(local))
		w.metrics.categorySync(len(local), 0)
		return 0, nil
	}

	if err := w.settings.SaveCategories(ctx, merged); err != nil {
		return 0, fmt.Errorf("save categories: %w", err)
	}
	w.metrics.categorySync(len(merged), added)
	w.logger.InfoContext(ctx, "Categories merged from Google Sheets",
		"added", added,
		applog.FieldCount, len(merged))
	return added, nil
}
