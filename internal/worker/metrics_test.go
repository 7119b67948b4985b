package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

func TestMetrics_CountsPostingOutcomes(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics(prometheus.NewRegistry())
	fake := &fakeSheets{}
	w := NewSyncWorker(fake, nil, nil, quietLogger()).
		WithDedup(cache.NewLRUCache[string](10, time.Hour)).
		WithMetrics(m)

	msg := amqp.NewExpensePosting(core.Expense{
		ID: "e-1", Date: core.NewDate(2025, 1, 31), Category: "Rent", Amount: decimal.NewFromInt(950),
	})
	require.NoError(t, w.HandlePosting(ctx, msg))
	require.NoError(t, w.HandlePosting(ctx, msg))
	require.NoError(t, w.HandlePosting(ctx, &amqp.PostingMessage{EntryID: "bad", Kind: core.KindExpense, Date: "nope", Amount: "1"}))

	fake.appendErr = errors.New("unavailable")
	other := amqp.NewExpensePosting(core.Expense{
		ID: "e-2", Date: core.NewDate(2025, 2, 28), Category: "Rent", Amount: decimal.NewFromInt(950),
	})
	require.Error(t, w.HandlePosting(ctx, other))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.postings.WithLabelValues(resultSynced)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.postings.WithLabelValues(resultDuplicate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.postings.WithLabelValues(resultDropped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.postings.WithLabelValues(resultFailed)))
}

func TestMetrics_CategorySync(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	fake := &fakeSheets{categories: []string{"Food", "Pets"}}
	w := NewSyncWorker(fake, fake, memory.New([]string{"Food"}), quietLogger()).WithMetrics(m)

	_, err := w.SyncCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.categories))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.added))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.posting(resultSynced)
	m.categorySync(3, 1)
}
