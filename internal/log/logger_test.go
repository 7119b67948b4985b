package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestLogger_JSONAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentRecurring, Format: FormatJSON, Output: &buf})

	logger.WithComponent(ComponentStorage).Info("hello", FieldCount, 2)
	logger.Debug("dropped")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, ComponentStorage, rec[FieldComponent])
	assert.EqualValues(t, 2, rec[FieldCount])
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, ComponentApp, FromContext(context.Background()).Component())

	logger := New(Config{Component: ComponentCLI, Format: FormatText, Output: &bytes.Buffer{}})
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestLogFields_WithWarning(t *testing.T) {
	w := core.Warning{Err: errors.New("bad date"), Collection: "expenses", RecordID: "e1"}
	f := NewFields().WithWarning(w).WithOperation(OpCatchUp)

	assert.Equal(t, "expenses", f[FieldCollection])
	assert.Equal(t, "e1", f[FieldRecordID])
	assert.Equal(t, "bad date", f[FieldError])
	assert.Len(t, f.ToSlice(), 8)
}
