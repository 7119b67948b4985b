package log

import "fintrack/internal/core"

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldDate       = "date"
	FieldToday      = "today"
	FieldAmount     = "amount"
	FieldKind       = "kind"
	FieldFrequency  = "frequency"
	FieldScheduleID = "schedule_id"
	FieldEntryID    = "entry_id"
	FieldCollection = "collection"
	FieldRecordID   = "record_id"
	FieldSheetsRef  = "sheets_ref"
	FieldBackend    = "backend"
	FieldDBPath     = "db_path"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentCLI       = "cli"
	ComponentRecurring = "recurring"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpAppend   = "append"
	OpCatchUp  = "catch_up"
	OpImport   = "import"
	OpExport   = "export"
	OpSync     = "sync"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithSchedule adds the identifying fields of a recurring schedule.
func (f LogFields) WithSchedule(s core.Schedule) LogFields {
	f[FieldScheduleID] = s.ID
	f[FieldKind] = string(s.Kind)
	f[FieldFrequency] = string(s.Frequency)
	f[FieldDate] = s.NextOccurrence.String()
	return f
}

// WithWarning adds the fields of a skipped record.
func (f LogFields) WithWarning(w core.Warning) LogFields {
	f[FieldCollection] = w.Collection
	f[FieldRecordID] = w.RecordID
	return f.WithError(w.Err)
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
