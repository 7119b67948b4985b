package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// PostingMessage announces one ledger entry materialized by the recurrence
// engine. It carries the full entry so consumers never read the store.
type PostingMessage struct {
	EntryID     string    `json:"entry_id"`
	ScheduleID  string    `json:"schedule_id"`
	Kind        core.Kind `json:"kind"`
	Date        string    `json:"date"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	Amount      string    `json:"amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpensePosting builds the message for a posted expense.
func NewExpensePosting(e core.Expense) *PostingMessage {
	return &PostingMessage{
		EntryID:     e.ID,
		ScheduleID:  e.ScheduleID,
		Kind:        core.KindExpense,
		Date:        e.Date.String(),
		Label:       e.Category,
		Description: e.Description,
		Amount:      e.Amount.String(),
		Timestamp:   time.Now(),
	}
}

// NewIncomePosting builds the message for a posted income entry.
func NewIncomePosting(i core.Income) *PostingMessage {
	return &PostingMessage{
		EntryID:    i.ID,
		ScheduleID: i.ScheduleID,
		Kind:       core.KindIncome,
		Date:       i.Date.String(),
		Label:      i.Source,
		Amount:     i.Amount.String(),
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *PostingMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PostingMessageFromJSON decodes and validates a message body.
func PostingMessageFromJSON(data []byte) (*PostingMessage, error) {
	var msg PostingMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidKind, msg.Kind)
	}
	return &msg, nil
}

// Parts decodes the date and amount fields.
func (m *PostingMessage) Parts() (core.Date, decimal.Decimal, error) {
	date, err := core.ParseDate(m.Date)
	if err != nil {
		return core.Date{}, decimal.Zero, err
	}
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return core.Date{}, decimal.Zero, fmt.Errorf("%w: %q", core.ErrInvalidAmount, m.Amount)
	}
	return date, amount, nil
}
