package sqlite

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Row types keep the raw TEXT columns; decoding into core types happens in
// the repository so malformed rows can be reported instead of failing a load.

type ExpenseRow struct {
	ID          string
	Date        string
	Category    string
	Description string
	Amount      string
	ScheduleID  string
}

type IncomeRow struct {
	ID         string
	Date       string
	Source     string
	Amount     string
	ScheduleID string
}

type ScheduleRow struct {
	ID             string
	Kind           string
	Label          string
	Description    string
	Amount         string
	Frequency      string
	NextOccurrence string
}

type BudgetRow struct {
	Category string
	Amount   string
}

const listExpenses = `-- name: ListExpenses :many
SELECT id, date, category, description, amount, schedule_id FROM expenses ORDER BY seq`

func (q *Queries) ListExpenses(ctx context.Context) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRow
	for rows.Next() {
		var i ExpenseRow
		if err := rows.Scan(&i.ID, &i.Date, &i.Category, &i.Description, &i.Amount, &i.ScheduleID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertExpense = `-- name: InsertExpense :exec
INSERT INTO expenses (id, date, category, description, amount, schedule_id) VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertExpense(ctx context.Context, arg ExpenseRow) error {
	_, err := q.db.ExecContext(ctx, insertExpense, arg.ID, arg.Date, arg.Category, arg.Description, arg.Amount, arg.ScheduleID)
	return err
}

const updateExpense = `-- name: UpdateExpense :execrows
UPDATE expenses SET date = ?, category = ?, description = ?, amount = ?, schedule_id = ? WHERE id = ?`

func (q *Queries) UpdateExpense(ctx context.Context, arg ExpenseRow) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateExpense, arg.Date, arg.Category, arg.Description, arg.Amount, arg.ScheduleID, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteExpense = `-- name: DeleteExpense :execrows
DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAllExpenses = `-- name: DeleteAllExpenses :exec
DELETE FROM expenses`

func (q *Queries) DeleteAllExpenses(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllExpenses)
	return err
}

const listIncome = `-- name: ListIncome :many
SELECT id, date, source, amount, schedule_id FROM income ORDER BY seq`

func (q *Queries) ListIncome(ctx context.Context) ([]IncomeRow, error) {
	rows, err := q.db.QueryContext(ctx, listIncome)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []IncomeRow
	for rows.Next() {
		var i IncomeRow
		if err := rows.Scan(&i.ID, &i.Date, &i.Source, &i.Amount, &i.ScheduleID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertIncome = `-- name: InsertIncome :exec
INSERT INTO income (id, date, source, amount, schedule_id) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) InsertIncome(ctx context.Context, arg IncomeRow) error {
	_, err := q.db.ExecContext(ctx, insertIncome, arg.ID, arg.Date, arg.Source, arg.Amount, arg.ScheduleID)
	return err
}

const updateIncome = `-- name: UpdateIncome :execrows
UPDATE income SET date = ?, source = ?, amount = ?, schedule_id = ? WHERE id = ?`

func (q *Queries) UpdateIncome(ctx context.Context, arg IncomeRow) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateIncome, arg.Date, arg.Source, arg.Amount, arg.ScheduleID, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteIncome = `-- name: DeleteIncome :execrows
DELETE FROM income WHERE id = ?`

func (q *Queries) DeleteIncome(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteIncome, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAllIncome = `-- name: DeleteAllIncome :exec
DELETE FROM income`

func (q *Queries) DeleteAllIncome(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllIncome)
	return err
}

const listSchedules = `-- name: ListSchedules :many
SELECT id, kind, label, description, amount, frequency, next_occurrence FROM schedules ORDER BY seq`

func (q *Queries) ListSchedules(ctx context.Context) ([]ScheduleRow, error) {
	rows, err := q.db.QueryContext(ctx, listSchedules)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ScheduleRow
	for rows.Next() {
		var i ScheduleRow
		if err := rows.Scan(&i.ID, &i.Kind, &i.Label, &i.Description, &i.Amount, &i.Frequency, &i.NextOccurrence); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertSchedule = `-- name: InsertSchedule :exec
INSERT INTO schedules (id, kind, label, description, amount, frequency, next_occurrence) VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertSchedule(ctx context.Context, arg ScheduleRow) error {
	_, err := q.db.ExecContext(ctx, insertSchedule, arg.ID, arg.Kind, arg.Label, arg.Description, arg.Amount, arg.Frequency, arg.NextOccurrence)
	return err
}

const updateSchedule = `-- name: UpdateSchedule :execrows
UPDATE schedules SET kind = ?, label = ?, description = ?, amount = ?, frequency = ?, next_occurrence = ? WHERE id = ?`

func (q *Queries) UpdateSchedule(ctx context.Context, arg ScheduleRow) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateSchedule, arg.Kind, arg.Label, arg.Description, arg.Amount, arg.Frequency, arg.NextOccurrence, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteSchedule = `-- name: DeleteSchedule :execrows
DELETE FROM schedules WHERE id = ?`

func (q *Queries) DeleteSchedule(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteSchedule, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAllSchedules = `-- name: DeleteAllSchedules :exec
DELETE FROM schedules`

func (q *Queries) DeleteAllSchedules(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllSchedules)
	return err
}

const listCategories = `-- name: ListCategories :many
SELECT name FROM categories ORDER BY position`

func (q *Queries) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertCategory = `-- name: InsertCategory :exec
INSERT INTO categories (position, name) VALUES (?, ?)`

func (q *Queries) InsertCategory(ctx context.Context, position int64, name string) error {
	_, err := q.db.ExecContext(ctx, insertCategory, position, name)
	return err
}

const deleteAllCategories = `-- name: DeleteAllCategories :exec
DELETE FROM categories`

func (q *Queries) DeleteAllCategories(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllCategories)
	return err
}

const listBudgets = `-- name: ListBudgets :many
SELECT category, amount FROM budgets ORDER BY category`

func (q *Queries) ListBudgets(ctx context.Context) ([]BudgetRow, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BudgetRow
	for rows.Next() {
		var i BudgetRow
		if err := rows.Scan(&i.Category, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertBudget = `-- name: UpsertBudget :exec
INSERT INTO budgets (category, amount) VALUES (?, ?)
ON CONFLICT(category) DO UPDATE SET amount = excluded.amount`

func (q *Queries) UpsertBudget(ctx context.Context, arg BudgetRow) error {
	_, err := q.db.ExecContext(ctx, upsertBudget, arg.Category, arg.Amount)
	return err
}

const deleteAllBudgets = `-- name: DeleteAllBudgets :exec
DELETE FROM budgets`

func (q *Queries) DeleteAllBudgets(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllBudgets)
	return err
}
