package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const createPettyCashEntry = `
INSERT INTO petty_cash_entries (entry_date, description, amount, entry_type, category, balance)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, entry_date, description, amount, entry_type, category, balance, created_at
`

type CreatePettyCashEntryParams struct {
	EntryDate   pgtype.Date
	Description string
	Amount      pgtype.Numeric
	EntryType   string
	Category    string
	Balance     pgtype.Numeric
}

func (q *Queries) CreatePettyCashEntry(ctx context.Context, arg CreatePettyCashEntryParams) (PettyCashEntry, error) {
	row := q.db.QueryRow(ctx, createPettyCashEntry,
		arg.EntryDate,
		arg.Description,
		arg.Amount,
		arg.EntryType,
		arg.Category,
		arg.Balance,
	)
	var i PettyCashEntry
	err := row.Scan(&i.ID, &i.EntryDate, &i.Description, &i.Amount, &i.EntryType, &i.Category, &i.Balance, &i.CreatedAt)
	return i, err
}

const getPettyCashEntry = `
SELECT id, entry_date, description, amount, entry_type, category, balance, created_at
FROM petty_cash_entries
WHERE id = $1
`

func (q *Queries) GetPettyCashEntry(ctx context.Context, id uuid.UUID) (PettyCashEntry, error) {
	row := q.db.QueryRow(ctx, getPettyCashEntry, id)
	var i PettyCashEntry
	err := row.Scan(&i.ID, &i.EntryDate, &i.Description, &i.Amount, &i.EntryType, &i.Category, &i.Balance, &i.CreatedAt)
	return i, err
}

const listPettyCashEntries = `
SELECT id, entry_date, description, amount, entry_type, category, balance, created_at
FROM petty_cash_entries
WHERE ($3::date IS NULL OR entry_date >= $3)
  AND ($4::date IS NULL OR entry_date <= $4)
  AND ($5::text IS NULL OR entry_type = $5)
ORDER BY entry_date DESC, created_at DESC
LIMIT $1 OFFSET $2
`

type ListPettyCashEntriesParams struct {
	Limit     int32
	Offset    int32
	StartDate pgtype.Date
	EndDate   pgtype.Date
	EntryType pgtype.Text
}

func (q *Queries) ListPettyCashEntries(ctx context.Context, arg ListPettyCashEntriesParams) ([]PettyCashEntry, error) {
	rows, err := q.db.Query(ctx, listPettyCashEntries,
		arg.Limit,
		arg.Offset,
		arg.StartDate,
		arg.EndDate,
		arg.EntryType,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PettyCashEntry
	for rows.Next() {
		var i PettyCashEntry
		if err := rows.Scan(&i.ID, &i.EntryDate, &i.Description, &i.Amount, &i.EntryType, &i.Category, &i.Balance, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updatePettyCashEntry = `
UPDATE petty_cash_entries
SET entry_date = $2, description = $3, amount = $4, entry_type = $5, category = $6, balance = $7
WHERE id = $1
RETURNING id, entry_date, description, amount, entry_type, category, balance, created_at
`

type UpdatePettyCashEntryParams struct {
	ID          uuid.UUID
	EntryDate   pgtype.Date
	Description string
	Amount      pgtype.Numeric
	EntryType   string
	Category    string
	Balance     pgtype.Numeric
}

func (q *Queries) UpdatePettyCashEntry(ctx context.Context, arg UpdatePettyCashEntryParams) (PettyCashEntry, error) {
	row := q.db.QueryRow(ctx, updatePettyCashEntry,
		arg.ID,
		arg.EntryDate,
		arg.Description,
		arg.Amount,
		arg.EntryType,
		arg.Category,
		arg.Balance,
	)
	var i PettyCashEntry
	err := row.Scan(&i.ID, &i.EntryDate, &i.Description, &i.Amount, &i.EntryType, &i.Category, &i.Balance, &i.CreatedAt)
	return i, err
}

const deletePettyCashEntry = `
DELETE FROM petty_cash_entries
WHERE id = $1
`

func (q *Queries) DeletePettyCashEntry(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, deletePettyCashEntry, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
