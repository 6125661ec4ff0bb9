package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createCashBookEntry = `
INSERT INTO cash_book_entries (entry_date, description, amount, entry_type, category, reference_id, balance)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, entry_date, description, amount, entry_type, category, reference_id, balance, created_at
`

type CreateCashBookEntryParams struct {
	EntryDate   pgtype.Date
	Description string
	Amount      pgtype.Numeric
	EntryType   string
	Category    string
	ReferenceID pgtype.UUID
	Balance     pgtype.Numeric
}

func (q *Queries) CreateCashBookEntry(ctx context.Context, arg CreateCashBookEntryParams) (CashBookEntry, error) {
	row := q.db.QueryRow(ctx, createCashBookEntry,
		arg.EntryDate,
		arg.Description,
		arg.Amount,
		arg.EntryType,
		arg.Category,
		arg.ReferenceID,
		arg.Balance,
	)
	var i CashBookEntry
	err := row.Scan(&i.ID, &i.EntryDate, &i.Description, &i.Amount, &i.EntryType, &i.Category, &i.ReferenceID, &i.Balance, &i.CreatedAt)
	return i, err
}

const getCashBookEntry = `
SELECT id, entry_date, description, amount, entry_type, category, reference_id, balance, created_at
FROM cash_book_entries
WHERE id = $1
`

func (q *Queries) GetCashBookEntry(ctx context.Context, id uuid.UUID) (CashBookEntry, error) {
	row := q.db.QueryRow(ctx, getCashBookEntry, id)
	var i CashBookEntry
	err := row.Scan(&i.ID, &i.EntryDate, &i.Description, &i.Amount, &i.EntryType, &i.Category, &i.ReferenceID, &i.Balance, &i.CreatedAt)
	return i, err
}

const listCashBookEntries = `
SELECT id, entry_date, description, amount, entry_type, category, reference_id, balance, created_at
FROM cash_book_entries
WHERE ($3::date IS NULL OR entry_date >= $3)
  AND ($4::date IS NULL OR entry_date <= $4)
  AND ($5::text IS NULL OR entry_type = $5)
  AND ($6::text IS NULL OR category = $6)
ORDER BY entry_date DESC, created_at DESC
LIMIT $1 OFFSET $2
`

type ListCashBookEntriesParams struct {
	Limit     int32
	Offset    int32
	StartDate pgtype.Date
	EndDate   pgtype.Date
	EntryType pgtype.Text
	Category  pgtype.Text
}

func (q *Queries) ListCashBookEntries(ctx context.Context, arg ListCashBookEntriesParams) ([]CashBookEntry, error) {
	rows, err := q.db.Query(ctx, listCashBookEntries,
		arg.Limit,
		arg.Offset,
		arg.StartDate,
		arg.EndDate,
		arg.EntryType,
		arg.Category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CashBookEntry
	for rows.Next() {
		var i CashBookEntry
		if err := rows.Scan(&i.ID, &i.EntryDate, &i.Description, &i.Amount, &i.EntryType, &i.Category, &i.ReferenceID, &i.Balance, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
