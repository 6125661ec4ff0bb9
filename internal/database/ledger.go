package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const createLedgerEntry = `
INSERT INTO ledger_entries (entry_date, description, amount, category, source, transaction_id, transaction_type)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, entry_date, description, amount, category, source, transaction_id, transaction_type, created_at
`

type CreateLedgerEntryParams struct {
	EntryDate       pgtype.Date
	Description     string
	Amount          pgtype.Numeric
	Category        string
	Source          string
	TransactionID   uuid.UUID
	TransactionType string
}

func (q *Queries) CreateLedgerEntry(ctx context.Context, arg CreateLedgerEntryParams) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, createLedgerEntry,
		arg.EntryDate,
		arg.Description,
		arg.Amount,
		arg.Category,
		arg.Source,
		arg.TransactionID,
		arg.TransactionType,
	)
	var i LedgerEntry
	err := row.Scan(&i.ID, &i.EntryDate, &i.Description, &i.Amount, &i.Category, &i.Source, &i.TransactionID, &i.TransactionType, &i.CreatedAt)
	return i, err
}

const getLedgerEntry = `
SELECT id, entry_date, description, amount, category, source, transaction_id, transaction_type, created_at
FROM ledger_entries
WHERE id = $1
`

func (q *Queries) GetLedgerEntry(ctx context.Context, id uuid.UUID) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, getLedgerEntry, id)
	var i LedgerEntry
	err := row.Scan(&i.ID, &i.EntryDate, &i.Description, &i.Amount, &i.Category, &i.Source, &i.TransactionID, &i.TransactionType, &i.CreatedAt)
	return i, err
}

const listLedgerEntries = `
SELECT id, entry_date, description, amount, category, source, transaction_id, transaction_type, created_at
FROM ledger_entries
WHERE ($3::date IS NULL OR entry_date >= $3)
  AND ($4::date IS NULL OR entry_date <= $4)
  AND ($5::text IS NULL OR source = $5)
  AND ($6::text IS NULL OR category = $6)
ORDER BY entry_date DESC, created_at DESC
LIMIT $1 OFFSET $2
`

type ListLedgerEntriesParams struct {
	Limit     int32
	Offset    int32
	StartDate pgtype.Date
	EndDate   pgtype.Date
	Source    pgtype.Text
	Category  pgtype.Text
}

func (q *Queries) ListLedgerEntries(ctx context.Context, arg ListLedgerEntriesParams) ([]LedgerEntry, error) {
	rows, err := q.db.Query(ctx, listLedgerEntries,
		arg.Limit,
		arg.Offset,
		arg.StartDate,
		arg.EndDate,
		arg.Source,
		arg.Category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerEntry
	for rows.Next() {
		var i LedgerEntry
		if err := rows.Scan(&i.ID, &i.EntryDate, &i.Description, &i.Amount, &i.Category, &i.Source, &i.TransactionID, &i.TransactionType, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateLedgerEntryByTransaction = `
UPDATE ledger_entries
SET entry_date = $3, description = $4, amount = $5, category = $6
WHERE transaction_id = $1 AND transaction_type = $2
RETURNING id, entry_date, description, amount, category, source, transaction_id, transaction_type, created_at
`

type UpdateLedgerEntryByTransactionParams struct {
	TransactionID   uuid.UUID
	TransactionType string
	EntryDate       pgtype.Date
	Description     string
	Amount          pgtype.Numeric
	Category        string
}

func (q *Queries) UpdateLedgerEntryByTransaction(ctx context.Context, arg UpdateLedgerEntryByTransactionParams) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, updateLedgerEntryByTransaction,
		arg.TransactionID,
		arg.TransactionType,
		arg.EntryDate,
		arg.Description,
		arg.Amount,
		arg.Category,
	)
	var i LedgerEntry
	err := row.Scan(&i.ID, &i.EntryDate, &i.Description, &i.Amount, &i.Category, &i.Source, &i.TransactionID, &i.TransactionType, &i.CreatedAt)
	return i, err
}

const deleteLedgerEntryByTransaction = `
DELETE FROM ledger_entries
WHERE transaction_id = $1 AND transaction_type = $2
`

type DeleteLedgerEntryByTransactionParams struct {
	TransactionID   uuid.UUID
	TransactionType string
}

func (q *Queries) DeleteLedgerEntryByTransaction(ctx context.Context, arg DeleteLedgerEntryByTransactionParams) error {
	tag, err := q.db.Exec(ctx, deleteLedgerEntryByTransaction, arg.TransactionID, arg.TransactionType)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
