package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getCashBalance = `
SELECT id, scope, balance, initial_amount, version, last_updated
FROM cash_balances
WHERE scope = $1
`

func (q *Queries) GetCashBalance(ctx context.Context, scope string) (CashBalance, error) {
	row := q.db.QueryRow(ctx, getCashBalance, scope)
	var i CashBalance
	err := row.Scan(&i.ID, &i.Scope, &i.Balance, &i.InitialAmount, &i.Version, &i.LastUpdated)
	return i, err
}

const createCashBalance = `
INSERT INTO cash_balances (scope, balance, initial_amount, version, last_updated)
VALUES ($1, $2, $3, 1, now())
RETURNING id, scope, balance, initial_amount, version, last_updated
`

type CreateCashBalanceParams struct {
	Scope         string
	Balance       pgtype.Numeric
	InitialAmount pgtype.Numeric
}

func (q *Queries) CreateCashBalance(ctx context.Context, arg CreateCashBalanceParams) (CashBalance, error) {
	row := q.db.QueryRow(ctx, createCashBalance, arg.Scope, arg.Balance, arg.InitialAmount)
	var i CashBalance
	err := row.Scan(&i.ID, &i.Scope, &i.Balance, &i.InitialAmount, &i.Version, &i.LastUpdated)
	return i, err
}

const updateCashBalance = `
UPDATE cash_balances
SET balance = $3, initial_amount = $4, version = version + 1, last_updated = now()
WHERE scope = $1 AND version = $2
RETURNING id, scope, balance, initial_amount, version, last_updated
`

// UpdateCashBalanceParams carries the version the caller read; the update is a
// compare-and-swap and returns pgx.ErrNoRows when a concurrent writer got
// there first.
type UpdateCashBalanceParams struct {
	Scope         string
	Version       int32
	Balance       pgtype.Numeric
	InitialAmount pgtype.Numeric
}

func (q *Queries) UpdateCashBalance(ctx context.Context, arg UpdateCashBalanceParams) (CashBalance, error) {
	row := q.db.QueryRow(ctx, updateCashBalance, arg.Scope, arg.Version, arg.Balance, arg.InitialAmount)
	var i CashBalance
	err := row.Scan(&i.ID, &i.Scope, &i.Balance, &i.InitialAmount, &i.Version, &i.LastUpdated)
	return i, err
}

const deleteCashBalance = `
DELETE FROM cash_balances
WHERE scope = $1 AND version = $2
RETURNING id
`

type DeleteCashBalanceParams struct {
	Scope   string
	Version int32
}

func (q *Queries) DeleteCashBalance(ctx context.Context, arg DeleteCashBalanceParams) error {
	row := q.db.QueryRow(ctx, deleteCashBalance, arg.Scope, arg.Version)
	var id pgtype.UUID
	return row.Scan(&id)
}
