package service

import (
	"context"
	"errors"
	"time"

	"github.com/cashbook-hq/api/internal/database"
	"github.com/cashbook-hq/api/internal/enum"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// maxBalanceRetries bounds how often a posting is retried after losing the
// balance compare-and-swap to a concurrent writer.
const maxBalanceRetries = 3

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// BalanceStore covers the singleton balance rows. Satisfied by
// *database.Queries (and its WithTx variant).
type BalanceStore interface {
	GetCashBalance(ctx context.Context, scope string) (database.CashBalance, error)
	CreateCashBalance(ctx context.Context, arg database.CreateCashBalanceParams) (database.CashBalance, error)
	UpdateCashBalance(ctx context.Context, arg database.UpdateCashBalanceParams) (database.CashBalance, error)
}

// CashBookStore is everything a main-account posting touches.
type CashBookStore interface {
	BalanceStore
	CreateCashBookEntry(ctx context.Context, arg database.CreateCashBookEntryParams) (database.CashBookEntry, error)
	CreateLedgerEntry(ctx context.Context, arg database.CreateLedgerEntryParams) (database.LedgerEntry, error)
}

// CashBookPostResult is a committed cash book posting: the journal entry, its
// ledger cross-reference, and the main balance after the write.
type CashBookPostResult struct {
	Entry   database.CashBookEntry
	Ledger  database.LedgerEntry
	Balance decimal.Decimal
}

// cashMovement is a prepared main-account posting. ledgerCategory overrides
// the ledger row's category when it differs from the journal category
// (salary postings are tagged SalaryPayment).
type cashMovement struct {
	date           pgtype.Date
	description    string
	amount         decimal.Decimal
	entryType      string
	category       string
	ledgerCategory string
	referenceID    pgtype.UUID
}

// postCashBook applies a movement to the main balance and writes the journal
// and ledger rows. The caller supplies a transaction-scoped store; all writes
// commit or roll back together.
func postCashBook(ctx context.Context, store CashBookStore, mv cashMovement) (*CashBookPostResult, error) {
	var newBalance decimal.Decimal

	bal, err := store.GetCashBalance(ctx, enum.ScopeMain)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// First ever posting seeds the balance. An outflow has nothing to
		// draw from.
		if mv.entryType == enum.CashBookTypeOutflow {
			return nil, ErrInsufficientFunds
		}
		newBalance = mv.amount
		if _, err := store.CreateCashBalance(ctx, database.CreateCashBalanceParams{
			Scope:         enum.ScopeMain,
			Balance:       decimalToNumeric(newBalance),
			InitialAmount: decimalToNumeric(newBalance),
		}); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		current := numericToDecimal(bal.Balance)
		if mv.entryType == enum.CashBookTypeOutflow {
			if current.LessThan(mv.amount) {
				return nil, ErrInsufficientFunds
			}
			newBalance = current.Sub(mv.amount)
		} else {
			newBalance = current.Add(mv.amount)
		}
		if _, err := store.UpdateCashBalance(ctx, database.UpdateCashBalanceParams{
			Scope:         enum.ScopeMain,
			Version:       bal.Version,
			Balance:       decimalToNumeric(newBalance),
			InitialAmount: bal.InitialAmount,
		}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, errStaleBalance
			}
			return nil, err
		}
	}

	entry, err := store.CreateCashBookEntry(ctx, database.CreateCashBookEntryParams{
		EntryDate:   mv.date,
		Description: mv.description,
		Amount:      decimalToNumeric(mv.amount),
		EntryType:   mv.entryType,
		Category:    mv.category,
		ReferenceID: mv.referenceID,
		Balance:     decimalToNumeric(newBalance),
	})
	if err != nil {
		return nil, err
	}

	ledgerCategory := mv.ledgerCategory
	if ledgerCategory == "" {
		ledgerCategory = mv.category
	}
	led, err := store.CreateLedgerEntry(ctx, database.CreateLedgerEntryParams{
		EntryDate:       mv.date,
		Description:     mv.description,
		Amount:          decimalToNumeric(mv.amount),
		Category:        ledgerCategory,
		Source:          enum.LedgerSourceCashBook,
		TransactionID:   entry.ID,
		TransactionType: enum.TransactionTypeCashBook,
	})
	if err != nil {
		return nil, err
	}

	return &CashBookPostResult{Entry: entry, Ledger: led, Balance: newBalance}, nil
}

// writePettyBalance swaps the petty balance row to the given values; maps a
// lost compare-and-swap to errStaleBalance.
func writePettyBalance(ctx context.Context, store BalanceStore, bal database.CashBalance, balance, initial decimal.Decimal) error {
	_, err := store.UpdateCashBalance(ctx, database.UpdateCashBalanceParams{
		Scope:         enum.ScopePetty,
		Version:       bal.Version,
		Balance:       decimalToNumeric(balance),
		InitialAmount: decimalToNumeric(initial),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return errStaleBalance
	}
	return err
}

// --- Parsing and conversion helpers ---

// parseEntryDate accepts YYYY-MM-DD, defaulting to today when empty.
func parseEntryDate(s string) (pgtype.Date, error) {
	if s == "" {
		return pgtype.Date{Time: time.Now(), Valid: true}, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return pgtype.Date{}, ErrInvalidDate
	}
	return pgtype.Date{Time: d, Valid: true}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
