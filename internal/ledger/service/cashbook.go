package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cashbook-hq/api/internal/database"
	"github.com/cashbook-hq/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

var validCashBookTypes = map[string]bool{
	enum.CashBookTypeInflow:  true,
	enum.CashBookTypeOutflow: true,
}

var validCashBookCategories = map[string]bool{
	enum.CashBookCategorySalary:          true,
	enum.CashBookCategoryReimbursement:   true,
	enum.CashBookCategoryOrderIncome:     true,
	enum.CashBookCategoryPettyCashExcess: true,
	enum.CashBookCategoryInitialCash:     true,
}

// NewCashBookStore creates a CashBookStore from a DBTX (pool or tx).
type NewCashBookStore func(db database.DBTX) CashBookStore

// CashBookService posts entries to the main cash book.
type CashBookService struct {
	pool     TxBeginner
	newStore NewCashBookStore
}

func NewCashBookService(pool TxBeginner, newStore NewCashBookStore) *CashBookService {
	return &CashBookService{pool: pool, newStore: newStore}
}

// PostCashBookRequest is the raw input for a cash book posting.
type PostCashBookRequest struct {
	Date        string
	Description string
	Amount      string
	Type        string
	Category    string
	ReferenceID string // optional UUID of the originating record
}

// PostEntry validates the request and applies it to the main balance, journal
// and ledger in a single transaction. Lost balance races are retried.
func (s *CashBookService) PostEntry(ctx context.Context, req PostCashBookRequest) (*CashBookPostResult, error) {
	if req.Description == "" {
		return nil, ErrDescriptionRequired
	}
	if !validCashBookTypes[req.Type] {
		return nil, ErrInvalidEntryType
	}
	if !validCashBookCategories[req.Category] {
		return nil, ErrInvalidCategory
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	date, err := parseEntryDate(req.Date)
	if err != nil {
		return nil, err
	}

	var referenceID pgtype.UUID
	if req.ReferenceID != "" {
		id, err := uuid.Parse(req.ReferenceID)
		if err != nil {
			return nil, ErrInvalidReferenceID
		}
		referenceID = pgtype.UUID{Bytes: id, Valid: true}
	}

	mv := cashMovement{
		date:        date,
		description: req.Description,
		amount:      amount,
		entryType:   req.Type,
		category:    req.Category,
		referenceID: referenceID,
	}

	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		result, err := s.postTx(ctx, mv)
		if errors.Is(err, errStaleBalance) {
			continue
		}
		return result, err
	}
	return nil, ErrBalanceConflict
}

func (s *CashBookService) postTx(ctx context.Context, mv cashMovement) (*CashBookPostResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	result, err := postCashBook(ctx, s.newStore(tx), mv)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return result, nil
}
