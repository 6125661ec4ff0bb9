package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cashbook-hq/api/internal/database"
	"github.com/cashbook-hq/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// SalaryStore covers monthly salary runs and payment postings. Payments go
// through the main cash book, so the posting methods are embedded.
type SalaryStore interface {
	CashBookStore
	ListEmployees(ctx context.Context) ([]database.Employee, error)
	GetOvertimeRecord(ctx context.Context, arg database.GetOvertimeRecordParams) (database.OvertimeRecord, error)
	CreateSalary(ctx context.Context, arg database.CreateSalaryParams) (database.Salary, error)
	GetSalary(ctx context.Context, id uuid.UUID) (database.Salary, error)
	GetSalaryByEmployeeMonth(ctx context.Context, arg database.GetSalaryByEmployeeMonthParams) (database.Salary, error)
	MarkSalaryPaid(ctx context.Context, arg database.MarkSalaryPaidParams) (database.Salary, error)
}

// NewSalaryStore creates a SalaryStore from a DBTX (pool or tx).
type NewSalaryStore func(db database.DBTX) SalaryStore

// SalaryService computes monthly salaries and posts their payment to the
// main cash book. EPF is deducted from net pay; ETF is the employer's
// contribution and is recorded but never deducted.
type SalaryService struct {
	pool     TxBeginner
	newStore NewSalaryStore
	epfPct   decimal.Decimal
	etfPct   decimal.Decimal
}

func NewSalaryService(pool TxBeginner, newStore NewSalaryStore, epfPct, etfPct string) (*SalaryService, error) {
	epf, err := decimal.NewFromString(epfPct)
	if err != nil {
		return nil, fmt.Errorf("parse EPF percentage %q: %w", epfPct, err)
	}
	etf, err := decimal.NewFromString(etfPct)
	if err != nil {
		return nil, fmt.Errorf("parse ETF percentage %q: %w", etfPct, err)
	}
	return &SalaryService{pool: pool, newStore: newStore, epfPct: epf, etfPct: etf}, nil
}

// SalaryPaymentResult is a committed salary payment: the updated salary row
// and the cash book posting that funded it.
type SalaryPaymentResult struct {
	Salary  database.Salary
	Posting *CashBookPostResult
}

var oneHundred = decimal.NewFromInt(100)

// Calculate creates Pending salary rows for every active employee in the
// given month ("YYYY-MM"). Employees already calculated for that month are
// skipped, so the run is safe to repeat. Returns the rows created this run.
func (s *SalaryService) Calculate(ctx context.Context, month string) ([]database.Salary, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return nil, ErrInvalidMonth
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	store := s.newStore(tx)

	employees, err := store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	created := make([]database.Salary, 0, len(employees))
	for _, emp := range employees {
		_, err := store.GetSalaryByEmployeeMonth(ctx, database.GetSalaryByEmployeeMonthParams{
			EmployeeID: emp.ID,
			Month:      month,
		})
		if err == nil {
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}

		hours := decimal.Zero
		ot, err := store.GetOvertimeRecord(ctx, database.GetOvertimeRecordParams{
			EmployeeID: emp.ID,
			Month:      month,
		})
		if err == nil {
			hours = numericToDecimal(ot.Hours)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}

		basic := numericToDecimal(emp.BasicSalary)
		rate := numericToDecimal(emp.OvertimeRate)
		totalOvertime := hours.Mul(rate)
		epf := basic.Mul(s.epfPct).Div(oneHundred)
		etf := basic.Mul(s.etfPct).Div(oneHundred)
		net := basic.Add(totalOvertime).Sub(epf)

		sal, err := store.CreateSalary(ctx, database.CreateSalaryParams{
			EmployeeID:    emp.ID,
			EmpID:         emp.EmpID,
			EmployeeName:  emp.Name,
			Month:         month,
			BasicSalary:   decimalToNumeric(basic),
			OvertimeHours: decimalToNumeric(hours),
			OvertimeRate:  decimalToNumeric(rate),
			TotalOvertime: decimalToNumeric(totalOvertime),
			Epf:           decimalToNumeric(epf),
			Etf:           decimalToNumeric(etf),
			NetSalary:     decimalToNumeric(net),
			Status:        enum.SalaryStatusPending,
		})
		if err != nil {
			return nil, err
		}
		created = append(created, sal)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

// MarkPaid settles a Pending salary: the row flips to Completed and the net
// amount leaves the main cash book as a salary outflow, all in one
// transaction.
func (s *SalaryService) MarkPaid(ctx context.Context, id uuid.UUID) (*SalaryPaymentResult, error) {
	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		result, err := s.markPaidTx(ctx, id)
		if errors.Is(err, errStaleBalance) {
			continue
		}
		return result, err
	}
	return nil, ErrBalanceConflict
}

func (s *SalaryService) markPaidTx(ctx context.Context, id uuid.UUID) (*SalaryPaymentResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	store := s.newStore(tx)

	sal, err := store.GetSalary(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSalaryNotFound
		}
		return nil, err
	}
	if sal.Status == enum.SalaryStatusCompleted {
		return nil, ErrAlreadyPaid
	}

	now := time.Now()
	paid, err := store.MarkSalaryPaid(ctx, database.MarkSalaryPaidParams{
		ID:          id,
		Status:      enum.SalaryStatusCompleted,
		PaymentDate: pgtype.Timestamptz{Time: now, Valid: true},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyPaid
		}
		return nil, err
	}

	posting, err := postCashBook(ctx, store, cashMovement{
		date:           pgtype.Date{Time: now, Valid: true},
		description:    fmt.Sprintf("Salary payment for %s (%s)", paid.EmployeeName, paid.Month),
		amount:         numericToDecimal(paid.NetSalary),
		entryType:      enum.CashBookTypeOutflow,
		category:       enum.CashBookCategorySalary,
		ledgerCategory: enum.LedgerCategorySalaryPayment,
		referenceID:    pgtype.UUID{Bytes: paid.ID, Valid: true},
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &SalaryPaymentResult{Salary: paid, Posting: posting}, nil
}
