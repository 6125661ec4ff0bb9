package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// CashBalance is the singleton balance row for a cash scope ("main" or
// "petty"). Version is the optimistic-concurrency token: every write bumps it
// and must match the version it read.
type CashBalance struct {
	ID            uuid.UUID
	Scope         string
	Balance       pgtype.Numeric
	InitialAmount pgtype.Numeric
	Version       int32
	LastUpdated   time.Time
}

// CashBookEntry is a dated cash movement on the main account. Balance is the
// snapshot of the main balance immediately after this entry was applied.
type CashBookEntry struct {
	ID          uuid.UUID
	EntryDate   pgtype.Date
	Description string
	Amount      pgtype.Numeric
	EntryType   string
	Category    string
	ReferenceID pgtype.UUID
	Balance     pgtype.Numeric
	CreatedAt   time.Time
}

// PettyCashEntry is a dated movement on the petty cash sub-account.
type PettyCashEntry struct {
	ID          uuid.UUID
	EntryDate   pgtype.Date
	Description string
	Amount      pgtype.Numeric
	EntryType   string
	Category    string
	Balance     pgtype.Numeric
	CreatedAt   time.Time
}

// LedgerEntry cross-references a journal entry (cash book or petty cash) with
// a reporting category and source.
type LedgerEntry struct {
	ID              uuid.UUID
	EntryDate       pgtype.Date
	Description     string
	Amount          pgtype.Numeric
	Category        string
	Source          string
	TransactionID   uuid.UUID
	TransactionType string
	CreatedAt       time.Time
}

type Employee struct {
	ID           uuid.UUID
	EmpID        string
	Name         string
	BasicSalary  pgtype.Numeric
	OvertimeRate pgtype.Numeric
	IsActive     bool
	CreatedAt    time.Time
}

// OvertimeRecord holds the overtime hours worked by one employee in one
// month ("YYYY-MM"). One row per employee per month.
type OvertimeRecord struct {
	ID         uuid.UUID
	EmployeeID uuid.UUID
	Month      string
	Hours      pgtype.Numeric
	CreatedAt  time.Time
}

type Salary struct {
	ID            uuid.UUID
	EmployeeID    uuid.UUID
	EmpID         string
	EmployeeName  string
	Month         string
	BasicSalary   pgtype.Numeric
	OvertimeHours pgtype.Numeric
	OvertimeRate  pgtype.Numeric
	TotalOvertime pgtype.Numeric
	Epf           pgtype.Numeric
	Etf           pgtype.Numeric
	NetSalary     pgtype.Numeric
	Status        string
	PaymentDate   pgtype.Timestamptz
	CreatedAt     time.Time
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	Role         string
	CreatedAt    time.Time
}
