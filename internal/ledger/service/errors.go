package service

import "errors"

// Errors returned by the ledger services. Handlers map these onto HTTP
// status codes; anything else is treated as an internal error.
var (
	ErrDescriptionRequired = errors.New("description is required")
	ErrCategoryRequired    = errors.New("category is required")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidEntryType    = errors.New("invalid entry type")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidMonth        = errors.New("invalid month, expected YYYY-MM")
	ErrInvalidReferenceID  = errors.New("invalid reference id")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoInitialBalance  = errors.New("no initial balance set")
	ErrInitialExists     = errors.New("initial balance already set")
	ErrInvalidTransition = errors.New("entry type transition not allowed")

	ErrEntryNotFound  = errors.New("entry not found")
	ErrSalaryNotFound = errors.New("salary record not found")
	ErrAlreadyPaid    = errors.New("salary already paid")

	// ErrBalanceConflict is returned when the optimistic balance update kept
	// losing to concurrent writers after all retries.
	ErrBalanceConflict = errors.New("balance was modified concurrently")
)

// errStaleBalance signals a lost compare-and-swap inside a posting attempt;
// the caller rolls back and retries the whole transaction.
var errStaleBalance = errors.New("stale balance version")
