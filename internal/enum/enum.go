package enum

// ── Balance scopes (UNIQUE constrained in DB) ──

const (
	ScopeMain  = "main"
	ScopePetty = "petty"
)

// ── Cash book entries (CHECK constrained in DB) ──

const (
	CashBookTypeInflow  = "inflow"
	CashBookTypeOutflow = "outflow"
)

const (
	CashBookCategorySalary          = "salary"
	CashBookCategoryReimbursement   = "reimbursement"
	CashBookCategoryOrderIncome     = "order-income"
	CashBookCategoryPettyCashExcess = "pettyCashExcess"
	CashBookCategoryInitialCash     = "initial-cash"
)

// ── Petty cash entries (CHECK constrained in DB) ──

const (
	PettyCashTypeInitial       = "initial"
	PettyCashTypeExpense       = "expense"
	PettyCashTypeReimbursement = "reimbursement"
)

// ── Ledger cross-references (labels, no DB constraint) ──

const (
	LedgerSourceCashBook  = "Cash Book"
	LedgerSourcePettyCash = "Petty Cash"
)

const (
	TransactionTypeCashBook  = "CashBook"
	TransactionTypePettyCash = "Pettycash"
)

const LedgerCategorySalaryPayment = "SalaryPayment"

// ── Payroll (CHECK constrained in DB) ──

const (
	SalaryStatusPending   = "Pending"
	SalaryStatusCompleted = "Completed"
)

// ── Users (CHECK constrained in DB) ──

const (
	UserRoleAdmin      = "ADMIN"
	UserRoleAccountant = "ACCOUNTANT"
)
