package service

import (
	"context"
	"time"

	"github.com/cashbook-hq/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr   error
	rollbackErr error
	commits     int
	rollbacks   int
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	m.commits++
	return m.commitErr
}
func (m *mockTx) Rollback(ctx context.Context) error {
	m.rollbacks++
	return m.rollbackErr
}
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner implements TxBeginner.
type mockTxBeginner struct {
	tx  pgx.Tx
	err error
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.tx, m.err
}

// fakeStore is an in-memory store covering the full service surface.
// Balance updates honor the version check the same way the SQL does, so the
// optimistic retry path is exercisable by bumping versions between calls.
type fakeStore struct {
	balances map[string]database.CashBalance
	cashBook []database.CashBookEntry
	petty    map[uuid.UUID]database.PettyCashEntry
	ledger   []database.LedgerEntry

	employees []database.Employee
	overtime  map[string]database.OvertimeRecord // employeeID|month
	salaries  map[uuid.UUID]database.Salary

	// staleUpdates fails this many balance writes with pgx.ErrNoRows
	// before behaving normally, simulating a concurrent writer.
	staleUpdates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		balances: make(map[string]database.CashBalance),
		petty:    make(map[uuid.UUID]database.PettyCashEntry),
		overtime: make(map[string]database.OvertimeRecord),
		salaries: make(map[uuid.UUID]database.Salary),
	}
}

func (f *fakeStore) GetCashBalance(ctx context.Context, scope string) (database.CashBalance, error) {
	bal, ok := f.balances[scope]
	if !ok {
		return database.CashBalance{}, pgx.ErrNoRows
	}
	return bal, nil
}

func (f *fakeStore) CreateCashBalance(ctx context.Context, arg database.CreateCashBalanceParams) (database.CashBalance, error) {
	bal := database.CashBalance{
		ID:            uuid.New(),
		Scope:         arg.Scope,
		Balance:       arg.Balance,
		InitialAmount: arg.InitialAmount,
		Version:       1,
		LastUpdated:   time.Now(),
	}
	f.balances[arg.Scope] = bal
	return bal, nil
}

func (f *fakeStore) UpdateCashBalance(ctx context.Context, arg database.UpdateCashBalanceParams) (database.CashBalance, error) {
	if f.staleUpdates > 0 {
		f.staleUpdates--
		return database.CashBalance{}, pgx.ErrNoRows
	}
	bal, ok := f.balances[arg.Scope]
	if !ok || bal.Version != arg.Version {
		return database.CashBalance{}, pgx.ErrNoRows
	}
	bal.Balance = arg.Balance
	bal.InitialAmount = arg.InitialAmount
	bal.Version++
	bal.LastUpdated = time.Now()
	f.balances[arg.Scope] = bal
	return bal, nil
}

func (f *fakeStore) DeleteCashBalance(ctx context.Context, arg database.DeleteCashBalanceParams) error {
	bal, ok := f.balances[arg.Scope]
	if !ok || bal.Version != arg.Version {
		return pgx.ErrNoRows
	}
	delete(f.balances, arg.Scope)
	return nil
}

func (f *fakeStore) CreateCashBookEntry(ctx context.Context, arg database.CreateCashBookEntryParams) (database.CashBookEntry, error) {
	entry := database.CashBookEntry{
		ID:          uuid.New(),
		EntryDate:   arg.EntryDate,
		Description: arg.Description,
		Amount:      arg.Amount,
		EntryType:   arg.EntryType,
		Category:    arg.Category,
		ReferenceID: arg.ReferenceID,
		Balance:     arg.Balance,
		CreatedAt:   time.Now(),
	}
	f.cashBook = append(f.cashBook, entry)
	return entry, nil
}

func (f *fakeStore) CreateLedgerEntry(ctx context.Context, arg database.CreateLedgerEntryParams) (database.LedgerEntry, error) {
	entry := database.LedgerEntry{
		ID:              uuid.New(),
		EntryDate:       arg.EntryDate,
		Description:     arg.Description,
		Amount:          arg.Amount,
		Category:        arg.Category,
		Source:          arg.Source,
		TransactionID:   arg.TransactionID,
		TransactionType: arg.TransactionType,
		CreatedAt:       time.Now(),
	}
	f.ledger = append(f.ledger, entry)
	return entry, nil
}

func (f *fakeStore) CreatePettyCashEntry(ctx context.Context, arg database.CreatePettyCashEntryParams) (database.PettyCashEntry, error) {
	entry := database.PettyCashEntry{
		ID:          uuid.New(),
		EntryDate:   arg.EntryDate,
		Description: arg.Description,
		Amount:      arg.Amount,
		EntryType:   arg.EntryType,
		Category:    arg.Category,
		Balance:     arg.Balance,
		CreatedAt:   time.Now(),
	}
	f.petty[entry.ID] = entry
	return entry, nil
}

func (f *fakeStore) GetPettyCashEntry(ctx context.Context, id uuid.UUID) (database.PettyCashEntry, error) {
	entry, ok := f.petty[id]
	if !ok {
		return database.PettyCashEntry{}, pgx.ErrNoRows
	}
	return entry, nil
}

func (f *fakeStore) UpdatePettyCashEntry(ctx context.Context, arg database.UpdatePettyCashEntryParams) (database.PettyCashEntry, error) {
	entry, ok := f.petty[arg.ID]
	if !ok {
		return database.PettyCashEntry{}, pgx.ErrNoRows
	}
	entry.EntryDate = arg.EntryDate
	entry.Description = arg.Description
	entry.Amount = arg.Amount
	entry.EntryType = arg.EntryType
	entry.Category = arg.Category
	entry.Balance = arg.Balance
	f.petty[arg.ID] = entry
	return entry, nil
}

func (f *fakeStore) DeletePettyCashEntry(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.petty[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.petty, id)
	return nil
}

func (f *fakeStore) UpdateLedgerEntryByTransaction(ctx context.Context, arg database.UpdateLedgerEntryByTransactionParams) (database.LedgerEntry, error) {
	for i, led := range f.ledger {
		if led.TransactionID == arg.TransactionID && led.TransactionType == arg.TransactionType {
			led.EntryDate = arg.EntryDate
			led.Description = arg.Description
			led.Amount = arg.Amount
			led.Category = arg.Category
			f.ledger[i] = led
			return led, nil
		}
	}
	return database.LedgerEntry{}, pgx.ErrNoRows
}

func (f *fakeStore) DeleteLedgerEntryByTransaction(ctx context.Context, arg database.DeleteLedgerEntryByTransactionParams) error {
	for i, led := range f.ledger {
		if led.TransactionID == arg.TransactionID && led.TransactionType == arg.TransactionType {
			f.ledger = append(f.ledger[:i], f.ledger[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeStore) ListEmployees(ctx context.Context) ([]database.Employee, error) {
	return f.employees, nil
}

func (f *fakeStore) GetOvertimeRecord(ctx context.Context, arg database.GetOvertimeRecordParams) (database.OvertimeRecord, error) {
	ot, ok := f.overtime[arg.EmployeeID.String()+"|"+arg.Month]
	if !ok {
		return database.OvertimeRecord{}, pgx.ErrNoRows
	}
	return ot, nil
}

func (f *fakeStore) CreateSalary(ctx context.Context, arg database.CreateSalaryParams) (database.Salary, error) {
	sal := database.Salary{
		ID:            uuid.New(),
		EmployeeID:    arg.EmployeeID,
		EmpID:         arg.EmpID,
		EmployeeName:  arg.EmployeeName,
		Month:         arg.Month,
		BasicSalary:   arg.BasicSalary,
		OvertimeHours: arg.OvertimeHours,
		OvertimeRate:  arg.OvertimeRate,
		TotalOvertime: arg.TotalOvertime,
		Epf:           arg.Epf,
		Etf:           arg.Etf,
		NetSalary:     arg.NetSalary,
		Status:        arg.Status,
		CreatedAt:     time.Now(),
	}
	f.salaries[sal.ID] = sal
	return sal, nil
}

func (f *fakeStore) GetSalary(ctx context.Context, id uuid.UUID) (database.Salary, error) {
	sal, ok := f.salaries[id]
	if !ok {
		return database.Salary{}, pgx.ErrNoRows
	}
	return sal, nil
}

func (f *fakeStore) GetSalaryByEmployeeMonth(ctx context.Context, arg database.GetSalaryByEmployeeMonthParams) (database.Salary, error) {
	for _, sal := range f.salaries {
		if sal.EmployeeID == arg.EmployeeID && sal.Month == arg.Month {
			return sal, nil
		}
	}
	return database.Salary{}, pgx.ErrNoRows
}

func (f *fakeStore) MarkSalaryPaid(ctx context.Context, arg database.MarkSalaryPaidParams) (database.Salary, error) {
	sal, ok := f.salaries[arg.ID]
	if !ok || sal.Status != "Pending" {
		return database.Salary{}, pgx.ErrNoRows
	}
	sal.Status = arg.Status
	sal.PaymentDate = arg.PaymentDate
	f.salaries[arg.ID] = sal
	return sal, nil
}

// --- Test helpers ---

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	d := numericToDecimal(n)
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}

func decimalEquals(d decimal.Decimal, expected string) bool {
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}

// seedBalance installs a balance row directly, bypassing the services.
func (f *fakeStore) seedBalance(scope, balance, initial string) {
	f.balances[scope] = database.CashBalance{
		ID:            uuid.New(),
		Scope:         scope,
		Balance:       makeNumeric(balance),
		InitialAmount: makeNumeric(initial),
		Version:       1,
		LastUpdated:   time.Now(),
	}
}

func (f *fakeStore) balanceOf(scope string) decimal.Decimal {
	return numericToDecimal(f.balances[scope].Balance)
}

func (f *fakeStore) initialOf(scope string) decimal.Decimal {
	return numericToDecimal(f.balances[scope].InitialAmount)
}
