package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createSalary = `
INSERT INTO salaries (employee_id, emp_id, employee_name, month, basic_salary, overtime_hours, overtime_rate, total_overtime, epf, etf, net_salary, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id, employee_id, emp_id, employee_name, month, basic_salary, overtime_hours, overtime_rate, total_overtime, epf, etf, net_salary, status, payment_date, created_at
`

type CreateSalaryParams struct {
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
}

func (q *Queries) CreateSalary(ctx context.Context, arg CreateSalaryParams) (Salary, error) {
	row := q.db.QueryRow(ctx, createSalary,
		arg.EmployeeID,
		arg.EmpID,
		arg.EmployeeName,
		arg.Month,
		arg.BasicSalary,
		arg.OvertimeHours,
		arg.OvertimeRate,
		arg.TotalOvertime,
		arg.Epf,
		arg.Etf,
		arg.NetSalary,
		arg.Status,
	)
	return scanSalary(row)
}

const getSalary = `
SELECT id, employee_id, emp_id, employee_name, month, basic_salary, overtime_hours, overtime_rate, total_overtime, epf, etf, net_salary, status, payment_date, created_at
FROM salaries
WHERE id = $1
`

func (q *Queries) GetSalary(ctx context.Context, id uuid.UUID) (Salary, error) {
	return scanSalary(q.db.QueryRow(ctx, getSalary, id))
}

const getSalaryByEmployeeMonth = `
SELECT id, employee_id, emp_id, employee_name, month, basic_salary, overtime_hours, overtime_rate, total_overtime, epf, etf, net_salary, status, payment_date, created_at
FROM salaries
WHERE employee_id = $1 AND month = $2
`

type GetSalaryByEmployeeMonthParams struct {
	EmployeeID uuid.UUID
	Month      string
}

func (q *Queries) GetSalaryByEmployeeMonth(ctx context.Context, arg GetSalaryByEmployeeMonthParams) (Salary, error) {
	return scanSalary(q.db.QueryRow(ctx, getSalaryByEmployeeMonth, arg.EmployeeID, arg.Month))
}

const listSalaries = `
SELECT id, employee_id, emp_id, employee_name, month, basic_salary, overtime_hours, overtime_rate, total_overtime, epf, etf, net_salary, status, payment_date, created_at
FROM salaries
WHERE ($3::text IS NULL OR month = $3)
  AND ($4::text IS NULL OR status = $4)
ORDER BY month DESC, emp_id
LIMIT $1 OFFSET $2
`

type ListSalariesParams struct {
	Limit  int32
	Offset int32
	Month  pgtype.Text
	Status pgtype.Text
}

func (q *Queries) ListSalaries(ctx context.Context, arg ListSalariesParams) ([]Salary, error) {
	rows, err := q.db.Query(ctx, listSalaries, arg.Limit, arg.Offset, arg.Month, arg.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Salary
	for rows.Next() {
		var i Salary
		if err := rows.Scan(&i.ID, &i.EmployeeID, &i.EmpID, &i.EmployeeName, &i.Month, &i.BasicSalary, &i.OvertimeHours, &i.OvertimeRate, &i.TotalOvertime, &i.Epf, &i.Etf, &i.NetSalary, &i.Status, &i.PaymentDate, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const markSalaryPaid = `
UPDATE salaries
SET status = $2, payment_date = $3
WHERE id = $1 AND status = 'Pending'
RETURNING id, employee_id, emp_id, employee_name, month, basic_salary, overtime_hours, overtime_rate, total_overtime, epf, etf, net_salary, status, payment_date, created_at
`

type MarkSalaryPaidParams struct {
	ID          uuid.UUID
	Status      string
	PaymentDate pgtype.Timestamptz
}

// MarkSalaryPaid flips a Pending salary to paid; returns pgx.ErrNoRows when
// the row is absent or no longer Pending.
func (q *Queries) MarkSalaryPaid(ctx context.Context, arg MarkSalaryPaidParams) (Salary, error) {
	return scanSalary(q.db.QueryRow(ctx, markSalaryPaid, arg.ID, arg.Status, arg.PaymentDate))
}

type salaryRow interface {
	Scan(dest ...interface{}) error
}

func scanSalary(row salaryRow) (Salary, error) {
	var i Salary
	err := row.Scan(&i.ID, &i.EmployeeID, &i.EmpID, &i.EmployeeName, &i.Month, &i.BasicSalary, &i.OvertimeHours, &i.OvertimeRate, &i.TotalOvertime, &i.Epf, &i.Etf, &i.NetSalary, &i.Status, &i.PaymentDate, &i.CreatedAt)
	return i, err
}
