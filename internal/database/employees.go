package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createEmployee = `
INSERT INTO employees (emp_id, name, basic_salary, overtime_rate)
VALUES ($1, $2, $3, $4)
RETURNING id, emp_id, name, basic_salary, overtime_rate, is_active, created_at
`

type CreateEmployeeParams struct {
	EmpID        string
	Name         string
	BasicSalary  pgtype.Numeric
	OvertimeRate pgtype.Numeric
}

func (q *Queries) CreateEmployee(ctx context.Context, arg CreateEmployeeParams) (Employee, error) {
	row := q.db.QueryRow(ctx, createEmployee, arg.EmpID, arg.Name, arg.BasicSalary, arg.OvertimeRate)
	var i Employee
	err := row.Scan(&i.ID, &i.EmpID, &i.Name, &i.BasicSalary, &i.OvertimeRate, &i.IsActive, &i.CreatedAt)
	return i, err
}

const getEmployee = `
SELECT id, emp_id, name, basic_salary, overtime_rate, is_active, created_at
FROM employees
WHERE id = $1 AND is_active = true
`

func (q *Queries) GetEmployee(ctx context.Context, id uuid.UUID) (Employee, error) {
	row := q.db.QueryRow(ctx, getEmployee, id)
	var i Employee
	err := row.Scan(&i.ID, &i.EmpID, &i.Name, &i.BasicSalary, &i.OvertimeRate, &i.IsActive, &i.CreatedAt)
	return i, err
}

const getEmployeeByEmpID = `
SELECT id, emp_id, name, basic_salary, overtime_rate, is_active, created_at
FROM employees
WHERE emp_id = $1 AND is_active = true
`

func (q *Queries) GetEmployeeByEmpID(ctx context.Context, empID string) (Employee, error) {
	row := q.db.QueryRow(ctx, getEmployeeByEmpID, empID)
	var i Employee
	err := row.Scan(&i.ID, &i.EmpID, &i.Name, &i.BasicSalary, &i.OvertimeRate, &i.IsActive, &i.CreatedAt)
	return i, err
}

const listEmployees = `
SELECT id, emp_id, name, basic_salary, overtime_rate, is_active, created_at
FROM employees
WHERE is_active = true
ORDER BY emp_id
`

func (q *Queries) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := q.db.Query(ctx, listEmployees)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Employee
	for rows.Next() {
		var i Employee
		if err := rows.Scan(&i.ID, &i.EmpID, &i.Name, &i.BasicSalary, &i.OvertimeRate, &i.IsActive, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateEmployee = `
UPDATE employees
SET name = $2, basic_salary = $3, overtime_rate = $4
WHERE id = $1 AND is_active = true
RETURNING id, emp_id, name, basic_salary, overtime_rate, is_active, created_at
`

type UpdateEmployeeParams struct {
	ID           uuid.UUID
	Name         string
	BasicSalary  pgtype.Numeric
	OvertimeRate pgtype.Numeric
}

func (q *Queries) UpdateEmployee(ctx context.Context, arg UpdateEmployeeParams) (Employee, error) {
	row := q.db.QueryRow(ctx, updateEmployee, arg.ID, arg.Name, arg.BasicSalary, arg.OvertimeRate)
	var i Employee
	err := row.Scan(&i.ID, &i.EmpID, &i.Name, &i.BasicSalary, &i.OvertimeRate, &i.IsActive, &i.CreatedAt)
	return i, err
}

const softDeleteEmployee = `
UPDATE employees
SET is_active = false
WHERE id = $1 AND is_active = true
RETURNING id
`

func (q *Queries) SoftDeleteEmployee(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, softDeleteEmployee, id)
	var out uuid.UUID
	err := row.Scan(&out)
	return out, err
}

const upsertOvertimeRecord = `
INSERT INTO overtime_records (employee_id, month, hours)
VALUES ($1, $2, $3)
ON CONFLICT (employee_id, month) DO UPDATE SET hours = EXCLUDED.hours
RETURNING id, employee_id, month, hours, created_at
`

type UpsertOvertimeRecordParams struct {
	EmployeeID uuid.UUID
	Month      string
	Hours      pgtype.Numeric
}

func (q *Queries) UpsertOvertimeRecord(ctx context.Context, arg UpsertOvertimeRecordParams) (OvertimeRecord, error) {
	row := q.db.QueryRow(ctx, upsertOvertimeRecord, arg.EmployeeID, arg.Month, arg.Hours)
	var i OvertimeRecord
	err := row.Scan(&i.ID, &i.EmployeeID, &i.Month, &i.Hours, &i.CreatedAt)
	return i, err
}

const getOvertimeRecord = `
SELECT id, employee_id, month, hours, created_at
FROM overtime_records
WHERE employee_id = $1 AND month = $2
`

type GetOvertimeRecordParams struct {
	EmployeeID uuid.UUID
	Month      string
}

func (q *Queries) GetOvertimeRecord(ctx context.Context, arg GetOvertimeRecordParams) (OvertimeRecord, error) {
	row := q.db.QueryRow(ctx, getOvertimeRecord, arg.EmployeeID, arg.Month)
	var i OvertimeRecord
	err := row.Scan(&i.ID, &i.EmployeeID, &i.Month, &i.Hours, &i.CreatedAt)
	return i, err
}

const listOvertimeByMonth = `
SELECT id, employee_id, month, hours, created_at
FROM overtime_records
WHERE month = $1
ORDER BY created_at
`

func (q *Queries) ListOvertimeByMonth(ctx context.Context, month string) ([]OvertimeRecord, error) {
	rows, err := q.db.Query(ctx, listOvertimeByMonth, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OvertimeRecord
	for rows.Next() {
		var i OvertimeRecord
		if err := rows.Scan(&i.ID, &i.EmployeeID, &i.Month, &i.Hours, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
