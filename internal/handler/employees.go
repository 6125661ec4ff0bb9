package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/cashbook-hq/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// --- Store interface ---

type EmployeeStore interface {
	ListEmployees(ctx context.Context) ([]database.Employee, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (database.Employee, error)
	CreateEmployee(ctx context.Context, arg database.CreateEmployeeParams) (database.Employee, error)
	UpdateEmployee(ctx context.Context, arg database.UpdateEmployeeParams) (database.Employee, error)
	SoftDeleteEmployee(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// --- EmployeeHandler ---

type EmployeeHandler struct {
	store EmployeeStore
}

func NewEmployeeHandler(store EmployeeStore) *EmployeeHandler {
	return &EmployeeHandler{store: store}
}

func (h *EmployeeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListEmployees)
	r.Get("/{id}", h.GetEmployee)
	r.Post("/", h.CreateEmployee)
	r.Put("/{id}", h.UpdateEmployee)
	r.Delete("/{id}", h.DeleteEmployee)
}

// --- Request / Response types ---

type employeeResponse struct {
	ID           uuid.UUID `json:"id"`
	EmpID        string    `json:"emp_id"`
	Name         string    `json:"name"`
	BasicSalary  string    `json:"basic_salary"`
	OvertimeRate string    `json:"overtime_rate"`
	CreatedAt    time.Time `json:"created_at"`
}

type createEmployeeRequest struct {
	EmpID        string `json:"emp_id"`
	Name         string `json:"name"`
	BasicSalary  string `json:"basic_salary"`
	OvertimeRate string `json:"overtime_rate"`
}

type updateEmployeeRequest struct {
	Name         string `json:"name"`
	BasicSalary  string `json:"basic_salary"`
	OvertimeRate string `json:"overtime_rate"`
}

func toEmployeeResponse(row database.Employee) employeeResponse {
	return employeeResponse{
		ID:           row.ID,
		EmpID:        row.EmpID,
		Name:         row.Name,
		BasicSalary:  numericToString(row.BasicSalary),
		OvertimeRate: numericToString(row.OvertimeRate),
		CreatedAt:    row.CreatedAt,
	}
}

// parseEmployeeAmounts validates basic salary and overtime rate strings.
func parseEmployeeAmounts(basicStr, rateStr string) (pgtype.Numeric, pgtype.Numeric, error) {
	basic, err := decimal.NewFromString(basicStr)
	if err != nil || basic.IsNegative() {
		return pgtype.Numeric{}, pgtype.Numeric{}, errors.New("invalid basic_salary")
	}
	if rateStr == "" {
		rateStr = "0.00"
	}
	rate, err := decimal.NewFromString(rateStr)
	if err != nil || rate.IsNegative() {
		return pgtype.Numeric{}, pgtype.Numeric{}, errors.New("invalid overtime_rate")
	}

	var basicPg, ratePg pgtype.Numeric
	if err := basicPg.Scan(basic.StringFixed(2)); err != nil {
		return pgtype.Numeric{}, pgtype.Numeric{}, err
	}
	if err := ratePg.Scan(rate.StringFixed(2)); err != nil {
		return pgtype.Numeric{}, pgtype.Numeric{}, err
	}
	return basicPg, ratePg, nil
}

// --- Handlers ---

func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListEmployees(r.Context())
	if err != nil {
		log.Printf("ERROR: list employees: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	result := make([]employeeResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, toEmployeeResponse(row))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	row, err := h.store.GetEmployee(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "employee not found"})
			return
		}
		log.Printf("ERROR: get employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeResponse(row))
}

func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.EmpID == "" || req.Name == "" || req.BasicSalary == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "emp_id, name, and basic_salary are required"})
		return
	}

	basicPg, ratePg, err := parseEmployeeAmounts(req.BasicSalary, req.OvertimeRate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	row, err := h.store.CreateEmployee(r.Context(), database.CreateEmployeeParams{
		EmpID:        req.EmpID,
		Name:         req.Name,
		BasicSalary:  basicPg,
		OvertimeRate: ratePg,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "emp_id already exists"})
			return
		}
		log.Printf("ERROR: create employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeResponse(row))
}

func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req updateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" || req.BasicSalary == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and basic_salary are required"})
		return
	}

	basicPg, ratePg, err := parseEmployeeAmounts(req.BasicSalary, req.OvertimeRate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	row, err := h.store.UpdateEmployee(r.Context(), database.UpdateEmployeeParams{
		ID:           id,
		Name:         req.Name,
		BasicSalary:  basicPg,
		OvertimeRate: ratePg,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "employee not found"})
			return
		}
		log.Printf("ERROR: update employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeResponse(row))
}

func (h *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if _, err := h.store.SoftDeleteEmployee(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "employee not found"})
			return
		}
		log.Printf("ERROR: delete employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "employee deactivated"})
}

// numericToString converts pgtype.Numeric to string with 2 decimal places.
func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
