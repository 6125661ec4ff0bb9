package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/cashbook-hq/api/internal/database"
	"github.com/cashbook-hq/api/internal/ledger/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// --- Store interfaces ---

// SalaryPoster is the mutating side, backed by SalaryService.
type SalaryPoster interface {
	Calculate(ctx context.Context, month string) ([]database.Salary, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (*service.SalaryPaymentResult, error)
}

type SalaryStore interface {
	ListSalaries(ctx context.Context, arg database.ListSalariesParams) ([]database.Salary, error)
	GetSalary(ctx context.Context, id uuid.UUID) (database.Salary, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (database.Employee, error)
	UpsertOvertimeRecord(ctx context.Context, arg database.UpsertOvertimeRecordParams) (database.OvertimeRecord, error)
	ListOvertimeByMonth(ctx context.Context, month string) ([]database.OvertimeRecord, error)
}

// --- SalaryHandler ---

type SalaryHandler struct {
	svc   SalaryPoster
	store SalaryStore
	feed  BalanceNotifier
}

func NewSalaryHandler(svc SalaryPoster, store SalaryStore, feed BalanceNotifier) *SalaryHandler {
	return &SalaryHandler{svc: svc, store: store, feed: feed}
}

func (h *SalaryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListSalaries)
	r.Post("/calculate", h.CalculateSalaries)
	r.Get("/overtime", h.ListOvertime)
	r.Put("/overtime", h.UpsertOvertime)
	r.Get("/{id}", h.GetSalary)
	r.Post("/{id}/pay", h.PaySalary)
}

// --- Request / Response types ---

type salaryResponse struct {
	ID            uuid.UUID  `json:"id"`
	EmployeeID    uuid.UUID  `json:"employee_id"`
	EmpID         string     `json:"emp_id"`
	EmployeeName  string     `json:"employee_name"`
	Month         string     `json:"month"`
	BasicSalary   string     `json:"basic_salary"`
	OvertimeHours string     `json:"overtime_hours"`
	OvertimeRate  string     `json:"overtime_rate"`
	TotalOvertime string     `json:"total_overtime"`
	Epf           string     `json:"epf"`
	Etf           string     `json:"etf"`
	NetSalary     string     `json:"net_salary"`
	Status        string     `json:"status"`
	PaymentDate   *time.Time `json:"payment_date"`
	CreatedAt     time.Time  `json:"created_at"`
}

type calculateSalariesRequest struct {
	Month string `json:"month"`
}

type upsertOvertimeRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      string `json:"month"`
	Hours      string `json:"hours"`
}

type overtimeResponse struct {
	ID         uuid.UUID `json:"id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	Month      string    `json:"month"`
	Hours      string    `json:"hours"`
}

func toSalaryResponse(row database.Salary) salaryResponse {
	resp := salaryResponse{
		ID:            row.ID,
		EmployeeID:    row.EmployeeID,
		EmpID:         row.EmpID,
		EmployeeName:  row.EmployeeName,
		Month:         row.Month,
		BasicSalary:   numericToString(row.BasicSalary),
		OvertimeHours: numericToString(row.OvertimeHours),
		OvertimeRate:  numericToString(row.OvertimeRate),
		TotalOvertime: numericToString(row.TotalOvertime),
		Epf:           numericToString(row.Epf),
		Etf:           numericToString(row.Etf),
		NetSalary:     numericToString(row.NetSalary),
		Status:        row.Status,
		CreatedAt:     row.CreatedAt,
	}
	if row.PaymentDate.Valid {
		resp.PaymentDate = &row.PaymentDate.Time
	}
	return resp
}

func toOvertimeResponse(row database.OvertimeRecord) overtimeResponse {
	return overtimeResponse{
		ID:         row.ID,
		EmployeeID: row.EmployeeID,
		Month:      row.Month,
		Hours:      numericToString(row.Hours),
	}
}

// --- Handlers ---

func (h *SalaryHandler) ListSalaries(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	params := database.ListSalariesParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	}
	if v := r.URL.Query().Get("month"); v != "" {
		params.Month = pgtype.Text{String: v, Valid: true}
	}
	if v := r.URL.Query().Get("status"); v != "" {
		params.Status = pgtype.Text{String: v, Valid: true}
	}

	rows, err := h.store.ListSalaries(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list salaries: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	result := make([]salaryResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, toSalaryResponse(row))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *SalaryHandler) GetSalary(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	row, err := h.store.GetSalary(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "salary record not found"})
			return
		}
		log.Printf("ERROR: get salary: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSalaryResponse(row))
}

func (h *SalaryHandler) CalculateSalaries(w http.ResponseWriter, r *http.Request) {
	var req calculateSalariesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	created, err := h.svc.Calculate(r.Context(), req.Month)
	if err != nil {
		writeServiceError(w, "calculate salaries", err)
		return
	}

	result := make([]salaryResponse, 0, len(created))
	for _, row := range created {
		result = append(result, toSalaryResponse(row))
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *SalaryHandler) PaySalary(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	result, err := h.svc.MarkPaid(r.Context(), id)
	if err != nil {
		writeServiceError(w, "pay salary", err)
		return
	}

	notifyBalance(h.feed, result.Posting)
	writeJSON(w, http.StatusOK, toSalaryResponse(result.Salary))
}

func (h *SalaryHandler) UpsertOvertime(w http.ResponseWriter, r *http.Request) {
	var req upsertOvertimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid employee_id"})
		return
	}
	if _, err := time.Parse("2006-01", req.Month); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid month, expected YYYY-MM"})
		return
	}
	hours, err := decimal.NewFromString(req.Hours)
	if err != nil || hours.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hours"})
		return
	}

	if _, err := h.store.GetEmployee(r.Context(), employeeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "employee not found"})
			return
		}
		log.Printf("ERROR: get employee for overtime: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	var hoursPg pgtype.Numeric
	if err := hoursPg.Scan(hours.StringFixed(2)); err != nil {
		log.Printf("ERROR: scan hours: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	row, err := h.store.UpsertOvertimeRecord(r.Context(), database.UpsertOvertimeRecordParams{
		EmployeeID: employeeID,
		Month:      req.Month,
		Hours:      hoursPg,
	})
	if err != nil {
		log.Printf("ERROR: upsert overtime: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOvertimeResponse(row))
}

func (h *SalaryHandler) ListOvertime(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month is required"})
		return
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid month, expected YYYY-MM"})
		return
	}

	rows, err := h.store.ListOvertimeByMonth(r.Context(), month)
	if err != nil {
		log.Printf("ERROR: list overtime: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	result := make([]overtimeResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, toOvertimeResponse(row))
	}
	writeJSON(w, http.StatusOK, result)
}
