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
)

// --- Store interfaces ---

type CashBookPoster interface {
	PostEntry(ctx context.Context, req service.PostCashBookRequest) (*service.CashBookPostResult, error)
}

type CashBookStore interface {
	ListCashBookEntries(ctx context.Context, arg database.ListCashBookEntriesParams) ([]database.CashBookEntry, error)
	GetCashBookEntry(ctx context.Context, id uuid.UUID) (database.CashBookEntry, error)
}

// --- CashBookHandler ---

type CashBookHandler struct {
	svc   CashBookPoster
	store CashBookStore
	feed  BalanceNotifier
}

func NewCashBookHandler(svc CashBookPoster, store CashBookStore, feed BalanceNotifier) *CashBookHandler {
	return &CashBookHandler{svc: svc, store: store, feed: feed}
}

func (h *CashBookHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListEntries)
	r.Get("/{id}", h.GetEntry)
	r.Post("/", h.CreateEntry)
}

// --- Request / Response types ---

type cashBookEntryResponse struct {
	ID          uuid.UUID `json:"id"`
	EntryDate   string    `json:"entry_date"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	EntryType   string    `json:"entry_type"`
	Category    string    `json:"category"`
	ReferenceID *string   `json:"reference_id"`
	Balance     string    `json:"balance"`
	CreatedAt   time.Time `json:"created_at"`
}

type createCashBookRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	ReferenceID string `json:"reference_id"`
}

func toCashBookEntryResponse(row database.CashBookEntry) cashBookEntryResponse {
	resp := cashBookEntryResponse{
		ID:          row.ID,
		EntryDate:   dateToString(row.EntryDate),
		Description: row.Description,
		Amount:      numericToString(row.Amount),
		EntryType:   row.EntryType,
		Category:    row.Category,
		Balance:     numericToString(row.Balance),
		CreatedAt:   row.CreatedAt,
	}
	if row.ReferenceID.Valid {
		s := uuid.UUID(row.ReferenceID.Bytes).String()
		resp.ReferenceID = &s
	}
	return resp
}

// --- Handlers ---

func (h *CashBookHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	params := database.ListCashBookEntriesParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	}

	if v := r.URL.Query().Get("start_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date"})
			return
		}
		params.StartDate = pgtype.Date{Time: d, Valid: true}
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date"})
			return
		}
		params.EndDate = pgtype.Date{Time: d, Valid: true}
	}
	if v := r.URL.Query().Get("type"); v != "" {
		params.EntryType = pgtype.Text{String: v, Valid: true}
	}
	if v := r.URL.Query().Get("category"); v != "" {
		params.Category = pgtype.Text{String: v, Valid: true}
	}

	rows, err := h.store.ListCashBookEntries(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list cash book entries: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	result := make([]cashBookEntryResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, toCashBookEntryResponse(row))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CashBookHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	row, err := h.store.GetCashBookEntry(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
			return
		}
		log.Printf("ERROR: get cash book entry: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toCashBookEntryResponse(row))
}

func (h *CashBookHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createCashBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.PostEntry(r.Context(), service.PostCashBookRequest{
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		writeServiceError(w, "create cash book entry", err)
		return
	}

	notifyBalance(h.feed, result)
	writeJSON(w, http.StatusCreated, toCashBookEntryResponse(result.Entry))
}

// --- Helper functions ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// writeServiceError maps service sentinel errors onto HTTP statuses:
// validation and business rejections are 400, missing records 404, payment
// and concurrency conflicts 409, everything else 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrDescriptionRequired),
		errors.Is(err, service.ErrCategoryRequired),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidEntryType),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidMonth),
		errors.Is(err, service.ErrInvalidReferenceID),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrNoInitialBalance),
		errors.Is(err, service.ErrInitialExists),
		errors.Is(err, service.ErrInvalidTransition):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrSalaryNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrBalanceConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
