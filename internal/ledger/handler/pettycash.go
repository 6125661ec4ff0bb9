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

// PettyCashPoster is the mutating side, backed by PettyCashService.
type PettyCashPoster interface {
	PostEntry(ctx context.Context, req service.PettyCashRequest) (*service.PettyCashResult, error)
	UpdateEntry(ctx context.Context, id uuid.UUID, req service.PettyCashRequest) (*service.PettyCashResult, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) (*service.PettyCashResult, error)
}

type PettyCashStore interface {
	ListPettyCashEntries(ctx context.Context, arg database.ListPettyCashEntriesParams) ([]database.PettyCashEntry, error)
	GetPettyCashEntry(ctx context.Context, id uuid.UUID) (database.PettyCashEntry, error)
}

// --- PettyCashHandler ---

type PettyCashHandler struct {
	svc   PettyCashPoster
	store PettyCashStore
	feed  BalanceNotifier
}

func NewPettyCashHandler(svc PettyCashPoster, store PettyCashStore, feed BalanceNotifier) *PettyCashHandler {
	return &PettyCashHandler{svc: svc, store: store, feed: feed}
}

func (h *PettyCashHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListEntries)
	r.Get("/{id}", h.GetEntry)
	r.Post("/", h.CreateEntry)
	r.Put("/{id}", h.UpdateEntry)
	r.Delete("/{id}", h.DeleteEntry)
}

// --- Request / Response types ---

type pettyCashEntryResponse struct {
	ID          uuid.UUID `json:"id"`
	EntryDate   string    `json:"entry_date"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	EntryType   string    `json:"entry_type"`
	Category    string    `json:"category"`
	Balance     string    `json:"balance"`
	CreatedAt   time.Time `json:"created_at"`
}

type pettyCashRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
}

func (req pettyCashRequest) toService() service.PettyCashRequest {
	return service.PettyCashRequest{
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
	}
}

func toPettyCashEntryResponse(row database.PettyCashEntry) pettyCashEntryResponse {
	return pettyCashEntryResponse{
		ID:          row.ID,
		EntryDate:   dateToString(row.EntryDate),
		Description: row.Description,
		Amount:      numericToString(row.Amount),
		EntryType:   row.EntryType,
		Category:    row.Category,
		Balance:     numericToString(row.Balance),
		CreatedAt:   row.CreatedAt,
	}
}

// --- Handlers ---

func (h *PettyCashHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	params := database.ListPettyCashEntriesParams{
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

	rows, err := h.store.ListPettyCashEntries(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list petty cash entries: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	result := make([]pettyCashEntryResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, toPettyCashEntryResponse(row))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PettyCashHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	row, err := h.store.GetPettyCashEntry(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
			return
		}
		log.Printf("ERROR: get petty cash entry: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toPettyCashEntryResponse(row))
}

func (h *PettyCashHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req pettyCashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.PostEntry(r.Context(), req.toService())
	if err != nil {
		writeServiceError(w, "create petty cash entry", err)
		return
	}

	notifyPettyBalance(h.feed, result)
	writeJSON(w, http.StatusCreated, toPettyCashEntryResponse(result.Entry))
}

func (h *PettyCashHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req pettyCashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.UpdateEntry(r.Context(), id, req.toService())
	if err != nil {
		writeServiceError(w, "update petty cash entry", err)
		return
	}

	notifyPettyBalance(h.feed, result)
	writeJSON(w, http.StatusOK, toPettyCashEntryResponse(result.Entry))
}

func (h *PettyCashHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	result, err := h.svc.DeleteEntry(r.Context(), id)
	if err != nil {
		writeServiceError(w, "delete petty cash entry", err)
		return
	}

	notifyPettyBalance(h.feed, result)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "entry deleted",
		"balance": result.Balance.StringFixed(2),
	})
}
