package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/cashbook-hq/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Store interface ---

type LedgerStore interface {
	ListLedgerEntries(ctx context.Context, arg database.ListLedgerEntriesParams) ([]database.LedgerEntry, error)
	GetLedgerEntry(ctx context.Context, id uuid.UUID) (database.LedgerEntry, error)
}

// --- LedgerHandler ---

// LedgerHandler is the read-only reporting surface; rows are written by the
// posting services, never through this handler.
type LedgerHandler struct {
	store LedgerStore
}

func NewLedgerHandler(store LedgerStore) *LedgerHandler {
	return &LedgerHandler{store: store}
}

func (h *LedgerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListEntries)
	r.Get("/{id}", h.GetEntry)
}

// --- Response type ---

type ledgerEntryResponse struct {
	ID              uuid.UUID `json:"id"`
	EntryDate       string    `json:"entry_date"`
	Description     string    `json:"description"`
	Amount          string    `json:"amount"`
	Category        string    `json:"category"`
	Source          string    `json:"source"`
	TransactionID   uuid.UUID `json:"transaction_id"`
	TransactionType string    `json:"transaction_type"`
	CreatedAt       time.Time `json:"created_at"`
}

func toLedgerEntryResponse(row database.LedgerEntry) ledgerEntryResponse {
	return ledgerEntryResponse{
		ID:              row.ID,
		EntryDate:       dateToString(row.EntryDate),
		Description:     row.Description,
		Amount:          numericToString(row.Amount),
		Category:        row.Category,
		Source:          row.Source,
		TransactionID:   row.TransactionID,
		TransactionType: row.TransactionType,
		CreatedAt:       row.CreatedAt,
	}
}

// --- Handlers ---

func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	params := database.ListLedgerEntriesParams{
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
	if v := r.URL.Query().Get("source"); v != "" {
		params.Source = pgtype.Text{String: v, Valid: true}
	}
	if v := r.URL.Query().Get("category"); v != "" {
		params.Category = pgtype.Text{String: v, Valid: true}
	}

	rows, err := h.store.ListLedgerEntries(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list ledger entries: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	result := make([]ledgerEntryResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, toLedgerEntryResponse(row))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *LedgerHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	row, err := h.store.GetLedgerEntry(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "ledger entry not found"})
			return
		}
		log.Printf("ERROR: get ledger entry: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toLedgerEntryResponse(row))
}
