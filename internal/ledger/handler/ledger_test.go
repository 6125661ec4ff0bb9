package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cashbook-hq/api/internal/database"
	"github.com/cashbook-hq/api/internal/enum"
	"github.com/cashbook-hq/api/internal/ledger/handler"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockLedgerStore struct {
	entries  []database.LedgerEntry
	lastArgs database.ListLedgerEntriesParams
}

func (m *mockLedgerStore) ListLedgerEntries(ctx context.Context, arg database.ListLedgerEntriesParams) ([]database.LedgerEntry, error) {
	m.lastArgs = arg
	return m.entries, nil
}

func (m *mockLedgerStore) GetLedgerEntry(ctx context.Context, id uuid.UUID) (database.LedgerEntry, error) {
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return database.LedgerEntry{}, pgx.ErrNoRows
}

func setupLedgerRouter(store *mockLedgerStore) *chi.Mux {
	h := handler.NewLedgerHandler(store)
	r := chi.NewRouter()
	r.Route("/ledger", h.RegisterRoutes)
	return r
}

func sampleLedgerEntry() database.LedgerEntry {
	return database.LedgerEntry{
		ID:              uuid.New(),
		EntryDate:       makePgDate("2026-08-01"),
		Description:     "Salary payment for Nimal Perera (2026-08)",
		Amount:          makePgNumeric("46000.00"),
		Category:        enum.LedgerCategorySalaryPayment,
		Source:          enum.LedgerSourceCashBook,
		TransactionID:   uuid.New(),
		TransactionType: enum.TransactionTypeCashBook,
		CreatedAt:       time.Now(),
	}
}

func TestListLedgerEntries(t *testing.T) {
	store := &mockLedgerStore{entries: []database.LedgerEntry{sampleLedgerEntry()}}
	r := setupLedgerRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/ledger/?source=Cash+Book&category=SalaryPayment", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !store.lastArgs.Source.Valid || store.lastArgs.Source.String != "Cash Book" {
		t.Errorf("source filter not passed through: %+v", store.lastArgs.Source)
	}
	if !store.lastArgs.Category.Valid || store.lastArgs.Category.String != "SalaryPayment" {
		t.Errorf("category filter not passed through: %+v", store.lastArgs.Category)
	}

	var resp []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("got %d entries, want 1", len(resp))
	}
	if resp[0]["amount"] != "46000.00" {
		t.Errorf("amount = %v, want 46000.00", resp[0]["amount"])
	}
	if resp[0]["transaction_type"] != enum.TransactionTypeCashBook {
		t.Errorf("transaction_type = %v", resp[0]["transaction_type"])
	}
}

func TestListLedgerEntries_Pagination(t *testing.T) {
	store := &mockLedgerStore{}
	r := setupLedgerRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/ledger/?limit=10&offset=20", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.lastArgs.Limit != 10 || store.lastArgs.Offset != 20 {
		t.Errorf("pagination = %d/%d, want 10/20", store.lastArgs.Limit, store.lastArgs.Offset)
	}
}

func TestGetLedgerEntry(t *testing.T) {
	entry := sampleLedgerEntry()
	store := &mockLedgerStore{entries: []database.LedgerEntry{entry}}
	r := setupLedgerRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/ledger/"+entry.ID.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGetLedgerEntry_NotFound(t *testing.T) {
	r := setupLedgerRouter(&mockLedgerStore{})

	req := httptest.NewRequest(http.MethodGet, "/ledger/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
