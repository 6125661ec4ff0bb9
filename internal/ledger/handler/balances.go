package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cashbook-hq/api/internal/database"
	"github.com/cashbook-hq/api/internal/enum"
	"github.com/cashbook-hq/api/internal/ledger/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// BalanceNotifier pushes balance changes to live subscribers. Implemented by
// the websocket hub; nil disables the feed.
type BalanceNotifier interface {
	BalanceChanged(scope, balance string)
}

// --- Store interface ---

type BalanceStore interface {
	GetCashBalance(ctx context.Context, scope string) (database.CashBalance, error)
}

// --- BalanceHandler ---

type BalanceHandler struct {
	store BalanceStore
}

func NewBalanceHandler(store BalanceStore) *BalanceHandler {
	return &BalanceHandler{store: store}
}

func (h *BalanceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{scope}", h.GetBalance)
}

type balanceResponse struct {
	Scope         string    `json:"scope"`
	Balance       string    `json:"balance"`
	InitialAmount string    `json:"initial_amount"`
	LastUpdated   time.Time `json:"last_updated"`
}

func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	scope := chi.URLParam(r, "scope")
	if scope != enum.ScopeMain && scope != enum.ScopePetty {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scope"})
		return
	}

	bal, err := h.store.GetCashBalance(r.Context(), scope)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "balance not found"})
			return
		}
		log.Printf("ERROR: get balance: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		Scope:         bal.Scope,
		Balance:       numericToString(bal.Balance),
		InitialAmount: numericToString(bal.InitialAmount),
		LastUpdated:   bal.LastUpdated,
	})
}

// --- Helper functions ---

func notifyBalance(feed BalanceNotifier, result *service.CashBookPostResult) {
	if feed == nil || result == nil {
		return
	}
	feed.BalanceChanged(enum.ScopeMain, result.Balance.StringFixed(2))
}

// notifyPettyBalance reports the petty balance and, when the operation also
// moved money on the main account, the main balance too.
func notifyPettyBalance(feed BalanceNotifier, result *service.PettyCashResult) {
	if feed == nil || result == nil {
		return
	}
	feed.BalanceChanged(enum.ScopePetty, result.Balance.StringFixed(2))
	notifyBalance(feed, result.MainPosting)
}

func parsePagination(r *http.Request) (int, int) {
	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		fmt.Sscanf(v, "%d", &offset)
	}
	if limit < 1 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
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

func dateToString(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format("2006-01-02")
}
