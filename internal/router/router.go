package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cashbook-hq/api/internal/config"
	"github.com/cashbook-hq/api/internal/database"
	"github.com/cashbook-hq/api/internal/enum"
	"github.com/cashbook-hq/api/internal/handler"
	ledgerhandler "github.com/cashbook-hq/api/internal/ledger/handler"
	"github.com/cashbook-hq/api/internal/ledger/service"
	mw "github.com/cashbook-hq/api/internal/middleware"
	"github.com/cashbook-hq/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/balances/{scope}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Posting services share one transaction entry point (the pool)
	cashBookService := service.NewCashBookService(pool, func(db database.DBTX) service.CashBookStore {
		return database.New(db)
	})
	pettyCashService := service.NewPettyCashService(pool, func(db database.DBTX) service.PettyCashStore {
		return database.New(db)
	})
	salaryService, err := service.NewSalaryService(pool, func(db database.DBTX) service.SalaryStore {
		return database.New(db)
	}, cfg.EPFPercentage, cfg.ETFPercentage)
	if err != nil {
		log.Fatalf("invalid salary configuration: %v", err)
	}

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Cash book: everyone reads, only admins post
		cashBookHandler := ledgerhandler.NewCashBookHandler(cashBookService, queries, hub)
		r.Route("/cashbook", func(r chi.Router) {
			r.Use(mw.RequireWriteRole(enum.UserRoleAdmin))
			cashBookHandler.RegisterRoutes(r)
		})

		// Petty cash
		pettyCashHandler := ledgerhandler.NewPettyCashHandler(pettyCashService, queries, hub)
		r.Route("/pettycash", func(r chi.Router) {
			r.Use(mw.RequireWriteRole(enum.UserRoleAdmin))
			pettyCashHandler.RegisterRoutes(r)
		})

		// Salaries (calculate and pay are mutations)
		salaryHandler := ledgerhandler.NewSalaryHandler(salaryService, queries, hub)
		r.Route("/salaries", func(r chi.Router) {
			r.Use(mw.RequireWriteRole(enum.UserRoleAdmin))
			salaryHandler.RegisterRoutes(r)
		})

		// Ledger and balances are read-only
		ledgerHandler := ledgerhandler.NewLedgerHandler(queries)
		r.Route("/ledger", ledgerHandler.RegisterRoutes)

		balanceHandler := ledgerhandler.NewBalanceHandler(queries)
		r.Route("/balances", balanceHandler.RegisterRoutes)

		// Employees
		employeeHandler := handler.NewEmployeeHandler(queries)
		r.Route("/employees", func(r chi.Router) {
			r.Use(mw.RequireWriteRole(enum.UserRoleAdmin))
			employeeHandler.RegisterRoutes(r)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
