// Package http exposes the JSON API. Authentication is delegated to the
// fronting proxy, which stamps X-User-ID on every request.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"splitbook/internal/extract"
	"splitbook/internal/services"
	"splitbook/internal/storage"
)

type Server struct {
	http.Server

	ledger    *services.LedgerService
	assets    *services.AssetService
	netWorth  *services.NetWorthService
	profiles  *services.ProfileService
	extractor extract.FieldExtractor
	storage   *storage.SQLiteRepository

	defaultCurrency string
}

// Deps carries everything the API needs. Extractor may be nil, in which
// case receipt processing returns an empty suggestion.
type Deps struct {
	Ledger          *services.LedgerService
	Assets          *services.AssetService
	NetWorth        *services.NetWorthService
	Profiles        *services.ProfileService
	Extractor       extract.FieldExtractor
	Storage         *storage.SQLiteRepository
	DefaultCurrency string
}

func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		Server: http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		ledger:          deps.Ledger,
		assets:          deps.Assets,
		netWorth:        deps.NetWorth,
		profiles:        deps.Profiles,
		extractor:       deps.Extractor,
		storage:         deps.Storage,
		defaultCurrency: deps.DefaultCurrency,
	}
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireUser)

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleCreateExpense)
			r.Get("/shared", s.handleListSharedExpenses)
			r.Get("/{id}", s.handleGetExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", s.handleListAssets)
			r.Post("/", s.handleCreateAsset)
			r.Put("/{id}", s.handleUpdateAsset)
			r.Delete("/{id}", s.handleDeleteAsset)
		})

		r.Route("/net-worth", func(r chi.Router) {
			r.Get("/", s.handleNetWorthHistory)
			r.Post("/", s.handleNetWorthSnapshot)
		})

		r.Route("/user-profile", func(r chi.Router) {
			r.Get("/", s.handleGetProfile)
			r.Put("/", s.handleUpsertProfile)
		})

		r.Get("/categories", s.handleListCategories)
		r.Post("/receipts/process", s.handleProcessReceipt)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.InfoContext(r.Context(), "Request completed",
			"request_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"url", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady checks that the database answers before reporting ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
