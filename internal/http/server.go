// Package http exposes the JSON API over the service accessors. Every
// /api route runs behind the principal middleware; /files serves signed
// receipt downloads without a session.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/backend/fsblob"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

type Server struct {
	http.Server

	transactions *services.Transactions
	budgets      *services.Budgets
	recurring    *services.Recurring
	profiles     *services.Profiles

	// files is nil when the backend has no filesystem blob store; the
	// /files route then answers 404.
	files *fsblob.Store

	logger           *log.Logger
	defaultPrincipal string
	started          time.Time
}

// Options carries the optional server dependencies.
type Options struct {
	Files            *fsblob.Store
	DefaultPrincipal string
}

func NewServer(addr string, tx *services.Transactions, budgets *services.Budgets, recurring *services.Recurring, profiles *services.Profiles, logger *log.Logger, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		transactions:     tx,
		budgets:          budgets,
		recurring:        recurring,
		profiles:         profiles,
		files:            opts.Files,
		logger:           logger.WithComponent(log.ComponentHTTP),
		defaultPrincipal: opts.DefaultPrincipal,
		started:          time.Now(),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/transactions/{id}/receipt", s.handleReceiptURL)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleSaveBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/recurring", s.handleListRecurring)
	mux.HandleFunc("POST /api/recurring", s.handleSaveRecurring)
	mux.HandleFunc("DELETE /api/recurring/{id}", s.handleDeleteRecurring)

	mux.HandleFunc("GET /api/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /api/profile", s.handleUpdateProfile)

	mux.HandleFunc("GET /api/dashboard/summary", s.handleDashboardSummary)
	mux.HandleFunc("GET /api/dashboard/daily", s.handleDashboardDaily)
	mux.HandleFunc("GET /api/dashboard/categories", s.handleDashboardCategories)

	mux.HandleFunc("GET /files/{path...}", s.handleServeFile)

	return s
}

// middleware wires logging, request ids, security headers and the
// principal resolver around every route.
func (s *Server) middleware(next http.Handler) http.Handler {
	h := s.withPrincipal(s.withSecurityHeaders(next))
	h = log.RequestIDMiddleware(requestID)(h)
	h = log.Middleware(s.logger)(h)
	return h
}

// withPrincipal resolves the acting principal from the X-Principal header,
// falling back to the configured single-user principal. Requests with
// neither stay unauthenticated and fail in the service layer.
func (s *Server) withPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := r.Header.Get("X-Principal")
		if principal == "" {
			principal = s.defaultPrincipal
		}
		if principal != "" {
			r = r.WithContext(backend.WithPrincipal(r.Context(), principal))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}
