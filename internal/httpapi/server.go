// Package httpapi wires the HTTP surface of the service. Handlers stay thin,
// delegating business rules to the service layer.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jfenske/homeledger/internal/identity"
	"github.com/jfenske/homeledger/internal/service/account"
	"github.com/jfenske/homeledger/internal/service/entry"
	"github.com/jfenske/homeledger/internal/service/lifecycle"
	"github.com/jfenske/homeledger/internal/service/recurring"
)

// Server wires handlers and middleware using Chi.
type Server struct {
	accounts  account.Service
	entries   entry.Service
	recurring recurring.Service
	lifecycle lifecycle.Service
	resolver  identity.Resolver
	// ready reports backing-store connectivity for /readyz; nil means
	// always ready (in-memory store).
	ready    func(context.Context) error
	currency string
	log      *slog.Logger
	rt       *chi.Mux
}

// Deps carries the constructor dependencies for New.
type Deps struct {
	Accounts  account.Service
	Entries   entry.Service
	Recurring recurring.Service
	Lifecycle lifecycle.Service
	Resolver  identity.Resolver
	Ready     func(context.Context) error
	Currency  string
	Logger    *slog.Logger
}

// New constructs the HTTP server with routes and middleware.
func New(d Deps) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(d.Logger))
	r.Use(recoverer(d.Logger))
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	s := &Server{
		accounts:  d.Accounts,
		entries:   d.Entries,
		recurring: d.Recurring,
		lifecycle: d.Lifecycle,
		resolver:  d.Resolver,
		ready:     d.Ready,
		currency:  d.Currency,
		log:       d.Logger,
		rt:        r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints.
func (s *Server) routes() {
	s.rt.Route("/v1", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/accounts", s.postAccount)
		r.Get("/accounts", s.listAccounts)
		r.Get("/accounts/{id}", s.getAccount)
		r.Patch("/accounts/{id}", s.patchAccount)
		r.Delete("/accounts/{id}", s.deactivateAccount)

		r.Post("/transactions", s.postTransaction)
		r.Get("/transactions", s.listTransactions)
		r.Get("/transactions/{id}", s.getTransaction)
		r.Patch("/transactions/{id}", s.patchTransaction)
		r.Delete("/transactions/{id}", s.deleteTransaction)

		r.Post("/recurring-transactions", s.postRecurring)
		r.Get("/recurring-transactions", s.listRecurring)
		r.Get("/recurring-transactions/{id}", s.getRecurring)
		r.Patch("/recurring-transactions/{id}", s.patchRecurring)
		r.Delete("/recurring-transactions/{id}", s.deleteRecurring)

		r.Delete("/userdata", s.deleteUserData)
	})

	// Health and metrics (unversioned, unauthenticated)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
