/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the admin frontend

ROUTE GROUPS:
  /api/slots          Slot catalog
  /api/slot-prices/*  Pricing rules
  /api/bookings/*     Bookings, summaries, per-booking ledger
  /api/transactions/* Ledger corrections
  /api/journal        Financial journal
  /api/dashboard      Headline numbers

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/slots", h.ListSlots)

		r.Route("/slot-prices", func(r chi.Router) {
			r.Get("/", h.ListPriceRules)
			r.Post("/", h.CreatePriceRule)
			r.Delete("/{id}", h.DeletePriceRule)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", h.GetMatrix)
			r.Post("/", h.CreateBooking)
			r.Get("/{id}", h.GetBookingSummary)
			r.Post("/{id}/cancel", h.CancelBooking)
			r.Delete("/{id}", h.PurgeBooking)
			r.Post("/{id}/transactions", h.RecordTransaction)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Put("/{id}", h.EditTransaction)
			r.Delete("/{id}", h.DeleteTransaction)
		})

		r.Get("/journal", h.GetJournal)
		r.Get("/dashboard", h.GetDashboard)
	})

	return r
}
