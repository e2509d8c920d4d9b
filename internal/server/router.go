// Package server assembles the HTTP handlers and middleware into one router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/josh-kwaku/backoffice/api"
	"github.com/josh-kwaku/backoffice/internal/handler"
	"github.com/josh-kwaku/backoffice/internal/metrics"
	"github.com/josh-kwaku/backoffice/internal/middleware"
)

type Handlers struct {
	Health    *handler.HealthHandler
	Accounts  *handler.AccountHandler
	Customers *handler.PartyHandler
	Vendors   *handler.PartyHandler
	Items     *handler.ItemHandler
	Inventory *handler.InventoryHandler
	Journals  *handler.JournalHandler

	// Documents is keyed by URL collection, see handler.DocumentRoutes.
	Documents map[string]*handler.DocumentHandler
}

type Config struct {
	JWTSecret   string
	Idempotency middleware.IdempotencyStore
	Metrics     metrics.Collector
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

func NewRouter(cfg Config, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery, middleware.Tracing, middleware.Metrics(cfg.Metrics), middleware.Logging)

	r.Get("/health", h.Health.Liveness)
	r.Get("/health/ready", h.Health.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}
	r.Get("/docs", handler.ServeDocs())
	r.Get("/docs/openapi.yaml", handler.ServeSpec(api.Spec))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret), middleware.Idempotency(cfg.Idempotency))

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.Accounts.Create)
			r.Get("/", h.Accounts.List)
			r.Get("/{id}", h.Accounts.Get)
			r.Patch("/{id}", h.Accounts.Update)
			r.Delete("/{id}", h.Accounts.Delete)
		})

		r.Route("/customers", partyRoutes(h.Customers))
		r.Route("/vendors", partyRoutes(h.Vendors))

		r.Route("/items", func(r chi.Router) {
			r.Post("/", h.Items.Create)
			r.Get("/", h.Items.List)
			r.Get("/{id}", h.Items.Get)
			r.Patch("/{id}", h.Items.Update)
		})

		for collection, dh := range h.Documents {
			r.Route("/"+collection, documentRoutes(dh))
		}

		r.Route("/inventory-movements", func(r chi.Router) {
			r.Post("/", h.Inventory.Create)
			r.Get("/", h.Inventory.List)
		})

		r.Route("/journal-entries", func(r chi.Router) {
			r.Post("/", h.Journals.Create)
			r.Get("/", h.Journals.List)
			r.Get("/{id}", h.Journals.Get)
			r.Post("/{id}/post", h.Journals.Post)
			r.Post("/{id}/void", h.Journals.Void)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.RespondAppError(w, handler.ErrResourceNotFound, nil)
	})
	return r
}

func partyRoutes(h *handler.PartyHandler) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
	}
}

func documentRoutes(h *handler.DocumentHandler) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Post("/{id}/status", h.Transition)
		r.Post("/{id}/lines", h.AddLine)
		r.Delete("/{id}/lines/{lineID}", h.DeleteLine)
	}
}
