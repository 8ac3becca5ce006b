package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/poiesic/ingrain/storage"
)

// NewRouter assembles the HTTP API over the given stores.
func NewRouter(jobs storage.JobStore, collections storage.CollectionStore) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	h := NewHandlers(jobs, collections)

	r.Get("/health", h.Health)

	r.Route("/api/queue", func(r chi.Router) {
		r.Post("/", h.Enqueue)
		r.Get("/", h.ListJobs)
		r.Get("/pending", h.ListPending)
		r.Post("/requeue", h.RequeueStale)
		r.Get("/{id}", h.GetJob)
		r.Post("/{id}/claim", h.ClaimJob)
		r.Post("/{id}/transition", h.TransitionJob)
	})

	r.Route("/api/collections", func(r chi.Router) {
		r.Post("/", h.CreateCollection)
		r.Get("/", h.ListCollections)
	})

	return r
}
