package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolios", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)

		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
		r.Post("/{id}/recalculate", h.HandleRecalculate)
		r.Get("/{id}/versions", h.HandleVersions)
		r.Get("/{id}/changes", h.HandleChangeLog)
		r.Get("/{id}/chart.png", h.HandleChart)
	})
}
