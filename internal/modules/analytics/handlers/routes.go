package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all calculation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/portfolio-summary", h.HandlePortfolioSummary)
	r.Post("/timeseries", h.HandleTimeseries)
	r.Post("/drawdown", h.HandleDrawdown)
}
