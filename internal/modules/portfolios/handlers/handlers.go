// Package handlers provides HTTP handlers for saved portfolio management.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foliolab/folio/internal/modules/portfolios"
)

// ChartRenderer renders a portfolio performance chart as a PNG image.
type ChartRenderer interface {
	RenderPerformancePNG(allocation map[string]float64, startDate string, initialAmount float64) ([]byte, error)
}

// Handler handles portfolio HTTP requests
type Handler struct {
	repo     *portfolios.Repository
	service  *portfolios.Service
	renderer ChartRenderer
	log      zerolog.Logger
}

// NewHandler creates a new portfolios handler
func NewHandler(repo *portfolios.Repository, service *portfolios.Service, renderer ChartRenderer, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		service:  service,
		renderer: renderer,
		log:      log.With().Str("handler", "portfolios").Logger(),
	}
}

type portfolioRequest struct {
	Name              string             `json:"name"`
	Allocation        map[string]float64 `json:"allocation"`
	StartDate         string             `json:"start_date"`
	InitialInvestment float64            `json:"initial_investment"`
}

func (req *portfolioRequest) validate() string {
	if req.Name == "" {
		return "name is required"
	}
	if len(req.Allocation) == 0 {
		return "allocation is required"
	}
	if req.StartDate == "" {
		return "start_date is required"
	}
	if req.InitialInvestment <= 0 {
		return "initial_investment must be positive"
	}
	return ""
}

// HandleList handles GET /api/portfolios
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list portfolios")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []portfolios.Portfolio{}
	}
	h.writeJSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /api/portfolios
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	p, err := h.repo.Create(req.Name, req.Allocation, req.StartDate, req.InitialInvestment)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create portfolio")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Compute initial metrics; a portfolio without price data is still saved
	if refreshed, err := h.service.Recalculate(p.ID); err != nil {
		h.log.Warn().Err(err).Str("id", p.ID).Msg("Initial metrics calculation failed")
	} else if refreshed != nil {
		p = refreshed
	}

	h.writeJSON(w, http.StatusCreated, p)
}

// HandleGet handles GET /api/portfolios/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if p == nil {
		h.writeError(w, http.StatusNotFound, "Portfolio not found")
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// HandleUpdate handles PUT /api/portfolios/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	p, err := h.repo.Update(chi.URLParam(r, "id"), req.Name, req.Allocation, req.StartDate, req.InitialInvestment)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to update portfolio")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if p == nil {
		h.writeError(w, http.StatusNotFound, "Portfolio not found")
		return
	}

	// Metrics were reset by the definition change; recompute them
	if refreshed, err := h.service.Recalculate(p.ID); err != nil {
		h.log.Warn().Err(err).Str("id", p.ID).Msg("Metrics recalculation failed")
	} else if refreshed != nil {
		p = refreshed
	}

	h.writeJSON(w, http.StatusOK, p)
}

// HandleDelete handles DELETE /api/portfolios/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.repo.SoftDelete(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		h.writeError(w, http.StatusNotFound, "Portfolio not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleRecalculate handles POST /api/portfolios/{id}/recalculate
func (h *Handler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Recalculate(chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to recalculate portfolio")
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p == nil {
		h.writeError(w, http.StatusNotFound, "Portfolio not found")
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// HandleVersions handles GET /api/portfolios/{id}/versions
func (h *Handler) HandleVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.repo.GetVersions(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if versions == nil {
		versions = []portfolios.Version{}
	}
	h.writeJSON(w, http.StatusOK, versions)
}

// HandleChangeLog handles GET /api/portfolios/{id}/changes
func (h *Handler) HandleChangeLog(w http.ResponseWriter, r *http.Request) {
	changes, err := h.repo.GetChangeLog(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if changes == nil {
		changes = []portfolios.ChangeLogEntry{}
	}
	h.writeJSON(w, http.StatusOK, changes)
}

// HandleChart handles GET /api/portfolios/{id}/chart.png
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if p == nil {
		h.writeError(w, http.StatusNotFound, "Portfolio not found")
		return
	}

	png, err := h.renderer.RenderPerformancePNG(p.Allocation, p.StartDate, p.InitialAmount)
	if err != nil {
		h.log.Error().Err(err).Str("id", p.ID).Msg("Failed to render chart")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.log.Error().Err(err).Msg("Failed to write chart response")
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
