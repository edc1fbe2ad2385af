// Package handlers provides HTTP handlers for the portfolio calculation API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/foliolab/folio/internal/modules/analytics"
)

// Handler handles calculation HTTP requests
type Handler struct {
	service *analytics.Service
	log     zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *analytics.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analytics").Logger(),
	}
}

// calcRequest is the shared request body of the calculation endpoints.
type calcRequest struct {
	Weights           map[string]float64 `json:"weights"`
	StartDate         string             `json:"start_date"`
	InitialInvestment float64            `json:"initial_investment"`
}

// HandlePortfolioSummary handles POST /api/portfolio-summary
func (h *Handler) HandlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	var req calcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.ComputeSummary(req.Weights, req.StartDate, req.InitialInvestment, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("Summary calculation failed")
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(result) == 0 {
		h.writeError(w, http.StatusBadRequest, "No valid price data")
		return
	}

	summary := map[string]interface{}{
		"netWorth":         result["current_value"],
		"initial":          req.InitialInvestment,
		"profit":           result["profit"],
		"cumulativeReturn": result["return_percent"],
		"cagr":             result["cagr"],
		"volatility":       result["volatility"],
		"maxDrawdown":      result["max_drawdown"],
		"longestDD":        result["longest_drawdown_days"],
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// HandleTimeseries handles POST /api/timeseries
// Returns the cumulative-return series with benchmark overlay and the
// monthly-return heatmap in one response.
func (h *Handler) HandleTimeseries(w http.ResponseWriter, r *http.Request) {
	var req calcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ts, err := h.service.ComputeTimeseries(req.Weights, req.StartDate, req.InitialInvestment)
	if err != nil {
		h.log.Error().Err(err).Msg("Timeseries calculation failed")
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if ts == nil {
		h.writeError(w, http.StatusBadRequest, "No time series data")
		return
	}

	labels := ts.DailyReturns.Dates()

	benchmark, err := h.service.ComputeBenchmarkSeries(req.StartDate, labels)
	if err != nil {
		h.log.Warn().Err(err).Msg("Benchmark series unavailable")
		benchmark = []float64{}
	}

	heatmap := h.service.ComputeMonthlyHeatmap(ts.DailyReturns)

	response := map[string]interface{}{
		"labels":         labels,
		"strategy":       ts.Cumulative,
		"benchmark":      benchmark,
		"monthlyReturns": heatmap,
		"excludedAssets": ts.ExcludedAssets,
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDrawdown handles POST /api/drawdown
func (h *Handler) HandleDrawdown(w http.ResponseWriter, r *http.Request) {
	var req calcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	dd, err := h.service.ComputeDrawdownSeries(req.Weights, req.StartDate, req.InitialInvestment)
	if err != nil {
		h.log.Error().Err(err).Msg("Drawdown calculation failed")
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if dd == nil {
		h.writeError(w, http.StatusBadRequest, "No valid price data")
		return
	}

	h.writeJSON(w, http.StatusOK, dd)
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
