package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/foliolab/folio/internal/modules/prices"
)

// handleHealth returns server health status, pinging every database
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	databases := map[string]string{}
	healthy := true
	for _, db := range []struct {
		name string
		ping func() error
	}{
		{"prices", func() error { return s.pricesDB.QuickCheck(ctx) }},
		{"portfolios", func() error { return s.portfoliosDB.QuickCheck(ctx) }},
		{"cache", func() error { return s.cacheDB.QuickCheck(ctx) }},
	} {
		if err := db.ping(); err != nil {
			databases[db.name] = "unreachable"
			healthy = false
		} else {
			databases[db.name] = "ok"
		}
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    state,
		"databases": databases,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleAssets returns the asset catalog
func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.pricesRepo.ListAssets()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list assets")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	if assets == nil {
		assets = []prices.Asset{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"assets": assets,
		"count":  len(assets),
	})
}
