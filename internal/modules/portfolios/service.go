package portfolios

import (
	"fmt"

	"github.com/rs/zerolog"
)

// SummaryComputer is the calculation surface the portfolios service needs.
// Satisfied by the analytics service.
type SummaryComputer interface {
	ComputeSummary(allocation map[string]float64, startDate string, initialAmount float64, fields []string) (map[string]interface{}, error)
}

// Service coordinates saved portfolios with the calculation engine.
type Service struct {
	repo      *Repository
	analytics SummaryComputer
	log       zerolog.Logger
}

// NewService creates a new portfolios service
func NewService(repo *Repository, analytics SummaryComputer, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		analytics: analytics,
		log:       log.With().Str("service", "portfolios").Logger(),
	}
}

// Recalculate recomputes the metrics of a saved portfolio and persists them.
// Returns nil when the portfolio does not exist; a portfolio whose assets have
// no price data keeps NULL metrics and is returned unchanged.
func (s *Service) Recalculate(id string) (*Portfolio, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	record, err := s.analytics.ComputeSummary(p.Allocation, p.StartDate, p.InitialAmount, nil)
	if err != nil {
		return nil, fmt.Errorf("recalculation failed: %w", err)
	}
	if len(record) == 0 {
		s.log.Warn().Str("id", id).Msg("No price data for portfolio, keeping stale metrics")
		return p, nil
	}

	m := Metrics{
		CurrentValue:  record["current_value"].(float64),
		Profit:        record["profit"].(float64),
		ReturnPercent: record["return_percent"].(float64),
		CAGR:          record["cagr"].(float64),
		Volatility:    record["volatility"].(float64),
		MaxDrawdown:   record["max_drawdown"].(float64),
		CalculatedAt:  record["calculated_at"].(string),
	}

	if err := s.repo.SaveMetrics(id, m); err != nil {
		return nil, err
	}

	return s.repo.GetByID(id)
}
