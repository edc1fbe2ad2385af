package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/foliolab/folio/internal/calccache"
	"github.com/foliolab/folio/pkg/formulas"
)

// Service runs the full calculation pipeline (align, simulate, summarize,
// resample) against a price source. It is stateless and safe for concurrent
// use; the optional cache is an explicit opt-in and is keyed by the full
// calculation input.
type Service struct {
	prices   PriceSource
	cache    *calccache.Repository // nil when caching is disabled
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewService creates a new analytics service.
func NewService(src PriceSource, log zerolog.Logger) *Service {
	return &Service{
		prices: src,
		log:    log.With().Str("service", "analytics").Logger(),
	}
}

// WithCache enables the computed-metrics cache. Cached summaries can be
// stale with respect to price-store updates for up to ttl.
func (s *Service) WithCache(cache *calccache.Repository, ttl time.Duration) *Service {
	s.cache = cache
	s.cacheTTL = ttl
	return s
}

// Timeseries bundles the valuation and return series of one simulation.
type Timeseries struct {
	Values         ValueSeries
	DailyReturns   ReturnSeries
	Cumulative     []float64 // growth factors, aligned with DailyReturns
	ExcludedAssets []string  // allocated assets that had no price data
}

// DrawdownSeries is the running drawdown of a simulation, for charting.
type DrawdownSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"` // negative fractions, 0 at new highs
}

// validateRequest rejects malformed calculation inputs before any price
// loading happens. Weight values must be finite; NaN weights would otherwise
// silently poison every downstream statistic.
func validateRequest(allocation map[string]float64, startDate string, initialAmount float64) error {
	for asset, weight := range allocation {
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			return fmt.Errorf("allocation weight for %s is not a finite number", asset)
		}
	}
	if _, err := time.Parse("2006-01-02", startDate); err != nil {
		return fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	if initialAmount <= 0 {
		return fmt.Errorf("initial amount must be positive, got %v", initialAmount)
	}
	return nil
}

// computeSummary runs align -> simulate -> summarize, consulting the cache
// when enabled. ok is false when no price data aligned.
func (s *Service) computeSummary(allocation map[string]float64, startDate string, initialAmount float64) (*Summary, bool, error) {
	cacheKey := ""
	if s.cache != nil {
		cacheKey = calccache.Key(allocation, startDate, initialAmount)
		var cached Summary
		found, err := s.cache.GetIfFresh(cacheKey, &cached)
		if err != nil {
			s.log.Warn().Err(err).Msg("Cache lookup failed, computing from store")
		} else if found {
			s.log.Debug().Str("key", cacheKey).Msg("Serving summary from cache")
			return &cached, true, nil
		}
	}

	table, excluded, err := AlignPrices(s.prices, allocation, startDate)
	if err != nil {
		return nil, false, err
	}
	if len(excluded) > 0 {
		s.log.Warn().Strs("assets", excluded).Msg("Assets excluded from alignment (no price data)")
	}

	summary, ok := Summarize(Simulate(table, allocation, initialAmount), initialAmount)
	if !ok {
		return nil, false, nil
	}

	if s.cache != nil {
		if err := s.cache.Store(cacheKey, summary, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("Failed to store summary in cache")
		}
	}

	return summary, true, nil
}

// ComputeSummary returns the summary statistics record for an allocation,
// restricted to the requested fields (nil = all, unknown names ignored). An
// empty map means no price data was available for the request.
func (s *Service) ComputeSummary(allocation map[string]float64, startDate string, initialAmount float64, fields []string) (map[string]interface{}, error) {
	if err := validateRequest(allocation, startDate, initialAmount); err != nil {
		return nil, err
	}

	summary, ok, err := s.computeSummary(allocation, startDate, initialAmount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]interface{}{}, nil
	}

	return summary.Project(FieldsFromNames(fields)), nil
}

// ComputeTimeseries returns the valuation, daily return and cumulative return
// series for an allocation. A nil result means no price data was available.
func (s *Service) ComputeTimeseries(allocation map[string]float64, startDate string, initialAmount float64) (*Timeseries, error) {
	if err := validateRequest(allocation, startDate, initialAmount); err != nil {
		return nil, err
	}

	table, excluded, err := AlignPrices(s.prices, allocation, startDate)
	if err != nil {
		return nil, err
	}

	values := Simulate(table, allocation, initialAmount)
	if len(values) == 0 {
		return nil, nil
	}

	dailyReturns := DailyReturns(values)

	return &Timeseries{
		Values:         values,
		DailyReturns:   dailyReturns,
		Cumulative:     CumulativeGrowthSeries(dailyReturns),
		ExcludedAssets: excluded,
	}, nil
}

// ComputeBenchmarkSeries returns the benchmark's cumulative growth factors
// restricted to matchDates (see BenchmarkCumulative).
func (s *Service) ComputeBenchmarkSeries(startDate string, matchDates []string) ([]float64, error) {
	return BenchmarkCumulative(s.prices, startDate, matchDates)
}

// ComputeMonthlyHeatmap formats a daily return series as a year-by-month
// compounded return grid. Never fails; an unusable series yields an empty grid.
func (s *Service) ComputeMonthlyHeatmap(daily ReturnSeries) Heatmap {
	return ResampleMonthly(daily)
}

// ComputeDrawdownSeries returns the running drawdown of the simulated
// valuation. A nil result means no price data was available.
func (s *Service) ComputeDrawdownSeries(allocation map[string]float64, startDate string, initialAmount float64) (*DrawdownSeries, error) {
	if err := validateRequest(allocation, startDate, initialAmount); err != nil {
		return nil, err
	}

	table, _, err := AlignPrices(s.prices, allocation, startDate)
	if err != nil {
		return nil, err
	}

	values := Simulate(table, allocation, initialAmount)
	if len(values) == 0 {
		return nil, nil
	}

	return &DrawdownSeries{
		Labels: values.Dates(),
		Values: formulas.DrawdownSeries(values.Values()),
	}, nil
}
