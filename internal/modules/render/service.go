// Package render produces PNG performance charts for saved portfolios.
package render

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	charts "github.com/vicanso/go-charts/v2"

	"github.com/foliolab/folio/internal/modules/analytics"
)

// TimeseriesSource is the calculation surface the renderer needs.
// Satisfied by the analytics service.
type TimeseriesSource interface {
	ComputeTimeseries(allocation map[string]float64, startDate string, initialAmount float64) (*analytics.Timeseries, error)
	ComputeBenchmarkSeries(startDate string, matchDates []string) ([]float64, error)
}

// Service renders portfolio performance charts
type Service struct {
	analytics TimeseriesSource
	log       zerolog.Logger
}

// NewService creates a new render service
func NewService(analytics TimeseriesSource, log zerolog.Logger) *Service {
	return &Service{
		analytics: analytics,
		log:       log.With().Str("service", "render").Logger(),
	}
}

// RenderPerformancePNG renders the cumulative growth of a simulated portfolio
// as a PNG line chart. The benchmark line is overlaid only when the benchmark
// traded on every portfolio date; a partial overlay would misalign the x axis.
func (s *Service) RenderPerformancePNG(allocation map[string]float64, startDate string, initialAmount float64) ([]byte, error) {
	ts, err := s.analytics.ComputeTimeseries(allocation, startDate, initialAmount)
	if err != nil {
		return nil, err
	}
	if ts == nil || len(ts.Cumulative) == 0 {
		return nil, errors.New("no valid price data")
	}

	labels := ts.DailyReturns.Dates()
	series := [][]float64{ts.Cumulative}
	names := []string{"Portfolio"}

	benchmark, err := s.analytics.ComputeBenchmarkSeries(startDate, labels)
	if err != nil {
		s.log.Warn().Err(err).Msg("Benchmark series unavailable, rendering portfolio only")
	} else if len(benchmark) == len(labels) {
		series = append(series, benchmark)
		names = append(names, "Benchmark")
	}

	yMin, yMax := bounds(series)

	painter, err := charts.LineRender(series,
		charts.TitleTextOptionFunc("Cumulative Growth"),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			BoundaryGap: charts.FalseFlag(),
			SplitNumber: 10,
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return painter.Bytes()
}

// bounds returns padded y-axis limits covering every series.
func bounds(series [][]float64) (float64, float64) {
	min, max := series[0][0], series[0][0]
	for _, s := range series {
		for _, v := range s {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}

	pad := (max - min) * 0.05
	if pad == 0 {
		pad = 0.01
	}
	return min - pad, max + pad
}
