package render

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliolab/folio/internal/modules/analytics"
)

type stubAnalytics struct {
	ts           *analytics.Timeseries
	benchmark    []float64
	benchmarkErr error
}

func (s *stubAnalytics) ComputeTimeseries(allocation map[string]float64, startDate string, initialAmount float64) (*analytics.Timeseries, error) {
	return s.ts, nil
}

func (s *stubAnalytics) ComputeBenchmarkSeries(startDate string, matchDates []string) ([]float64, error) {
	return s.benchmark, s.benchmarkErr
}

func sampleTimeseries() *analytics.Timeseries {
	return &analytics.Timeseries{
		DailyReturns: analytics.ReturnSeries{
			{Date: "2024-01-02", Return: 0.025},
			{Date: "2024-01-03", Return: 0.1},
		},
		Cumulative: []float64{1.025, 1.1275},
	}
}

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func TestRenderPerformancePNG(t *testing.T) {
	svc := NewService(&stubAnalytics{
		ts:        sampleTimeseries(),
		benchmark: []float64{1.01, 1.0302},
	}, zerolog.Nop())

	png, err := svc.RenderPerformancePNG(map[string]float64{"A": 1}, "2024-01-01", 1000)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, pngMagic, png[:4])
}

func TestRenderPerformancePNGWithoutBenchmark(t *testing.T) {
	// Benchmark shorter than the portfolio series is dropped, not padded
	svc := NewService(&stubAnalytics{
		ts:        sampleTimeseries(),
		benchmark: []float64{1.01},
	}, zerolog.Nop())

	png, err := svc.RenderPerformancePNG(map[string]float64{"A": 1}, "2024-01-01", 1000)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, png[:4])
}

func TestRenderPerformancePNGBenchmarkError(t *testing.T) {
	svc := NewService(&stubAnalytics{
		ts:           sampleTimeseries(),
		benchmarkErr: errors.New("store offline"),
	}, zerolog.Nop())

	png, err := svc.RenderPerformancePNG(map[string]float64{"A": 1}, "2024-01-01", 1000)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, png[:4])
}

func TestRenderPerformancePNGNoData(t *testing.T) {
	svc := NewService(&stubAnalytics{}, zerolog.Nop())

	_, err := svc.RenderPerformancePNG(map[string]float64{"A": 1}, "2024-01-01", 1000)
	assert.Error(t, err)
}
