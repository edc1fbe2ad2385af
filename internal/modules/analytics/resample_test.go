package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliolab/folio/internal/modules/prices"
)

func TestResampleMonthlyShape(t *testing.T) {
	daily := ReturnSeries{
		{Date: "2023-11-15", Return: 0.01},
		{Date: "2024-01-10", Return: 0.02},
		{Date: "2024-01-11", Return: 0.01},
	}

	heatmap := ResampleMonthly(daily)

	// Always exactly 12 month labels in canonical order
	require.Len(t, heatmap.Labels, 12)
	assert.Equal(t, "Jan", heatmap.Labels[0])
	assert.Equal(t, "Dec", heatmap.Labels[11])

	// Rows ascending by year, 12 values each
	require.Len(t, heatmap.Rows, 2)
	assert.Equal(t, 2023, heatmap.Rows[0].Year)
	assert.Equal(t, 2024, heatmap.Rows[1].Year)
	assert.Len(t, heatmap.Rows[0].Values, 12)
	assert.Len(t, heatmap.Rows[1].Values, 12)
}

func TestResampleMonthlyCompounding(t *testing.T) {
	daily := ReturnSeries{
		{Date: "2024-01-10", Return: 0.10},
		{Date: "2024-01-11", Return: 0.10},
	}

	heatmap := ResampleMonthly(daily)
	require.Len(t, heatmap.Rows, 1)

	// (1.1 * 1.1) - 1 = 0.21, rounded to 4 decimals
	assert.InDelta(t, 0.21, heatmap.Rows[0].Values[0], 1e-9)
}

func TestResampleMonthlyMissingMonthsAreZero(t *testing.T) {
	daily := ReturnSeries{{Date: "2024-03-10", Return: 0.05}}

	heatmap := ResampleMonthly(daily)
	require.Len(t, heatmap.Rows, 1)

	for month, value := range heatmap.Rows[0].Values {
		if month == 2 { // March
			assert.InDelta(t, 0.05, value, 1e-9)
		} else {
			assert.Equal(t, 0.0, value)
		}
	}
}

func TestResampleMonthlyDegradesGracefully(t *testing.T) {
	// Empty series
	heatmap := ResampleMonthly(ReturnSeries{})
	assert.Empty(t, heatmap.Labels)
	assert.Empty(t, heatmap.Rows)

	// Malformed dates only
	heatmap = ResampleMonthly(ReturnSeries{{Date: "not-a-date", Return: 0.01}})
	assert.Empty(t, heatmap.Labels)
	assert.Empty(t, heatmap.Rows)
}

func TestBenchmarkCumulativeSubsetting(t *testing.T) {
	src := &fakeSource{
		data: map[string][]prices.Price{
			"SPY": pricesFor("SPY",
				[]string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"},
				[]float64{100, 110, 121, 133.1}),
		},
		benchmark: "SPY",
	}

	matchDates := []string{"2024-01-02", "2024-01-05", "2024-01-04"}
	got, err := BenchmarkCumulative(src, "2024-01-01", matchDates)
	require.NoError(t, err)

	// Output length <= len(matchDates); order follows matchDates; dates the
	// benchmark never traded are omitted without padding
	require.Len(t, got, 2)
	assert.InDelta(t, 1.10, got[0], 1e-9)  // 2024-01-02
	assert.InDelta(t, 1.331, got[1], 1e-9) // 2024-01-04
}

func TestBenchmarkCumulativeNoData(t *testing.T) {
	src := &fakeSource{data: map[string][]prices.Price{}, benchmark: "SPY"}

	got, err := BenchmarkCumulative(src, "2024-01-01", []string{"2024-01-02"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBenchmarkCumulativeSingleRow(t *testing.T) {
	src := &fakeSource{
		data: map[string][]prices.Price{
			"SPY": pricesFor("SPY", []string{"2024-01-01"}, []float64{100}),
		},
		benchmark: "SPY",
	}

	// One row cannot produce a return series
	got, err := BenchmarkCumulative(src, "2024-01-01", []string{"2024-01-01"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
