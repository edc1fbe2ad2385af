package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliolab/folio/internal/modules/prices"
)

// fakeSource is an in-memory PriceSource for engine tests.
type fakeSource struct {
	data      map[string][]prices.Price
	benchmark string
}

func (f *fakeSource) GetPricesSince(assetCode, startDate string) ([]prices.Price, error) {
	var out []prices.Price
	for _, p := range f.data[assetCode] {
		if p.Date >= startDate {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) GetBenchmarkSince(startDate string) ([]prices.Price, error) {
	return f.GetPricesSince(f.benchmark, startDate)
}

func pricesFor(code string, dates []string, closes []float64) []prices.Price {
	out := make([]prices.Price, len(dates))
	for i := range dates {
		out[i] = prices.Price{AssetCode: code, Date: dates[i], Close: closes[i]}
	}
	return out
}

func TestAlignPricesIntersection(t *testing.T) {
	src := &fakeSource{data: map[string][]prices.Price{
		"A": pricesFor("A", []string{"2024-01-01", "2024-01-02", "2024-01-03"}, []float64{1, 2, 3}),
		"B": pricesFor("B", []string{"2024-01-02", "2024-01-03", "2024-01-04"}, []float64{10, 20, 30}),
	}}

	table, excluded, err := AlignPrices(src, map[string]float64{"A": 0.5, "B": 0.5}, "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, excluded)

	// Exactly the date intersection survives
	assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, table.Dates)

	// Every aligned date has a value for every participating asset
	assert.Equal(t, []float64{2, 3}, table.Prices["A"])
	assert.Equal(t, []float64{10, 20}, table.Prices["B"])
}

func TestAlignPricesAssetWithNoRowsIsExcluded(t *testing.T) {
	src := &fakeSource{data: map[string][]prices.Price{
		"A": pricesFor("A", []string{"2024-01-01", "2024-01-02"}, []float64{1, 2}),
	}}

	table, excluded, err := AlignPrices(src, map[string]float64{"A": 0.5, "GHOST": 0.5}, "2024-01-01")
	require.NoError(t, err)

	// The empty-history asset is dropped from the join, not an error
	assert.Equal(t, []string{"GHOST"}, excluded)
	assert.Equal(t, []string{"A"}, table.Assets)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, table.Dates)
}

func TestAlignPricesNoAssetsHaveRows(t *testing.T) {
	src := &fakeSource{data: map[string][]prices.Price{}}

	table, excluded, err := AlignPrices(src, map[string]float64{"A": 0.5, "B": 0.5}, "2024-01-01")
	require.NoError(t, err)
	assert.True(t, table.Empty())
	assert.ElementsMatch(t, []string{"A", "B"}, excluded)
}

func TestAlignPricesDisjointDates(t *testing.T) {
	src := &fakeSource{data: map[string][]prices.Price{
		"A": pricesFor("A", []string{"2024-01-01"}, []float64{1}),
		"B": pricesFor("B", []string{"2024-01-02"}, []float64{10}),
	}}

	table, _, err := AlignPrices(src, map[string]float64{"A": 0.5, "B": 0.5}, "2024-01-01")
	require.NoError(t, err)

	// Zero common dates: empty table, not an error
	assert.True(t, table.Empty())
}

func TestAlignPricesStartDateRestrictsWindow(t *testing.T) {
	src := &fakeSource{data: map[string][]prices.Price{
		"A": pricesFor("A", []string{"2023-06-01", "2024-01-02"}, []float64{1, 2}),
		"B": pricesFor("B", []string{"2023-06-01", "2024-01-02"}, []float64{10, 20}),
	}}

	table, _, err := AlignPrices(src, map[string]float64{"A": 0.5, "B": 0.5}, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02"}, table.Dates)
}

func TestAlignPricesEmptyAllocation(t *testing.T) {
	src := &fakeSource{data: map[string][]prices.Price{}}

	table, excluded, err := AlignPrices(src, map[string]float64{}, "2024-01-01")
	require.NoError(t, err)
	assert.True(t, table.Empty())
	assert.Empty(t, excluded)
}
