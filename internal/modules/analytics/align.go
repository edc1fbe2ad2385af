// Package analytics implements the portfolio return/risk calculation engine:
// price alignment across assets, buy-and-hold simulation, return and risk
// statistics, and calendar resampling for visualization. All computations are
// pure functions over data already read from the price store; repeated calls
// with an unchanged store produce identical output.
package analytics

import (
	"fmt"
	"sort"

	"github.com/foliolab/folio/internal/modules/prices"
)

// PriceSource is the read-only price store contract consumed by the engine.
// Implementations must return rows ordered ascending by date.
type PriceSource interface {
	GetPricesSince(assetCode, startDate string) ([]prices.Price, error)
	GetBenchmarkSince(startDate string) ([]prices.Price, error)
}

// AlignedTable is a date-aligned joint price table: only dates at which every
// participating asset has a close survive the join. When non-empty, every
// date index has a price for every asset in Assets.
type AlignedTable struct {
	Assets []string             // participating assets, sorted
	Dates  []string             // aligned dates, ascending
	Prices map[string][]float64 // asset -> closes, parallel to Dates
}

// Empty reports whether the join produced no usable dates.
func (t *AlignedTable) Empty() bool {
	return t == nil || len(t.Dates) == 0
}

// AlignPrices fetches each allocated asset's history from startDate onward
// and inner-joins the per-asset series on exact date equality. Assets with no
// rows in the window are dropped from the join (not an error) and reported in
// the excluded list. A join with zero common dates yields an empty table, not
// an error; callers must treat that as "no computable result".
func AlignPrices(src PriceSource, allocation map[string]float64, startDate string) (*AlignedTable, []string, error) {
	assets := make([]string, 0, len(allocation))
	for asset := range allocation {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	perAsset := make(map[string]map[string]float64)
	var participating []string
	var excluded []string

	for _, asset := range assets {
		rows, err := src.GetPricesSince(asset, startDate)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load prices for %s: %w", asset, err)
		}
		if len(rows) == 0 {
			excluded = append(excluded, asset)
			continue
		}

		byDate := make(map[string]float64, len(rows))
		for _, row := range rows {
			byDate[row.Date] = row.Close
		}
		perAsset[asset] = byDate
		participating = append(participating, asset)
	}

	if len(participating) == 0 {
		return &AlignedTable{Prices: map[string][]float64{}}, excluded, nil
	}

	// Intersect dates across all participating assets
	var aligned []string
	for date := range perAsset[participating[0]] {
		common := true
		for _, asset := range participating[1:] {
			if _, ok := perAsset[asset][date]; !ok {
				common = false
				break
			}
		}
		if common {
			aligned = append(aligned, date)
		}
	}
	sort.Strings(aligned)

	table := &AlignedTable{
		Assets: participating,
		Dates:  aligned,
		Prices: make(map[string][]float64, len(participating)),
	}
	for _, asset := range participating {
		column := make([]float64, len(aligned))
		for i, date := range aligned {
			column[i] = perAsset[asset][date]
		}
		table.Prices[asset] = column
	}

	return table, excluded, nil
}
