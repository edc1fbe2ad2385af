package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/foliolab/folio/pkg/formulas"
)

// monthLabels is the canonical column order of the heatmap grid.
var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// HeatmapRow is one year of compounded monthly returns. Values always has 12
// entries in Jan..Dec order; months without trading data hold 0.0 (a display
// convention, not a zero return).
type HeatmapRow struct {
	Year   int       `json:"year"`
	Values []float64 `json:"values"`
}

// Heatmap is the year-by-month return grid for the monthly heatmap chart.
type Heatmap struct {
	Labels []string     `json:"labels"`
	Rows   []HeatmapRow `json:"datasets"`
}

// ResampleMonthly buckets a daily return series into calendar months and
// compounds each month's observations: (1+r1)*(1+r2)*...-1. Rows are ordered
// ascending by year and values rounded to 4 decimals.
//
// This is a best-effort formatting step for visualization: malformed dates
// are skipped and an unusable series degrades to an empty grid rather than
// failing the caller.
func ResampleMonthly(daily ReturnSeries) Heatmap {
	type bucket struct {
		year  int
		month int
	}

	growth := make(map[bucket]float64)
	for _, obs := range daily {
		t, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			continue
		}
		b := bucket{year: t.Year(), month: int(t.Month())}
		if _, ok := growth[b]; !ok {
			growth[b] = 1.0
		}
		growth[b] *= 1 + obs.Return
	}

	if len(growth) == 0 {
		return Heatmap{Labels: []string{}, Rows: []HeatmapRow{}}
	}

	yearSet := make(map[int]bool)
	for b := range growth {
		yearSet[b.year] = true
	}
	years := make([]int, 0, len(yearSet))
	for year := range yearSet {
		years = append(years, year)
	}
	sort.Ints(years)

	rows := make([]HeatmapRow, 0, len(years))
	for _, year := range years {
		values := make([]float64, 12)
		for month := 1; month <= 12; month++ {
			if g, ok := growth[bucket{year: year, month: month}]; ok {
				values[month-1] = round4(g - 1)
			}
		}
		rows = append(rows, HeatmapRow{Year: year, Values: values})
	}

	return Heatmap{Labels: monthLabels, Rows: rows}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// BenchmarkCumulative computes the benchmark asset's cumulative growth-factor
// series from startDate onward and restricts it to the dates in matchDates,
// preserving matchDates order. Dates absent from the benchmark's own series
// are simply omitted, so the output can be shorter than matchDates. A
// benchmark with no usable data yields an empty slice, not an error.
func BenchmarkCumulative(src PriceSource, startDate string, matchDates []string) ([]float64, error) {
	rows, err := src.GetBenchmarkSince(startDate)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []float64{}, nil
	}

	closes := make([]float64, len(rows))
	for i, row := range rows {
		closes[i] = row.Close
	}

	growth := formulas.CumulativeGrowth(formulas.PercentChange(closes))

	// Growth factors align with rows[1:], the first row being consumed by the
	// return calculation.
	byDate := make(map[string]float64, len(growth))
	for i, g := range growth {
		byDate[rows[i+1].Date] = g
	}

	out := make([]float64, 0, len(matchDates))
	for _, date := range matchDates {
		if g, ok := byDate[date]; ok {
			out = append(out, g)
		}
	}

	return out, nil
}
