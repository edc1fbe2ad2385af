package analytics

// ValuePoint is one daily total-portfolio valuation.
type ValuePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// ValueSeries is a portfolio valuation time series, ascending by date.
type ValueSeries []ValuePoint

// Values returns the raw valuation column.
func (vs ValueSeries) Values() []float64 {
	out := make([]float64, len(vs))
	for i, p := range vs {
		out[i] = p.Value
	}
	return out
}

// Dates returns the date column.
func (vs ValueSeries) Dates() []string {
	out := make([]string, len(vs))
	for i, p := range vs {
		out[i] = p.Date
	}
	return out
}

// Simulate runs a static buy-and-hold simulation: the initial amount is split
// per the allocation weights, shares are bought at the first aligned date's
// closes, and the resulting holdings are revalued at every aligned date. No
// rebalancing, dividends, fees or slippage are modeled. An empty table yields
// an empty series.
func Simulate(table *AlignedTable, allocation map[string]float64, initialAmount float64) ValueSeries {
	if table.Empty() {
		return ValueSeries{}
	}

	// Shares bought at the first aligned row. That row is the first date
	// common to all participating assets, which can be later than any single
	// asset's first trading day.
	shares := make(map[string]float64, len(table.Assets))
	for _, asset := range table.Assets {
		firstClose := table.Prices[asset][0]
		if firstClose == 0 {
			continue
		}
		shares[asset] = (initialAmount * allocation[asset]) / firstClose
	}

	series := make(ValueSeries, len(table.Dates))
	for i, date := range table.Dates {
		total := 0.0
		for _, asset := range table.Assets {
			total += shares[asset] * table.Prices[asset][i]
		}
		series[i] = ValuePoint{Date: date, Value: total}
	}

	return series
}
