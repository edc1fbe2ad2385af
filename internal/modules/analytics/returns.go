package analytics

import "github.com/foliolab/folio/pkg/formulas"

// ReturnPoint is one daily fractional return observation.
type ReturnPoint struct {
	Date   string  `json:"date"`
	Return float64 `json:"return"`
}

// ReturnSeries is a daily return series, ascending by date. It is one element
// shorter than the value series it was derived from: the first valuation has
// no prior value to compare against.
type ReturnSeries []ReturnPoint

// Values returns the raw return column.
func (rs ReturnSeries) Values() []float64 {
	out := make([]float64, len(rs))
	for i, p := range rs {
		out[i] = p.Return
	}
	return out
}

// Dates returns the date column.
func (rs ReturnSeries) Dates() []string {
	out := make([]string, len(rs))
	for i, p := range rs {
		out[i] = p.Date
	}
	return out
}

// DailyReturns derives period-over-period fractional returns from a value
// series. A series shorter than two points yields an empty result.
func DailyReturns(values ValueSeries) ReturnSeries {
	changes := formulas.PercentChange(values.Values())
	series := make(ReturnSeries, len(changes))
	for i, r := range changes {
		series[i] = ReturnPoint{Date: values[i+1].Date, Return: r}
	}
	return series
}

// CumulativeGrowthSeries compounds a daily return series into growth factors
// since start: out[i] = (1+r0)*...*(1+ri). Aligned one-to-one with the return
// series; the last element minus 1 is the total cumulative return.
func CumulativeGrowthSeries(returns ReturnSeries) []float64 {
	return formulas.CumulativeGrowth(returns.Values())
}
