package analytics

import "github.com/foliolab/folio/pkg/formulas"

// Summary holds the full set of return/risk statistics for one simulation.
type Summary struct {
	CalculatedAt        string  `json:"calculated_at" msgpack:"calculated_at"` // last aligned date
	CurrentValue        float64 `json:"current_value" msgpack:"current_value"`
	Profit              float64 `json:"profit" msgpack:"profit"`
	ReturnPercent       float64 `json:"return_percent" msgpack:"return_percent"` // fraction, not x100
	CAGR                float64 `json:"cagr" msgpack:"cagr"`
	Volatility          float64 `json:"volatility" msgpack:"volatility"`     // annualized
	MaxDrawdown         float64 `json:"max_drawdown" msgpack:"max_drawdown"` // negative fraction
	LongestDrawdownDays int     `json:"longest_drawdown_days" msgpack:"longest_drawdown_days"`
}

// SummaryOptions selects which statistics appear in a projected summary.
// The zero value selects nothing; use AllFields or FieldsFromNames.
type SummaryOptions struct {
	CalculatedAt    bool
	CurrentValue    bool
	Profit          bool
	ReturnPercent   bool
	CAGR            bool
	Volatility      bool
	MaxDrawdown     bool
	LongestDrawdown bool
}

// AllFields selects every statistic.
func AllFields() SummaryOptions {
	return SummaryOptions{
		CalculatedAt:    true,
		CurrentValue:    true,
		Profit:          true,
		ReturnPercent:   true,
		CAGR:            true,
		Volatility:      true,
		MaxDrawdown:     true,
		LongestDrawdown: true,
	}
}

// FieldsFromNames converts a wire-level field-name list into options.
// A nil list selects everything; unknown names are silently ignored.
func FieldsFromNames(names []string) SummaryOptions {
	if names == nil {
		return AllFields()
	}

	var opts SummaryOptions
	for _, name := range names {
		switch name {
		case "calculated_at":
			opts.CalculatedAt = true
		case "current_value":
			opts.CurrentValue = true
		case "profit":
			opts.Profit = true
		case "return_percent":
			opts.ReturnPercent = true
		case "cagr":
			opts.CAGR = true
		case "volatility":
			opts.Volatility = true
		case "max_drawdown":
			opts.MaxDrawdown = true
		case "longest_drawdown_days":
			opts.LongestDrawdown = true
		}
	}
	return opts
}

// Summarize derives the full statistics record from a value series. The
// second return value is false when the series is empty: insufficient data is
// a normal business condition, not an error, and callers must render a
// "no result" state.
func Summarize(values ValueSeries, initialAmount float64) (*Summary, bool) {
	if len(values) == 0 {
		return nil, false
	}

	dailyReturns := DailyReturns(values).Values()
	rawValues := values.Values()

	currentValue := rawValues[len(rawValues)-1]
	profit := currentValue - initialAmount

	summary := &Summary{
		CalculatedAt:        values[len(values)-1].Date,
		CurrentValue:        currentValue,
		Profit:              profit,
		ReturnPercent:       profit / initialAmount,
		CAGR:                formulas.AnnualizedReturn(dailyReturns),
		Volatility:          formulas.AnnualizedVolatility(dailyReturns),
		MaxDrawdown:         formulas.MaxDrawdown(rawValues),
		LongestDrawdownDays: formulas.LongestDrawdown(rawValues),
	}

	return summary, true
}

// Project reduces the summary to a map holding only the selected fields,
// keyed by the wire-level field names.
func (s *Summary) Project(opts SummaryOptions) map[string]interface{} {
	out := make(map[string]interface{})
	if opts.CalculatedAt {
		out["calculated_at"] = s.CalculatedAt
	}
	if opts.CurrentValue {
		out["current_value"] = s.CurrentValue
	}
	if opts.Profit {
		out["profit"] = s.Profit
	}
	if opts.ReturnPercent {
		out["return_percent"] = s.ReturnPercent
	}
	if opts.CAGR {
		out["cagr"] = s.CAGR
	}
	if opts.Volatility {
		out["volatility"] = s.Volatility
	}
	if opts.MaxDrawdown {
		out["max_drawdown"] = s.MaxDrawdown
	}
	if opts.LongestDrawdown {
		out["longest_drawdown_days"] = s.LongestDrawdownDays
	}
	return out
}
