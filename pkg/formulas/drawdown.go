package formulas

// DrawdownSeries computes the running drawdown of a value series:
// dd[t] = value[t] / peak(value[0..t]) - 1. Every element is <= 0, and an
// element is 0 exactly when the series is at a new (or equal) high.
func DrawdownSeries(values []float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}

	dd := make([]float64, len(values))
	peak := values[0]
	for i, v := range values {
		if v > peak {
			peak = v
		}
		if peak != 0 {
			dd[i] = v/peak - 1
		}
	}
	return dd
}

// MaxDrawdown returns the most negative element of the running drawdown
// series, as a negative fraction (e.g. -0.25 for a 25% decline). A
// monotonically non-decreasing series yields 0.
func MaxDrawdown(values []float64) float64 {
	maxDD := 0.0
	for _, dd := range DrawdownSeries(values) {
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// LongestDrawdown returns the length of the longest unbroken run of strictly
// negative drawdown observations (consecutive periods underwater). When
// several runs tie, the first one found is reported.
func LongestDrawdown(values []float64) int {
	longest := 0
	current := 0
	for _, dd := range DrawdownSeries(values) {
		if dd < 0 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}
