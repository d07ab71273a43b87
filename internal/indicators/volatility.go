package indicators

import "math"

// Volatility is the population standard deviation of the series expressed as
// a percent of its mean. Returns 0 for fewer than two points.
func Volatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	mean := 0.0
	for _, p := range prices {
		mean += p
	}
	mean /= float64(len(prices))
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, p := range prices {
		d := p - mean
		variance += d * d
	}
	variance /= float64(len(prices))

	return math.Sqrt(variance) / mean * 100
}
