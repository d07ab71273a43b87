package indicators

// RSI computes a Relative Strength Index over the last period deltas using a
// simple trailing-window average (no exponential smoothing). Returns the
// neutral 50 when the series is too short and 100 when there are no losses.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50
	}

	gain := 0.0
	loss := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}

	if loss == 0 {
		return 100
	}
	rs := gain / loss
	return 100 - (100 / (1 + rs))
}
