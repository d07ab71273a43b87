package indicators

// Momentum returns the percent change across the trailing period-point
// window, or 0 when the series is too short.
func Momentum(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 0
	}

	window := prices[len(prices)-period:]
	first := window[0]
	if first == 0 {
		return 0
	}
	return (window[len(window)-1] - first) / first * 100
}
