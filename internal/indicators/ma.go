package indicators

// MovingAverage calculates the arithmetic mean of the last period values,
// falling back to the mean of whatever is available on short series.
func MovingAverage(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period <= 0 || len(prices) < period {
		period = len(prices)
	}

	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period)
}
