package indicators

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRSINeutralOnShortSeries(t *testing.T) {
	prices := []float64{1, 2, 3}
	if got := RSI(prices, 14); got != 50 {
		t.Fatalf("RSI on short series = %v, want 50", got)
	}
}

func TestRSIAllGains(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 1 + float64(i)*0.1
	}
	if got := RSI(prices, 14); got != 100 {
		t.Fatalf("RSI with no losses = %v, want 100", got)
	}
}

func TestRSIBounded(t *testing.T) {
	prices := []float64{5, 4, 6, 3, 7, 2, 8, 1, 9, 5, 4, 6, 3, 7, 2, 8}
	got := RSI(prices, 14)
	if got < 0 || got > 100 {
		t.Fatalf("RSI out of range: %v", got)
	}
}

func TestRSIBalancedSeries(t *testing.T) {
	// Alternating equal gains and losses: avgGain == avgLoss, RSI == 50.
	prices := make([]float64, 21)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 10
		} else {
			prices[i] = 11
		}
	}
	got := RSI(prices, 14)
	if !almostEqual(got, 50) {
		t.Fatalf("RSI on balanced series = %v, want 50", got)
	}
}

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		period int
		want   float64
	}{
		{"empty", nil, 20, 0},
		{"exact window", []float64{1, 2, 3, 4}, 4, 2.5},
		{"trailing window", []float64{10, 1, 2, 3}, 3, 2},
		{"short series uses all", []float64{2, 4}, 20, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MovingAverage(tt.prices, tt.period); !almostEqual(got, tt.want) {
				t.Fatalf("MovingAverage = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMomentum(t *testing.T) {
	prices := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 110}
	got := Momentum(prices, 10)
	if !almostEqual(got, 10) {
		t.Fatalf("Momentum = %v, want 10", got)
	}

	if got := Momentum([]float64{1, 2}, 10); got != 0 {
		t.Fatalf("Momentum on short series = %v, want 0", got)
	}
}

func TestVolatility(t *testing.T) {
	if got := Volatility([]float64{5}); got != 0 {
		t.Fatalf("Volatility of one point = %v, want 0", got)
	}
	if got := Volatility([]float64{3, 3, 3, 3}); !almostEqual(got, 0) {
		t.Fatalf("Volatility of flat series = %v, want 0", got)
	}
	// Mean 10, population stddev 2, so 20%.
	got := Volatility([]float64{8, 12, 8, 12})
	if !almostEqual(got, 20) {
		t.Fatalf("Volatility = %v, want 20", got)
	}
}

func TestBuyFrequency(t *testing.T) {
	now := int64(10 * 60 * 1000)
	ts := []int64{
		now - 30*1000,     // inside window
		now - 2*60*1000,   // inside window
		now - 4*60*1000,   // inside window
		now - 6*60*1000,   // outside 5m window
		now - 100*60*1000, // far outside
	}
	got := buyFrequencyAt(ts, 5, now)
	if !almostEqual(got, 0.6) {
		t.Fatalf("buy frequency = %v, want 0.6", got)
	}

	if got := buyFrequencyAt(nil, 5, now); got != 0 {
		t.Fatalf("buy frequency of no buys = %v, want 0", got)
	}
}
