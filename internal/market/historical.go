package market

import (
	"math"
	"math/rand"
	"time"
)

const (
	historicalVolatility = 0.015 // per-point move
	historicalFloor      = 0.1
)

// GenerateHistory synthesizes a backdated price series so a fresh session
// looks like a token that has already been trading. The walk carries a
// slight upward bias and labels each point with a trend.
func GenerateHistory(rng *rand.Rand, initialPrice float64, hours, intervalMinutes int) []Tick {
	if initialPrice <= 0 {
		initialPrice = 1.0
	}
	if hours <= 0 {
		hours = 24
	}
	if intervalMinutes <= 0 {
		intervalMinutes = 1
	}

	now := time.Now().UnixMilli()
	intervalMs := int64(intervalMinutes) * 60 * 1000
	totalPoints := hours * 60 / intervalMinutes

	ticks := make([]Tick, 0, totalPoints+1)
	price := initialPrice

	for i := totalPoints; i >= 0; i-- {
		timestamp := now - int64(i)*intervalMs

		// Random walk, biased slightly upward.
		change := (rng.Float64() - 0.45) * historicalVolatility
		price = price * (1 + change)
		if price < historicalFloor {
			price = historicalFloor
		}
		rounded := math.Round(price*10000) / 10000

		trend := TrendSideways
		if len(ticks) > 0 {
			prev := ticks[len(ticks)-1].Price
			percentChange := (rounded - prev) / prev * 100
			switch {
			case percentChange > 2:
				trend = TrendUp
			case percentChange < -2:
				trend = TrendDown
			case rng.Float64() > 0.95:
				if rng.Float64() > 0.5 {
					trend = TrendWhale
				} else {
					trend = TrendRug
				}
			}
		}

		ticks = append(ticks, Tick{Price: rounded, Timestamp: timestamp, Trend: trend})
	}

	return ticks
}
