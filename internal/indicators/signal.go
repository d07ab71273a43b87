package indicators

import (
	"strings"

	"tradeos-core/internal/market"
)

// Default lookback windows for the composite snapshot.
const (
	DefaultRSIPeriod      = 14
	DefaultMomentumPeriod = 10
	DefaultMAPeriod       = 20
	volatilityWindow      = 20
	buyWindowMinutes      = 5
)

// SignalLevel is the composite recommendation bucket.
type SignalLevel string

const (
	SignalStrongBuy  SignalLevel = "strong_buy"
	SignalBuy        SignalLevel = "buy"
	SignalHold       SignalLevel = "hold"
	SignalSell       SignalLevel = "sell"
	SignalStrongSell SignalLevel = "strong_sell"
)

// RSIZone labels where the RSI currently sits.
type RSIZone string

const (
	ZoneOversold   RSIZone = "oversold"
	ZoneOverbought RSIZone = "overbought"
	ZoneBullish    RSIZone = "bullish"
	ZoneBearish    RSIZone = "bearish"
	ZoneNeutral    RSIZone = "neutral"
)

// Signal is the scored recommendation derived from the indicator set.
type Signal struct {
	Signal     SignalLevel `json:"signal"`
	Confidence int         `json:"confidence"`
	Reasoning  string      `json:"reasoning"`
}

// Snapshot bundles every indicator computed from a single pass over the
// price history, ready for serialization.
type Snapshot struct {
	RSI           float64      `json:"rsi"`
	RSISignal     RSIZone      `json:"rsiSignal"`
	Momentum      float64      `json:"momentum"`
	Volatility    float64      `json:"volatility"`
	MovingAverage float64      `json:"movingAverage"`
	CurrentPrice  float64      `json:"currentPrice"`
	PriceChange   float64      `json:"priceChange24h"`
	Trend         market.Trend `json:"trend"`
	BuyFrequency  float64      `json:"buyFrequency"`
	AISignal      Signal       `json:"aiSignal"`
}

// Compute builds a full indicator snapshot from the tick history and the
// user's recent buy timestamps.
func Compute(history []market.Tick, buyTimestamps []int64) Snapshot {
	return computeAt(history, buyTimestamps, nowMillis())
}

func computeAt(history []market.Tick, buyTimestamps []int64, now int64) Snapshot {
	if len(history) == 0 {
		return Snapshot{
			RSI:       50,
			RSISignal: ZoneNeutral,
			Trend:     market.TrendSideways,
			AISignal: Signal{
				Signal:     SignalHold,
				Confidence: 50,
				Reasoning:  "Insufficient data",
			},
		}
	}

	prices := make([]float64, len(history))
	for i, t := range history {
		prices[i] = t.Price
	}

	currentPrice := prices[len(prices)-1]
	rsi := RSI(prices, DefaultRSIPeriod)
	momentum := Momentum(prices, DefaultMomentumPeriod)
	ma := MovingAverage(prices, DefaultMAPeriod)

	volPrices := prices
	if len(volPrices) > volatilityWindow {
		volPrices = volPrices[len(volPrices)-volatilityWindow:]
	}
	vol := Volatility(volPrices)

	priceChange := 0.0
	if len(prices) > 1 && prices[0] != 0 {
		priceChange = (currentPrice - prices[0]) / prices[0] * 100
	}

	trend := history[len(history)-1].Trend
	buyFreq := buyFrequencyAt(buyTimestamps, buyWindowMinutes, now)

	return Snapshot{
		RSI:           rsi,
		RSISignal:     rsiZone(rsi),
		Momentum:      momentum,
		Volatility:    vol,
		MovingAverage: ma,
		CurrentPrice:  currentPrice,
		PriceChange:   priceChange,
		Trend:         trend,
		BuyFrequency:  buyFreq,
		AISignal:      score(rsi, momentum, vol, trend, buyFreq),
	}
}

func rsiZone(rsi float64) RSIZone {
	switch {
	case rsi < 30:
		return ZoneOversold
	case rsi > 70:
		return ZoneOverbought
	case rsi > 50:
		return ZoneBullish
	case rsi < 50:
		return ZoneBearish
	default:
		return ZoneNeutral
	}
}

// score folds the indicators into a 0-100 confidence starting from a neutral
// 50 and maps the result onto a five-level recommendation.
func score(rsi, momentum, vol float64, trend market.Trend, buyFreq float64) Signal {
	s := 50.0

	switch {
	case rsi < 30:
		s += 20
	case rsi > 70:
		s -= 20
	case rsi < 50:
		s += 10
	default:
		s -= 10
	}

	switch {
	case momentum > 5:
		s += 15
	case momentum > 2:
		s += 10
	case momentum < -5:
		s -= 15
	case momentum < -2:
		s -= 10
	}

	switch trend {
	case market.TrendUp:
		s += 10
	case market.TrendDown:
		s -= 10
	case market.TrendWhale:
		s += 5
	case market.TrendRug:
		s -= 15
	}

	if buyFreq > 2 {
		s += 5
	} else if buyFreq < 0.5 {
		s -= 5
	}

	if vol > 10 {
		s -= 5
	}

	if s < 0 {
		s = 0
	} else if s > 100 {
		s = 100
	}

	var level SignalLevel
	switch {
	case s >= 80:
		level = SignalStrongBuy
	case s >= 65:
		level = SignalBuy
	case s >= 35:
		level = SignalHold
	case s >= 20:
		level = SignalSell
	default:
		level = SignalStrongSell
	}

	var reasons []string
	if rsi < 30 {
		reasons = append(reasons, "RSI indicates oversold conditions")
	}
	if rsi > 70 {
		reasons = append(reasons, "RSI indicates overbought conditions")
	}
	if momentum > 5 {
		reasons = append(reasons, "Strong upward momentum detected")
	}
	if momentum < -5 {
		reasons = append(reasons, "Strong downward momentum detected")
	}
	if trend == market.TrendRug {
		reasons = append(reasons, "Rug pull pattern detected")
	}
	if buyFreq > 2 {
		reasons = append(reasons, "High buy activity")
	}
	if vol > 10 {
		reasons = append(reasons, "High volatility warning")
	}

	reasoning := "Market conditions are neutral"
	if len(reasons) > 0 {
		reasoning = strings.Join(reasons, "; ")
	}

	return Signal{
		Signal:     level,
		Confidence: int(s + 0.5),
		Reasoning:  reasoning,
	}
}
