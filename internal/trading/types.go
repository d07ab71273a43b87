package trading

import "strings"

// Difficulty selects both the simulator volatility scaling and the
// engine's position sizing / exit aggressiveness. Immutable per session.
type Difficulty string

const (
	DifficultyNoob  Difficulty = "noob"
	DifficultyDegen Difficulty = "degen"
	DifficultyPro   Difficulty = "pro"
)

// ParseDifficulty normalizes a user-supplied difficulty, defaulting to noob.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyDegen:
		return DifficultyDegen
	case DifficultyPro:
		return DifficultyPro
	default:
		return DifficultyNoob
	}
}

// Side identifies the direction of a trade intent.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Portfolio is a single participant's holdings. Values are never mutated in
// place; every engine operation returns a new Portfolio so callers can diff
// old and new state for auditing.
type Portfolio struct {
	BalanceQuote float64  `json:"balanceQuote"`
	BalanceAsset float64  `json:"balanceAsset"`
	RealizedPnL  float64  `json:"realizedPnl"`
	EntryPrice   *float64 `json:"entryPrice,omitempty"`
	TotalTrades  uint64   `json:"totalTrades"`
}

// NewPortfolio returns a flat portfolio funded with startingQuote.
func NewPortfolio(startingQuote float64) Portfolio {
	return Portfolio{BalanceQuote: startingQuote}
}

// entry returns the cost basis, or fallback when no position is open.
func (p Portfolio) entry(fallback float64) float64 {
	if p.EntryPrice == nil {
		return fallback
	}
	return *p.EntryPrice
}

func entryPtr(v float64) *float64 { return &v }

// Validation is the advisory pre-check result for a trade intent.
type Validation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}
