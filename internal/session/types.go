package session

import (
	"tradeos-core/internal/market"
	"tradeos-core/internal/trading"
)

// TradeKind is the requested trade action. Panic is a full liquidation that
// bypasses the difficulty's default sell sizing.
type TradeKind string

const (
	TradeBuy   TradeKind = "buy"
	TradeSell  TradeKind = "sell"
	TradePanic TradeKind = "panic"
)

// TradeResult is the outcome of a trade request. Rejections carry the
// user-facing reason; the portfolio is always the post-trade state.
type TradeResult struct {
	Success      bool              `json:"success"`
	Portfolio    trading.Portfolio `json:"portfolio"`
	PointsEarned int               `json:"pointsEarned"`
	Reason       string            `json:"error,omitempty"`
}

// DeviceSignal is a hardware-companion hint pushed over the websocket. LED
// signals carry a color; notification signals carry a message.
type DeviceSignal struct {
	Type    string `json:"type"`
	Color   string `json:"color,omitempty"`
	Message string `json:"message,omitempty"`
	Level   int    `json:"level,omitempty"`
}

// ledColorFor maps a market trend onto the companion LED palette.
func ledColorFor(t market.Trend) string {
	switch t {
	case market.TrendUp:
		return "green"
	case market.TrendDown:
		return "red"
	case market.TrendWhale:
		return "purple"
	case market.TrendRug:
		return "orange"
	default:
		return "yellow"
	}
}

// State is the full game-state view served to clients.
type State struct {
	UserID         string             `json:"userId"`
	Difficulty     trading.Difficulty `json:"difficulty"`
	Portfolio      trading.Portfolio  `json:"portfolio"`
	Level          int                `json:"level"`
	XP             int                `json:"xp"`
	XPForNextLevel int                `json:"xpForNextLevel"`
	SessionStart   int64              `json:"sessionStartTime"`
	CurrentPrice   float64            `json:"currentPrice"`
	UnrealizedPnL  float64            `json:"unrealizedPnl"`
	PriceHistory   []market.Tick      `json:"priceHistory"`
}
