package db

import "time"

// User represents a registered account.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Trade represents an executed trade stored in the DB.
type Trade struct {
	ID         string
	UserID     string
	Side       string
	Price      float64
	Qty        float64
	QuoteValue float64
	PnL        float64
	Points     int64
	Difficulty string
	IsAI       bool
	CreatedAt  time.Time
}

// UserStats aggregates per-user trading activity for the leaderboard.
// BestTrade/WorstTrade track realized pnl extremes; WinRate is the share of
// closing trades that realized a profit.
type UserStats struct {
	UserID      string
	Username    string
	TotalPoints int64
	TotalTrades int64
	TotalVolume float64
	BestTrade   float64
	WorstTrade  float64
	Wins        int64
	Losses      int64
	WinRate     float64
	IsAI        bool
	LastActive  time.Time
}

// SessionSnapshot persists the latest portfolio/progression state of a session.
type SessionSnapshot struct {
	UserID       string
	Difficulty   string
	BalanceQuote float64
	BalanceAsset float64
	EntryPrice   *float64
	RealizedPnL  float64
	TotalTrades  int64
	Level        int
	XP           int64
	UpdatedAt    time.Time
}
