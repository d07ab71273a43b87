// Package session ties a simulator, a portfolio and a progression track
// together per user and orchestrates trade execution across them.
package session

import (
	"sync"
	"time"

	"tradeos-core/internal/events"
	"tradeos-core/internal/indicators"
	"tradeos-core/internal/market"
	"tradeos-core/internal/progression"
	"tradeos-core/internal/trading"
)

// buyWindow bounds how long buy timestamps are retained for the
// buy-frequency indicator.
const buyWindow = time.Hour

// Session is one user's live game: their simulator, price history, portfolio
// and progression. All portfolio mutations happen under mu so concurrent
// trade requests serialize.
type Session struct {
	userID     string
	difficulty trading.Difficulty
	ai         bool
	bus        *events.Bus
	sim        *market.Simulator
	history    *market.History

	mu        sync.Mutex
	portfolio trading.Portfolio
	xp        int
	level     int
	startedAt time.Time
	buyTimes  []int64
}

// tradeDetail captures what a trade changed, for persistence and logging.
type tradeDetail struct {
	Kind       TradeKind
	Price      float64
	Qty        float64
	QuoteValue float64
	PnLChange  float64
	Points     int
	Level      int
	LeveledUp  bool
}

// UserID returns the owning user id.
func (s *Session) UserID() string { return s.userID }

// Difficulty returns the immutable session difficulty.
func (s *Session) Difficulty() trading.Difficulty { return s.difficulty }

// IsAI reports whether the session belongs to an automated trader.
func (s *Session) IsAI() bool { return s.ai }

// Bus returns the session-scoped event bus.
func (s *Session) Bus() *events.Bus { return s.bus }

// History returns the session's tick buffer.
func (s *Session) History() *market.History { return s.history }

// CurrentPrice returns the simulator's latest price.
func (s *Session) CurrentPrice() float64 { return s.sim.CurrentPrice() }

// State assembles the client-facing game state.
func (s *Session) State() State {
	price := s.sim.CurrentPrice()

	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		UserID:         s.userID,
		Difficulty:     s.difficulty,
		Portfolio:      s.portfolio,
		Level:          s.level,
		XP:             s.xp,
		XPForNextLevel: progression.XPForNextLevel(s.level),
		SessionStart:   s.startedAt.UnixMilli(),
		CurrentPrice:   price,
		UnrealizedPnL:  trading.UnrealizedPnL(s.portfolio, price),
		PriceHistory:   s.history.Ticks(),
	}
}

// Signals computes the indicator snapshot over the session's history.
func (s *Session) Signals() indicators.Snapshot {
	s.mu.Lock()
	buys := make([]int64, len(s.buyTimes))
	copy(buys, s.buyTimes)
	s.mu.Unlock()

	return indicators.Compute(s.history.Ticks(), buys)
}

// Validate runs the advisory pre-trade check at the current price.
func (s *Session) Validate(kind TradeKind) trading.Validation {
	price := s.sim.CurrentPrice()

	s.mu.Lock()
	defer s.mu.Unlock()
	return trading.ValidateTrade(s.portfolio, price, s.difficulty, sideFor(kind))
}

func sideFor(kind TradeKind) trading.Side {
	if kind == TradeBuy {
		return trading.SideBuy
	}
	return trading.SideSell
}

// execute applies a trade to the portfolio and progression under the session
// lock. amount <= 0 selects the difficulty's default sizing. The returned
// detail is zero-valued when the trade was rejected or was a no-op.
func (s *Session) execute(kind TradeKind, amount float64) (TradeResult, tradeDetail) {
	price := s.sim.CurrentPrice()

	s.mu.Lock()
	defer s.mu.Unlock()

	if v := trading.ValidateTrade(s.portfolio, price, s.difficulty, sideFor(kind)); !v.Valid {
		return TradeResult{Success: false, Portfolio: s.portfolio, Reason: v.Reason}, tradeDetail{}
	}

	old := s.portfolio
	var next trading.Portfolio
	switch kind {
	case TradeBuy:
		if amount > 0 {
			next = trading.BuyAmount(old, price, amount)
		} else {
			next = trading.Buy(old, price, s.difficulty)
		}
	case TradeSell:
		if amount > 0 {
			next = trading.SellAmount(old, price, amount)
		} else {
			next = trading.Sell(old, price, s.difficulty)
		}
	case TradePanic:
		next = trading.PanicExit(old, price)
	default:
		return TradeResult{Success: false, Portfolio: old, Reason: "Unknown trade type"}, tradeDetail{}
	}

	if next.TotalTrades == old.TotalTrades {
		// Engine no-op (e.g. buy amount exceeding balance).
		return TradeResult{Success: false, Portfolio: old, Reason: "Insufficient balance"}, tradeDetail{}
	}

	// Executed size and proceeds come from the balance deltas so points and
	// records can never drift from what the ledger actually did.
	detail := tradeDetail{Kind: kind, Price: price}
	if kind == TradeBuy {
		detail.Qty = next.BalanceAsset - old.BalanceAsset
		detail.QuoteValue = old.BalanceQuote - next.BalanceQuote
	} else {
		detail.Qty = old.BalanceAsset - next.BalanceAsset
		detail.QuoteValue = next.BalanceQuote - old.BalanceQuote
	}
	detail.PnLChange = next.RealizedPnL - old.RealizedPnL
	detail.Points = progression.Points(detail.QuoteValue, detail.PnLChange, s.difficulty)

	if detail.PnLChange > 0 {
		s.xp += progression.XP(detail.PnLChange, s.difficulty)
		if lvl := progression.Level(s.xp); lvl > s.level {
			s.level = lvl
			detail.LeveledUp = true
		}
	}
	detail.Level = s.level

	now := time.Now().UnixMilli()
	if kind == TradeBuy {
		s.buyTimes = append(s.buyTimes, now)
		s.pruneBuys(now)
	}

	s.portfolio = next
	return TradeResult{Success: true, Portfolio: next, PointsEarned: detail.Points}, detail
}

// pruneBuys drops buy timestamps outside the retention window. Caller holds mu.
func (s *Session) pruneBuys(now int64) {
	cutoff := now - buyWindow.Milliseconds()
	i := 0
	for ; i < len(s.buyTimes); i++ {
		if s.buyTimes[i] >= cutoff {
			break
		}
	}
	if i > 0 {
		s.buyTimes = append(s.buyTimes[:0], s.buyTimes[i:]...)
	}
}

// snapshot reads the persistable state under the lock.
func (s *Session) snapshot() (trading.Portfolio, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portfolio, s.level, s.xp
}

// restore overwrites portfolio and progression from persisted state.
func (s *Session) restore(p trading.Portfolio, level, xp int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portfolio = p
	s.level = level
	s.xp = xp
}

func (s *Session) stop() {
	s.sim.Stop()
	s.bus.Close()
}
