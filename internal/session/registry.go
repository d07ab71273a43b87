package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"tradeos-core/internal/events"
	"tradeos-core/internal/market"
	"tradeos-core/internal/monitor"
	"tradeos-core/internal/trading"
	"tradeos-core/pkg/config"
	"tradeos-core/pkg/db"
	"tradeos-core/pkg/i18n"
)

// ErrNotStarted is returned when an operation targets a user without a live
// session.
var ErrNotStarted = errors.New("price simulator not started")

// Registry owns all live sessions and wires them to persistence and metrics.
type Registry struct {
	cfg     *config.Config
	store   *db.Database
	metrics *monitor.SystemMetrics
	presets *market.Presets

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry. presets may be nil.
func NewRegistry(cfg *config.Config, store *db.Database, metrics *monitor.SystemMetrics, presets *market.Presets) *Registry {
	return &Registry{
		cfg:      cfg,
		store:    store,
		metrics:  metrics,
		presets:  presets,
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session for a user, or nil.
func (r *Registry) Get(userID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[userID]
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Start creates a fresh session for the user, replacing any existing one.
// The price series is bootstrapped with synthetic history and the simulator
// takes over from its last point. With resume set, a persisted snapshot (if
// any) restores the portfolio and progression instead of starting flat.
func (r *Registry) Start(ctx context.Context, userID string, difficulty trading.Difficulty, resume bool) (*Session, error) {
	return r.start(ctx, userID, difficulty, resume, false)
}

// StartBot creates a session for an automated trader. Its trades are flagged
// so the leaderboard can separate humans from bots.
func (r *Registry) StartBot(ctx context.Context, userID string, difficulty trading.Difficulty) (*Session, error) {
	return r.start(ctx, userID, difficulty, false, true)
}

func (r *Registry) start(ctx context.Context, userID string, difficulty trading.Difficulty, resume, ai bool) (*Session, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	history := market.NewHistory(market.DefaultHistoryCapacity)
	seed := market.GenerateHistory(rng, r.cfg.InitialPrice, r.cfg.HistoryHours, r.cfg.HistoryIntervalMinutes)
	for _, t := range seed {
		history.Append(t)
	}
	lastPrice := r.cfg.InitialPrice
	if last, ok := history.Last(); ok {
		lastPrice = last.Price
	}

	portfolio := trading.NewPortfolio(r.cfg.StartingBalance)
	level, xp := 1, 0

	if resume {
		snap, err := r.store.GetSnapshot(ctx, userID)
		if err != nil {
			return nil, err
		}
		if snap != nil {
			difficulty = trading.ParseDifficulty(snap.Difficulty)
			portfolio = trading.Portfolio{
				BalanceQuote: snap.BalanceQuote,
				BalanceAsset: snap.BalanceAsset,
				RealizedPnL:  snap.RealizedPnL,
				EntryPrice:   snap.EntryPrice,
				TotalTrades:  uint64(snap.TotalTrades),
			}
			level, xp = snap.Level, int(snap.XP)
		}
	}

	sim, err := market.NewSimulator(market.Config{
		InitialPrice: lastPrice,
		Volatility:   r.cfg.Volatility,
		Difficulty:   difficulty,
		TickInterval: time.Duration(r.cfg.TickIntervalMs) * time.Millisecond,
		Patterns:     r.toggles(),
		Presets:      r.presets,
	})
	if err != nil {
		return nil, err
	}

	s := &Session{
		userID:     userID,
		difficulty: difficulty,
		ai:         ai,
		bus:        events.NewBus(),
		sim:        sim,
		history:    history,
		portfolio:  portfolio,
		level:      level,
		xp:         xp,
		startedAt:  time.Now(),
	}

	r.mu.Lock()
	if old := r.sessions[userID]; old != nil {
		old.stop()
	}
	r.sessions[userID] = s
	count := len(r.sessions)
	r.mu.Unlock()
	r.metrics.SetActiveSessions(count)

	sim.Start(func(price float64, trend market.Trend) {
		timer := monitor.NewTimer(r.metrics.TickLatency)
		tick := market.Tick{Price: price, Timestamp: time.Now().UnixMilli(), Trend: trend}
		history.Append(tick)
		s.bus.Publish(events.EventPriceTick, tick)
		s.bus.Publish(events.EventDeviceSignal, DeviceSignal{Type: "led", Color: ledColorFor(trend)})
		r.metrics.IncrementTicks()
		timer.Stop()
	})

	log.Printf(i18n.M().HistorySeeded, history.Len(), userID, lastPrice)
	log.Printf(i18n.M().SimulatorStarted, userID, difficulty, time.Duration(r.cfg.TickIntervalMs)*time.Millisecond)
	log.Printf(i18n.M().SessionStarted, userID, difficulty)

	return s, nil
}

// Reset stops and removes a user's session and deletes the persisted
// snapshot. Resetting an absent session is not an error.
func (r *Registry) Reset(ctx context.Context, userID string) error {
	r.mu.Lock()
	s := r.sessions[userID]
	if s != nil {
		delete(r.sessions, userID)
	}
	count := len(r.sessions)
	r.mu.Unlock()

	if s != nil {
		s.stop()
		log.Printf(i18n.M().SimulatorStopped, userID)
	}
	r.metrics.SetActiveSessions(count)

	if err := r.store.DeleteSnapshot(ctx, userID); err != nil {
		return err
	}
	log.Printf(i18n.M().SessionReset, userID)
	return nil
}

// ExecuteTrade runs a trade against the user's session, persists the
// outcome, and emits the companion signals. Persistence failures are logged
// but never fail an executed trade.
func (r *Registry) ExecuteTrade(ctx context.Context, userID string, kind TradeKind, amount float64) (TradeResult, error) {
	s := r.Get(userID)
	if s == nil {
		return TradeResult{}, ErrNotStarted
	}

	timer := monitor.NewTimer(r.metrics.TradeLatency)
	defer timer.Stop()

	result, detail := s.execute(kind, amount)
	if !result.Success {
		log.Printf(i18n.M().TradeRejected, userID, result.Reason)
		return result, nil
	}

	r.metrics.IncrementTrades()
	log.Printf(i18n.M().TradeExecuted, userID, detail.Kind, detail.Qty, detail.Price, detail.Points)

	s.bus.Publish(events.EventTradeExecuted, result)
	if kind == TradeBuy {
		s.bus.Publish(events.EventDeviceSignal, DeviceSignal{Type: "led", Color: "green"})
	} else {
		s.bus.Publish(events.EventDeviceSignal, DeviceSignal{Type: "led", Color: "red"})
	}
	if detail.LeveledUp {
		log.Printf(i18n.M().LevelUp, userID, detail.Level)
		s.bus.Publish(events.EventLevelUp, detail.Level)
		s.bus.Publish(events.EventDeviceSignal, DeviceSignal{
			Type:    "notification",
			Message: fmt.Sprintf("Level up! You're now level %d", detail.Level),
			Level:   detail.Level,
		})
	}

	r.persistTrade(ctx, s, detail)
	return result, nil
}

// persistTrade writes the trade row, user aggregates and session snapshot.
func (r *Registry) persistTrade(ctx context.Context, s *Session, detail tradeDetail) {
	dbTimer := monitor.NewTimer(r.metrics.DBLatency)
	defer dbTimer.Stop()

	side := string(trading.SideSell)
	if detail.Kind == TradeBuy {
		side = string(trading.SideBuy)
	}

	trade := db.Trade{
		ID:         uuid.NewString(),
		UserID:     s.userID,
		Side:       side,
		Price:      detail.Price,
		Qty:        detail.Qty,
		QuoteValue: detail.QuoteValue,
		PnL:        detail.PnLChange,
		Points:     int64(detail.Points),
		Difficulty: string(s.difficulty),
		IsAI:       s.ai,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.store.InsertTrade(ctx, trade); err != nil {
		log.Printf(i18n.M().TradeSaveFailed, s.userID, err)
		r.metrics.IncrementErrors()
	}

	if err := r.store.AddUserStats(ctx, s.userID, int64(detail.Points), detail.QuoteValue, detail.PnLChange, s.ai); err != nil {
		log.Printf(i18n.M().StatsUpdateFailed, s.userID, err)
		r.metrics.IncrementErrors()
	}

	portfolio, level, xp := s.snapshot()
	snap := db.SessionSnapshot{
		UserID:       s.userID,
		Difficulty:   string(s.difficulty),
		BalanceQuote: portfolio.BalanceQuote,
		BalanceAsset: portfolio.BalanceAsset,
		EntryPrice:   portfolio.EntryPrice,
		RealizedPnL:  portfolio.RealizedPnL,
		TotalTrades:  int64(portfolio.TotalTrades),
		Level:        level,
		XP:           int64(xp),
	}
	if err := r.store.UpsertSnapshot(ctx, snap); err != nil {
		log.Printf(i18n.M().SnapshotSaveFailed, s.userID, err)
		r.metrics.IncrementErrors()
	}
}

// Shutdown stops every live session.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		sessions = append(sessions, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.stop()
	}
	r.metrics.SetActiveSessions(0)
}

func (r *Registry) toggles() market.PatternToggles {
	return market.PatternToggles{
		Pump:      r.cfg.EnablePump,
		Dump:      r.cfg.EnableDump,
		Rug:       r.cfg.EnableRug,
		Whale:     r.cfg.EnableWhale,
		Parabolic: r.cfg.EnableParabolic,
		SlowGrind: r.cfg.EnableSlowGrind,
		Chop:      r.cfg.EnableChop,
	}
}
