package session

import (
	"context"
	"testing"

	"tradeos-core/internal/events"
	"tradeos-core/internal/monitor"
	"tradeos-core/internal/trading"
	"tradeos-core/pkg/config"
	"tradeos-core/pkg/db"
)

func testConfig() *config.Config {
	return &config.Config{
		InitialPrice:    1.0,
		Volatility:      0.02,
		TickIntervalMs:  3600_000, // effectively no ticks during tests
		StartingBalance: 1000,
		EnablePump:      true,
		EnableDump:      true,
		EnableRug:       true,
		EnableWhale:     true,
		EnableParabolic: true,
		EnableSlowGrind: true,
		EnableChop:      true,

		HistoryHours:           1,
		HistoryIntervalMinutes: 1,
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	store, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := db.ApplyMigrations(store); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	r := NewRegistry(testConfig(), store, monitor.NewSystemMetrics(), nil)
	t.Cleanup(r.Shutdown)
	return r
}

func TestStartSeedsHistory(t *testing.T) {
	r := newTestRegistry(t)
	s, err := r.Start(context.Background(), "alice", trading.DifficultyNoob, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if got := s.History().Len(); got != 61 {
		t.Fatalf("seeded history length = %d, want 61", got)
	}
	last, _ := s.History().Last()
	if got := s.CurrentPrice(); got != last.Price {
		t.Fatalf("simulator price %v does not continue history at %v", got, last.Price)
	}

	state := s.State()
	if state.Portfolio.BalanceQuote != 1000 || state.Portfolio.BalanceAsset != 0 {
		t.Fatalf("fresh portfolio = %+v", state.Portfolio)
	}
	if state.Level != 1 || state.XP != 0 {
		t.Fatalf("fresh progression = level %d xp %d", state.Level, state.XP)
	}
	if state.XPForNextLevel != 100 {
		t.Fatalf("xp for next level = %d, want 100", state.XPForNextLevel)
	}
}

func TestStartReplacesExistingSession(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	first, err := r.Start(ctx, "alice", trading.DifficultyNoob, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := r.Start(ctx, "alice", trading.DifficultyPro, false)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}

	if first == second {
		t.Fatal("restart returned the same session")
	}
	if got := r.Get("alice"); got != second {
		t.Fatal("registry does not point at the new session")
	}
	if second.Difficulty() != trading.DifficultyPro {
		t.Fatalf("difficulty = %s, want pro", second.Difficulty())
	}
	if r.Count() != 1 {
		t.Fatalf("session count = %d, want 1", r.Count())
	}
}

func TestExecuteTradeWithoutSession(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := r.ExecuteTrade(context.Background(), "ghost", TradeBuy, 0); err != ErrNotStarted {
		t.Fatalf("err = %v, want ErrNotStarted", err)
	}
}

func TestBuyPersistsTradeAndStats(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	if _, err := r.Start(ctx, "alice", trading.DifficultyNoob, false); err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := r.ExecuteTrade(ctx, "alice", TradeBuy, 0)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if !res.Success {
		t.Fatalf("buy rejected: %s", res.Reason)
	}
	if res.Portfolio.BalanceQuote != 950 {
		t.Fatalf("quote after noob buy = %v, want 950", res.Portfolio.BalanceQuote)
	}
	if res.PointsEarned != 50 {
		t.Fatalf("points = %d, want 50", res.PointsEarned)
	}

	trades, err := r.store.GetTradesByUser(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("get trades: %v", err)
	}
	if len(trades) != 1 || trades[0].Side != "buy" || trades[0].QuoteValue != 50 {
		t.Fatalf("persisted trades = %+v", trades)
	}

	stats, err := r.store.GetUserStats(ctx, "alice")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.TotalPoints != 50 || stats.TotalTrades != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	snap, err := r.store.GetSnapshot(ctx, "alice")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if snap == nil || snap.BalanceQuote != 950 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestSellWithoutTokensRejected(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	if _, err := r.Start(ctx, "alice", trading.DifficultyNoob, false); err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := r.ExecuteTrade(ctx, "alice", TradeSell, 0)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if res.Success || res.Reason != "No tokens to sell" {
		t.Fatalf("result = %+v", res)
	}
}

func TestProfitableSellAwardsXP(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	s, err := r.Start(ctx, "alice", trading.DifficultyNoob, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Plant a deep in-the-money position so the sale realizes a large gain.
	price := s.CurrentPrice()
	entry := price / 100
	s.restore(trading.Portfolio{
		BalanceQuote: 0,
		BalanceAsset: 100000 / price,
		EntryPrice:   &entry,
	}, 1, 0)

	res, err := r.ExecuteTrade(ctx, "alice", TradePanic, 0)
	if err != nil {
		t.Fatalf("panic: %v", err)
	}
	if !res.Success {
		t.Fatalf("panic rejected: %s", res.Reason)
	}
	if res.Portfolio.BalanceAsset != 0 || res.Portfolio.EntryPrice != nil {
		t.Fatalf("position not flat: %+v", res.Portfolio)
	}

	state := s.State()
	if state.XP == 0 {
		t.Fatal("profitable exit awarded no XP")
	}
	if state.Level <= 1 {
		t.Fatalf("level = %d, want > 1 after large gain", state.Level)
	}
}

func TestLevelUpPublishesDeviceSignal(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	s, err := r.Start(ctx, "alice", trading.DifficultyNoob, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	signals, unsub := s.Bus().Subscribe(events.EventDeviceSignal, 16)
	defer unsub()

	price := s.CurrentPrice()
	entry := price / 100
	s.restore(trading.Portfolio{
		BalanceAsset: 100000 / price,
		EntryPrice:   &entry,
	}, 1, 0)

	if _, err := r.ExecuteTrade(ctx, "alice", TradePanic, 0); err != nil {
		t.Fatalf("panic: %v", err)
	}

	var sawLED, sawNotification bool
	for len(signals) > 0 {
		sig := (<-signals).(DeviceSignal)
		switch sig.Type {
		case "led":
			sawLED = true
		case "notification":
			sawNotification = true
			if sig.Level <= 1 {
				t.Fatalf("notification level = %d", sig.Level)
			}
		}
	}
	if !sawLED || !sawNotification {
		t.Fatalf("signals led=%v notification=%v", sawLED, sawNotification)
	}
}

func TestResumeRestoresSnapshot(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	if _, err := r.Start(ctx, "alice", trading.DifficultyDegen, false); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := r.ExecuteTrade(ctx, "alice", TradeBuy, 0); err != nil {
		t.Fatalf("buy: %v", err)
	}

	resumed, err := r.Start(ctx, "alice", trading.DifficultyNoob, true)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}

	if resumed.Difficulty() != trading.DifficultyDegen {
		t.Fatalf("resumed difficulty = %s, want degen from snapshot", resumed.Difficulty())
	}
	state := resumed.State()
	if state.Portfolio.BalanceQuote != 900 {
		t.Fatalf("resumed quote = %v, want 900", state.Portfolio.BalanceQuote)
	}
	if state.Portfolio.BalanceAsset <= 0 {
		t.Fatalf("resumed asset = %v", state.Portfolio.BalanceAsset)
	}
}

func TestResetDeletesSessionAndSnapshot(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	if _, err := r.Start(ctx, "alice", trading.DifficultyNoob, false); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := r.ExecuteTrade(ctx, "alice", TradeBuy, 0); err != nil {
		t.Fatalf("buy: %v", err)
	}

	if err := r.Reset(ctx, "alice"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if r.Get("alice") != nil {
		t.Fatal("session still registered after reset")
	}
	snap, err := r.store.GetSnapshot(ctx, "alice")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if snap != nil {
		t.Fatalf("snapshot survived reset: %+v", snap)
	}

	// Resetting again is a no-op, not an error.
	if err := r.Reset(ctx, "alice"); err != nil {
		t.Fatalf("second reset: %v", err)
	}
}

func TestSignalsUseSessionHistory(t *testing.T) {
	r := newTestRegistry(t)
	s, err := r.Start(context.Background(), "alice", trading.DifficultyNoob, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	snap := s.Signals()
	if snap.CurrentPrice != s.CurrentPrice() {
		t.Fatalf("signal price %v != simulator price %v", snap.CurrentPrice, s.CurrentPrice())
	}
	if snap.AISignal.Confidence < 0 || snap.AISignal.Confidence > 100 {
		t.Fatalf("confidence out of range: %d", snap.AISignal.Confidence)
	}
}
