package bot

import (
	"context"
	"testing"

	"tradeos-core/internal/indicators"
	"tradeos-core/internal/monitor"
	"tradeos-core/internal/session"
	"tradeos-core/internal/trading"
	"tradeos-core/pkg/config"
	"tradeos-core/pkg/db"
)

func newTestRegistry(t *testing.T) (*session.Registry, *db.Database) {
	t.Helper()

	store, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := db.ApplyMigrations(store); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	cfg := &config.Config{
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
	r := session.NewRegistry(cfg, store, monitor.NewSystemMetrics(), nil)
	t.Cleanup(r.Shutdown)
	return r, store
}

func TestKindFor(t *testing.T) {
	tests := []struct {
		level indicators.SignalLevel
		kind  session.TradeKind
		ok    bool
	}{
		{indicators.SignalStrongBuy, session.TradeBuy, true},
		{indicators.SignalBuy, session.TradeBuy, true},
		{indicators.SignalHold, "", false},
		{indicators.SignalSell, session.TradeSell, true},
		{indicators.SignalStrongSell, session.TradePanic, true},
	}
	for _, tt := range tests {
		kind, ok := kindFor(tt.level)
		if kind != tt.kind || ok != tt.ok {
			t.Errorf("kindFor(%s) = %q, %v; want %q, %v", tt.level, kind, ok, tt.kind, tt.ok)
		}
	}
}

func TestBotTradesAreFlaggedAsAI(t *testing.T) {
	ctx := context.Background()
	r, store := newTestRegistry(t)

	trader := New(r, "degen-bot", trading.DifficultyDegen, 1)
	if err := trader.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer trader.Stop()

	if sess := r.Get("degen-bot"); sess == nil || !sess.IsAI() {
		t.Fatal("bot session missing or not flagged AI")
	}

	res, err := r.ExecuteTrade(ctx, "degen-bot", session.TradeBuy, 0)
	if err != nil || !res.Success {
		t.Fatalf("buy = %+v, %v", res, err)
	}

	trades, err := store.GetTradesByUser(ctx, "degen-bot", 10)
	if err != nil {
		t.Fatalf("get trades: %v", err)
	}
	if len(trades) != 1 || !trades[0].IsAI {
		t.Fatalf("trades = %+v, want one AI-flagged trade", trades)
	}

	humans, err := store.Leaderboard(ctx, 10, false)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(humans) != 0 {
		t.Fatalf("human leaderboard has %d entries, want 0", len(humans))
	}
	all, err := store.Leaderboard(ctx, 10, true)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(all) != 1 || !all[0].IsAI {
		t.Fatalf("full leaderboard = %+v, want one AI entry", all)
	}
}

func TestStopBeforeStartIsSafe(t *testing.T) {
	r, _ := newTestRegistry(t)
	trader := New(r, "idle-bot", trading.DifficultyNoob, 0)
	trader.Stop()

	if trader.everyTicks != defaultEveryTicks {
		t.Fatalf("everyTicks = %d, want default %d", trader.everyTicks, defaultEveryTicks)
	}
}
