// Package bot runs an automated trader against its own session. It follows
// the same composite signal exposed to human players and its trades land on
// the leaderboard flagged as AI.
package bot

import (
	"context"
	"log"

	"tradeos-core/internal/events"
	"tradeos-core/internal/indicators"
	"tradeos-core/internal/session"
	"tradeos-core/internal/trading"
	"tradeos-core/pkg/i18n"
)

const defaultEveryTicks = 5

// Trader drives one bot session. It evaluates the indicator snapshot every
// few ticks and acts only when the composite signal changes, so a market that
// stays overbought produces one sell instead of one per tick.
type Trader struct {
	registry   *session.Registry
	userID     string
	difficulty trading.Difficulty
	everyTicks int

	prevSignal indicators.SignalLevel
	cancel     context.CancelFunc
	done       chan struct{}
}

// New creates a trader. everyTicks <= 0 selects the default cadence.
func New(registry *session.Registry, userID string, difficulty trading.Difficulty, everyTicks int) *Trader {
	if everyTicks <= 0 {
		everyTicks = defaultEveryTicks
	}
	return &Trader{
		registry:   registry,
		userID:     userID,
		difficulty: difficulty,
		everyTicks: everyTicks,
		prevSignal: indicators.SignalHold,
		done:       make(chan struct{}),
	}
}

// Start boots the bot's session and begins reacting to price ticks.
func (t *Trader) Start(ctx context.Context) error {
	sess, err := t.registry.StartBot(ctx, t.userID, t.difficulty)
	if err != nil {
		return err
	}

	ctx, t.cancel = context.WithCancel(ctx)
	ticks, unsub := sess.Bus().Subscribe(events.EventPriceTick, 64)
	log.Printf(i18n.M().BotStarted, t.userID, t.difficulty)

	go func() {
		defer close(t.done)
		defer unsub()

		n := 0
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}
				n++
				if n%t.everyTicks != 0 {
					continue
				}
				t.evaluate(ctx, sess)
			}
		}
	}()
	return nil
}

// Stop halts the trading loop. The bot's session stays registered so its
// history remains queryable.
func (t *Trader) Stop() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	log.Printf(i18n.M().BotStopped, t.userID)
}

func (t *Trader) evaluate(ctx context.Context, sess *session.Session) {
	snap := sess.Signals()
	level := snap.AISignal.Signal
	if level == t.prevSignal {
		return
	}
	t.prevSignal = level

	kind, ok := kindFor(level)
	if !ok {
		return
	}
	if kind != session.TradeBuy && sess.State().Portfolio.BalanceAsset <= 0 {
		return
	}

	if _, err := t.registry.ExecuteTrade(ctx, t.userID, kind, 0); err != nil {
		log.Printf(i18n.M().BotTradeFailed, t.userID, err)
	}
}

// kindFor maps a composite signal to a trade action. Holds map to nothing.
func kindFor(level indicators.SignalLevel) (session.TradeKind, bool) {
	switch level {
	case indicators.SignalStrongBuy, indicators.SignalBuy:
		return session.TradeBuy, true
	case indicators.SignalSell:
		return session.TradeSell, true
	case indicators.SignalStrongSell:
		return session.TradePanic, true
	default:
		return "", false
	}
}
