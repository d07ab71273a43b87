package market

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"tradeos-core/internal/trading"
)

// floorPrice keeps the asset from ever reaching zero.
const floorPrice = 0.01

// volatilityMultiplier scales the base random walk per difficulty.
func volatilityMultiplier(d trading.Difficulty) float64 {
	switch d {
	case trading.DifficultyDegen:
		return 1.0
	case trading.DifficultyPro:
		return 1.5
	default:
		return 0.5
	}
}

// Config constructs a Simulator. InitialPrice, Volatility and TickInterval
// must be positive; construction fails fast instead of clamping.
type Config struct {
	InitialPrice float64
	Volatility   float64
	Difficulty   trading.Difficulty
	TickInterval time.Duration
	Patterns     PatternToggles
	Presets      *Presets // optional market.yaml overrides
	Seed         int64    // 0 means time-seeded
}

// Simulator drives a regime-switching random walk and emits one tick per
// interval. One goroutine per instance; ticks are produced serially.
type Simulator struct {
	mu      sync.Mutex
	cfg     Config
	price   float64
	rng     *rand.Rand
	regimes *Regimes
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewSimulator validates cfg and builds a stopped simulator with every
// pattern inert.
func NewSimulator(cfg Config) (*Simulator, error) {
	if cfg.InitialPrice <= 0 {
		return nil, fmt.Errorf("simulator config: initial price must be positive, got %v", cfg.InitialPrice)
	}
	if cfg.Volatility <= 0 {
		return nil, fmt.Errorf("simulator config: volatility must be positive, got %v", cfg.Volatility)
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("simulator config: tick interval must be positive, got %v", cfg.TickInterval)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	params := defaultParams()
	toggles := cfg.Patterns
	if cfg.Presets != nil {
		cfg.Presets.apply(&params, &toggles)
	}

	return &Simulator{
		cfg:     cfg,
		price:   cfg.InitialPrice,
		rng:     rng,
		regimes: NewRegimes(rng, toggles, params),
	}, nil
}

// Start schedules tick computation at the configured interval. Callers must
// Stop before starting again; a second Start on a running simulator is a
// no-op to protect the single-timer invariant.
func (s *Simulator) Start(onTick func(price float64, trend Trend)) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		t := time.NewTicker(s.cfg.TickInterval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				price, trend := s.step()
				onTick(price, trend)
			}
		}
	}()
}

// Stop cancels the tick schedule. Idempotent and safe on a never-started
// simulator; blocks until the tick goroutine has exited.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
}

// CurrentPrice returns the latest price. Callable at any time, including
// before Start.
func (s *Simulator) CurrentPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.price
}

// step advances the regime set and computes the next price.
func (s *Simulator) step() (float64, Trend) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.regimes.Advance(s.price)

	vol := s.cfg.Volatility * volatilityMultiplier(s.cfg.Difficulty)
	base := (s.rng.Float64()*2 - 1) * vol * s.price

	delta := s.regimes.Delta(s.price, base)

	newPrice := s.price + delta
	if newPrice < floorPrice {
		newPrice = floorPrice
	}
	s.price = newPrice

	return newPrice, s.regimes.Trend(newPrice, delta)
}
