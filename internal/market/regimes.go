package market

import (
	"math"
	"math/rand"
)

// Pattern enumerates the regime kinds that can overlay the base random walk.
type Pattern int

const (
	PatternPump Pattern = iota
	PatternDump
	PatternRug
	PatternWhale
	PatternParabolic
	PatternSlowGrind
	PatternChop
	patternCount
)

var patternNames = [patternCount]string{
	"pump", "dump", "rug", "whale", "parabolic", "slowGrind", "chop",
}

func (p Pattern) String() string {
	if p < 0 || p >= patternCount {
		return "unknown"
	}
	return patternNames[p]
}

// PatternToggles enables/disables individual patterns. The zero value means
// "all enabled" via DefaultToggles.
type PatternToggles struct {
	Pump      bool
	Dump      bool
	Rug       bool
	Whale     bool
	Parabolic bool
	SlowGrind bool
	Chop      bool
}

// DefaultToggles enables every pattern.
func DefaultToggles() PatternToggles {
	return PatternToggles{Pump: true, Dump: true, Rug: true, Whale: true, Parabolic: true, SlowGrind: true, Chop: true}
}

func (t PatternToggles) enabled(p Pattern) bool {
	switch p {
	case PatternPump:
		return t.Pump
	case PatternDump:
		return t.Dump
	case PatternRug:
		return t.Rug
	case PatternWhale:
		return t.Whale
	case PatternParabolic:
		return t.Parabolic
	case PatternSlowGrind:
		return t.SlowGrind
	case PatternChop:
		return t.Chop
	default:
		return false
	}
}

// regimeParams are the per-pattern activation/decay knobs. Defaults follow
// the classic tuning; market.yaml presets may override them.
type regimeParams struct {
	Probability float64
	MinDuration int
	MaxDuration int
}

func defaultParams() [patternCount]regimeParams {
	return [patternCount]regimeParams{
		PatternPump:      {Probability: 0.02, MinDuration: 20, MaxDuration: 50},
		PatternDump:      {Probability: 0.02, MinDuration: 20, MaxDuration: 50},
		PatternRug:       {Probability: 0.005, MinDuration: 5, MaxDuration: 5},
		PatternWhale:     {Probability: 0.01, MinDuration: 3, MaxDuration: 3},
		PatternParabolic: {Probability: 0.01, MinDuration: 30, MaxDuration: 70},
		PatternSlowGrind: {Probability: 0.05}, // duration handled by early-end draw
		PatternChop:      {Probability: 0.03, MinDuration: 15, MaxDuration: 35},
	}
}

// slowGrindEndProbability is the per-tick chance an active slow grind stops.
const slowGrindEndProbability = 0.1

// regimeState is one pattern's mutable timer.
type regimeState struct {
	active    bool
	remaining int
	intensity float64 // pump/dump
	spike     float64 // whale, absolute quote delta
	accel     float64 // parabolic
	direction float64 // slowGrind, ±1
}

// Regimes owns the overlapping pattern timers and their activation/decay
// logic. Not safe for concurrent use; the simulator serializes ticks.
type Regimes struct {
	rng     *rand.Rand
	toggles PatternToggles
	params  [patternCount]regimeParams
	states  [patternCount]regimeState
}

// NewRegimes builds an inert regime set.
func NewRegimes(rng *rand.Rand, toggles PatternToggles, params [patternCount]regimeParams) *Regimes {
	return &Regimes{rng: rng, toggles: toggles, params: params}
}

// Advance runs one transition step: enabled inert patterns may activate on a
// Bernoulli draw, active patterns count down and deactivate at zero.
func (r *Regimes) Advance(price float64) {
	for p := PatternPump; p < patternCount; p++ {
		if r.toggles.enabled(p) && r.rng.Float64() < r.params[p].Probability {
			r.activate(p, price)
		}
		r.decay(p)
	}
}

func (r *Regimes) activate(p Pattern, price float64) {
	st := &r.states[p]
	st.active = true
	st.remaining = r.sampleDuration(p)

	switch p {
	case PatternPump, PatternDump:
		st.intensity = 0.5 + r.rng.Float64()*0.5
	case PatternWhale:
		st.spike = price * (0.1 + r.rng.Float64()*0.2)
	case PatternParabolic:
		st.accel = 1.0
	case PatternSlowGrind:
		if r.rng.Float64() > 0.5 {
			st.direction = 1
		} else {
			st.direction = -1
		}
	}
}

func (r *Regimes) decay(p Pattern) {
	st := &r.states[p]
	if !st.active {
		return
	}

	if p == PatternSlowGrind {
		// Slow grind has no fixed duration; it ends on its own draw.
		if r.rng.Float64() < slowGrindEndProbability {
			st.active = false
		}
		return
	}

	st.remaining--
	if st.remaining <= 0 {
		st.active = false
		if p == PatternParabolic {
			st.accel = 0
		}
	}
}

func (r *Regimes) sampleDuration(p Pattern) int {
	prm := r.params[p]
	if prm.MaxDuration <= prm.MinDuration {
		return prm.MinDuration
	}
	return prm.MinDuration + r.rng.Intn(prm.MaxDuration-prm.MinDuration+1)
}

// Delta combines the base random-walk noise with every active pattern's
// contribution. An active chop regime overrides the whole sum with bounded
// sideways noise.
func (r *Regimes) Delta(price, base float64) float64 {
	delta := base

	if st := r.states[PatternPump]; st.active {
		delta += price * st.intensity * 0.1
	}
	if st := r.states[PatternDump]; st.active {
		delta -= price * st.intensity * 0.1
	}
	if st := r.states[PatternRug]; st.active {
		delta -= price * 0.5
	}
	if st := r.states[PatternWhale]; st.active {
		delta += st.spike
	}
	if st := &r.states[PatternParabolic]; st.active {
		delta += price * st.accel * 0.05
		st.accel *= 1.1
	}
	if st := r.states[PatternSlowGrind]; st.active {
		delta += price * st.direction * 0.01
	}
	if r.states[PatternChop].active {
		delta = (r.rng.Float64() - 0.5) * price * 0.02
	}

	return delta
}

// Trend labels the tick. Precedence: rug > whale > percent-change sign, with
// small moves reported as sideways.
func (r *Regimes) Trend(newPrice, delta float64) Trend {
	if r.states[PatternRug].active {
		return TrendRug
	}
	if r.states[PatternWhale].active {
		return TrendWhale
	}

	percentChange := delta / newPrice * 100
	if math.Abs(percentChange) < 0.5 {
		return TrendSideways
	}
	if percentChange > 0 {
		return TrendUp
	}
	return TrendDown
}

// Active reports whether a pattern is currently running.
func (r *Regimes) Active(p Pattern) bool {
	if p < 0 || p >= patternCount {
		return false
	}
	return r.states[p].active
}
