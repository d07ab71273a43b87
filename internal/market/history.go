package market

import "sync"

// DefaultHistoryCapacity bounds the per-session tick buffer.
const DefaultHistoryCapacity = 2000

// History is a bounded FIFO ring buffer of ticks. Appends evict the oldest
// tick on overflow. Safe for concurrent use.
type History struct {
	mu   sync.RWMutex
	buf  []Tick
	head int // index of oldest element
	size int
}

// NewHistory creates an empty buffer with the given capacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{buf: make([]Tick, capacity)}
}

// Append adds a tick, evicting the oldest when full.
func (h *History) Append(t Tick) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.size < len(h.buf) {
		h.buf[(h.head+h.size)%len(h.buf)] = t
		h.size++
		return
	}
	h.buf[h.head] = t
	h.head = (h.head + 1) % len(h.buf)
}

// Ticks returns the buffered ticks in chronological order.
func (h *History) Ticks() []Tick {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Tick, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

// Prices returns just the price series, oldest first.
func (h *History) Prices() []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]float64, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.head+i)%len(h.buf)].Price
	}
	return out
}

// Last returns the most recent tick.
func (h *History) Last() (Tick, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.size == 0 {
		return Tick{}, false
	}
	return h.buf[(h.head+h.size-1)%len(h.buf)], true
}

// Len returns the number of buffered ticks.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}
