package monitor

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// SystemMetrics tracks runtime health of the simulation service.
type SystemMetrics struct {
	mu sync.RWMutex

	// Latency histograms
	TickLatency  *LatencyHistogram
	TradeLatency *LatencyHistogram
	DBLatency    *LatencyHistogram
	APILatency   *LatencyHistogram

	// Counters
	ticksProcessed uint64
	tradesExecuted uint64
	apiRequests    uint64
	errorsCount    uint64

	// Gauges updated from the session registry and websocket hub.
	activeSessions int
	wsClients      int
}

// LatencyHistogram keeps a sliding window of samples and computes stats
// lazily, recomputing only after new samples arrive.
type LatencyHistogram struct {
	mu          sync.Mutex
	samples     []float64
	maxSize     int
	dirty       bool
	cachedStats LatencyStats
}

// NewSystemMetrics creates a metrics instance with default window sizes.
func NewSystemMetrics() *SystemMetrics {
	return &SystemMetrics{
		TickLatency:  NewLatencyHistogram(1000),
		TradeLatency: NewLatencyHistogram(1000),
		DBLatency:    NewLatencyHistogram(1000),
		APILatency:   NewLatencyHistogram(1000),
	}
}

// NewLatencyHistogram creates a sliding window histogram.
func NewLatencyHistogram(size int) *LatencyHistogram {
	if size <= 0 {
		size = 1000
	}
	return &LatencyHistogram{
		samples: make([]float64, 0, size),
		maxSize: size,
		dirty:   true,
	}
}

// Record adds a latency sample in milliseconds.
func (h *LatencyHistogram) Record(latencyMs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) >= h.maxSize {
		h.samples = h.samples[1:]
	}
	h.samples = append(h.samples, latencyMs)
	h.dirty = true
}

// RecordDuration converts duration to ms and records.
func (h *LatencyHistogram) RecordDuration(d time.Duration) {
	h.Record(float64(d.Nanoseconds()) / 1e6)
}

// Stats returns min, max, avg, p50, p95, p99 over the current window.
func (h *LatencyHistogram) Stats() LatencyStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.dirty && h.cachedStats.Count > 0 {
		return h.cachedStats
	}

	n := len(h.samples)
	if n == 0 {
		return LatencyStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, h.samples)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	h.cachedStats = LatencyStats{
		Min:   sorted[0],
		Max:   sorted[n-1],
		Avg:   sum / float64(n),
		P50:   sorted[n/2],
		P95:   sorted[int(float64(n)*0.95)],
		P99:   sorted[int(float64(n)*0.99)],
		Count: n,
	}
	h.dirty = false

	return h.cachedStats
}

// LatencyStats holds computed latency statistics.
type LatencyStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Count int     `json:"count"`
}

// IncrementTicks increments the processed tick counter.
func (m *SystemMetrics) IncrementTicks() {
	atomic.AddUint64(&m.ticksProcessed, 1)
}

// IncrementTrades increments the executed trade counter.
func (m *SystemMetrics) IncrementTrades() {
	atomic.AddUint64(&m.tradesExecuted, 1)
}

// IncrementAPIRequests increments the handled request counter.
func (m *SystemMetrics) IncrementAPIRequests() {
	atomic.AddUint64(&m.apiRequests, 1)
}

// IncrementErrors increments the error counter.
func (m *SystemMetrics) IncrementErrors() {
	atomic.AddUint64(&m.errorsCount, 1)
}

// SetActiveSessions updates the live session gauge.
func (m *SystemMetrics) SetActiveSessions(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeSessions = n
}

// SetWSClients updates the connected websocket client gauge.
func (m *SystemMetrics) SetWSClients(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wsClients = n
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	TickLatency    LatencyStats `json:"tick_latency"`
	TradeLatency   LatencyStats `json:"trade_latency"`
	DBLatency      LatencyStats `json:"db_latency"`
	APILatency     LatencyStats `json:"api_latency"`
	TicksProcessed uint64       `json:"ticks_processed"`
	TradesExecuted uint64       `json:"trades_executed"`
	APIRequests    uint64       `json:"api_requests"`
	ErrorsCount    uint64       `json:"errors_count"`
	ActiveSessions int          `json:"active_sessions"`
	WSClients      int          `json:"ws_clients"`
	GoroutineCount int          `json:"goroutine_count"`
	HeapAlloc      uint64       `json:"heap_alloc_bytes"`
	HeapSys        uint64       `json:"heap_sys_bytes"`
	Timestamp      time.Time    `json:"timestamp"`
}

// GetSnapshot returns a point-in-time metrics snapshot.
func (m *SystemMetrics) GetSnapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.mu.RLock()
	sessions := m.activeSessions
	clients := m.wsClients
	m.mu.RUnlock()

	return MetricsSnapshot{
		TickLatency:    m.TickLatency.Stats(),
		TradeLatency:   m.TradeLatency.Stats(),
		DBLatency:      m.DBLatency.Stats(),
		APILatency:     m.APILatency.Stats(),
		TicksProcessed: atomic.LoadUint64(&m.ticksProcessed),
		TradesExecuted: atomic.LoadUint64(&m.tradesExecuted),
		APIRequests:    atomic.LoadUint64(&m.apiRequests),
		ErrorsCount:    atomic.LoadUint64(&m.errorsCount),
		ActiveSessions: sessions,
		WSClients:      clients,
		GoroutineCount: runtime.NumGoroutine(),
		HeapAlloc:      memStats.HeapAlloc,
		HeapSys:        memStats.HeapSys,
		Timestamp:      time.Now(),
	}
}

// Timer measures a single operation and records it on Stop.
type Timer struct {
	start     time.Time
	histogram *LatencyHistogram
}

// NewTimer creates a timer that records to the given histogram.
func NewTimer(h *LatencyHistogram) *Timer {
	return &Timer{
		start:     time.Now(),
		histogram: h,
	}
}

// Stop records elapsed time to the histogram and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	if t.histogram != nil {
		t.histogram.RecordDuration(elapsed)
	}
	return elapsed
}
