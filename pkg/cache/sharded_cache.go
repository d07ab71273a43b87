package cache

import (
	"hash/fnv"
	"sync"
	"time"
)

const numShards = 16

// Sharded is a concurrency-friendly cache split across fnv-hashed shards so
// hot keys don't contend on a single lock. Every value carries its write time
// for staleness checks.
type Sharded[V any] struct {
	shards [numShards]*shard[V]
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]entry[V]
}

type entry[V any] struct {
	value     V
	updatedAt time.Time
}

// NewSharded creates an empty sharded cache.
func NewSharded[V any]() *Sharded[V] {
	c := &Sharded[V]{}
	for i := 0; i < numShards; i++ {
		c.shards[i] = &shard[V]{
			items: make(map[string]entry[V]),
		}
	}
	return c
}

// getShard returns the shard for the given key.
func (c *Sharded[V]) getShard(key string) *shard[V] {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%numShards]
}

// Set stores a value under the key, stamping it with the current time.
func (c *Sharded[V]) Set(key string, value V) {
	sh := c.getShard(key)
	sh.mu.Lock()
	sh.items[key] = entry[V]{
		value:     value,
		updatedAt: time.Now(),
	}
	sh.mu.Unlock()
}

// Get retrieves a value regardless of its age.
func (c *Sharded[V]) Get(key string) (V, bool) {
	sh := c.getShard(key)
	sh.mu.RLock()
	e, ok := sh.items[key]
	sh.mu.RUnlock()
	return e.value, ok
}

// GetFresh retrieves a value only if it was written within maxAge.
func (c *Sharded[V]) GetFresh(key string, maxAge time.Duration) (V, bool) {
	sh := c.getShard(key)
	sh.mu.RLock()
	e, ok := sh.items[key]
	sh.mu.RUnlock()
	if !ok || time.Since(e.updatedAt) > maxAge {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Delete removes a key from the cache.
func (c *Sharded[V]) Delete(key string) {
	sh := c.getShard(key)
	sh.mu.Lock()
	delete(sh.items, key)
	sh.mu.Unlock()
}

// Len returns total items across all shards.
func (c *Sharded[V]) Len() int {
	total := 0
	for _, sh := range c.shards {
		sh.mu.RLock()
		total += len(sh.items)
		sh.mu.RUnlock()
	}
	return total
}

// Cleanup removes entries older than maxAge and reports how many went.
func (c *Sharded[V]) Cleanup(maxAge time.Duration) int {
	removed := 0
	cutoff := time.Now().Add(-maxAge)

	for _, sh := range c.shards {
		sh.mu.Lock()
		for key, e := range sh.items {
			if e.updatedAt.Before(cutoff) {
				delete(sh.items, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Stats provides cache statistics.
type Stats struct {
	TotalItems  int            `json:"total_items"`
	ShardCounts [numShards]int `json:"shard_counts"`
	OldestAge   time.Duration  `json:"oldest_age"`
}

// GetStats returns current occupancy per shard and the age of the oldest
// entry.
func (c *Sharded[V]) GetStats() Stats {
	stats := Stats{}
	var oldest time.Time

	for i, sh := range c.shards {
		sh.mu.RLock()
		stats.ShardCounts[i] = len(sh.items)
		stats.TotalItems += len(sh.items)
		for _, e := range sh.items {
			if oldest.IsZero() || e.updatedAt.Before(oldest) {
				oldest = e.updatedAt
			}
		}
		sh.mu.RUnlock()
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	return stats
}
