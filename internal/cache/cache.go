package cache

import (
	"sync"
	"sync/atomic"
)

// Map is a thread-safe get-or-create map keyed by structural hash.
//
// Map is safe for concurrent use.
// Map must not be copied after creation (has mutex).
type Map[V any] struct {
	mu      sync.RWMutex
	buckets map[uint32][]V
	size    int

	// Statistics (atomic for lock-free reads)
	hits       atomic.Uint64
	misses     atomic.Uint64
	collisions atomic.Uint64
}

// NewMap creates an empty map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{
		buckets: make(map[uint32][]V),
	}
}

// Get returns the value stored under hash for which match reports true.
func (m *Map[V]) Get(hash uint32, match func(V) bool) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return find(m.buckets[hash], match)
}

// GetOrCreate returns the value stored under hash for which match reports
// true, or calls create and stores its result.
//
// This method implements the "get or create" pattern with double-check locking:
//  1. Fast path: RLock, look up the bucket, return if found
//  2. Slow path: Lock, look up again, create if still missing
//
// A create error is returned as is and nothing is stored.
func (m *Map[V]) GetOrCreate(hash uint32, match func(V) bool, create func() (V, error)) (V, error) {
	// Fast path: read lock
	m.mu.RLock()
	if v, ok := find(m.buckets[hash], match); ok {
		m.mu.RUnlock()
		m.hits.Add(1)
		return v, nil
	}
	m.mu.RUnlock()

	// Slow path: write lock with double-check
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket := m.buckets[hash]
	if v, ok := find(bucket, match); ok {
		m.hits.Add(1)
		return v, nil
	}

	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}

	if len(bucket) > 0 {
		m.collisions.Add(1)
	}
	m.buckets[hash] = append(bucket, v)
	m.size++
	m.misses.Add(1)

	return v, nil
}

// Range calls fn for every stored value. fn must not call back into m.
func (m *Map[V]) Range(fn func(V)) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, bucket := range m.buckets {
		for _, v := range bucket {
			fn(v)
		}
	}
}

// Clear removes all entries and resets statistics. It returns the removed
// values so the caller can release them.
func (m *Map[V]) Clear() []V {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := make([]V, 0, m.size)
	for _, bucket := range m.buckets {
		removed = append(removed, bucket...)
	}
	m.buckets = make(map[uint32][]V)
	m.size = 0
	m.hits.Store(0)
	m.misses.Store(0)
	m.collisions.Store(0)

	return removed
}

// Len returns the number of stored values.
func (m *Map[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.size
}

// Stats returns map statistics.
func (m *Map[V]) Stats() Stats {
	return Stats{
		Len:        m.Len(),
		Hits:       m.hits.Load(),
		Misses:     m.misses.Load(),
		Collisions: m.collisions.Load(),
	}
}

// find returns the first value in bucket accepted by match.
func find[V any](bucket []V, match func(V) bool) (V, bool) {
	for _, v := range bucket {
		if match(v) {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Stats contains map statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits is the number of lookups served from the map.
	Hits uint64
	// Misses is the number of lookups that created a value.
	Misses uint64
	// Collisions counts values stored under a hash that already held
	// a structurally different value.
	Collisions uint64
}

// HitRate returns the hit rate (0.0 to 1.0).
// Returns 0.0 if no requests have been made.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total)
}
