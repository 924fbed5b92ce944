package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jbctechsolutions/beancounter/internal/application/ports"
)

// MemoryCache is an in-process token cache bounded by entry count.
// When full, the least recently used entry is evicted.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[memoryKey]*memoryEntry
	maxEntries int
	now        func() time.Time

	hitCount      int64
	missCount     int64
	evictionCount int64
}

type memoryKey struct {
	tokenizer string
	digest    string
}

type memoryEntry struct {
	tokens    int
	createdAt time.Time
	usedAt    time.Time
}

// Ensure MemoryCache implements ports.TokenCache.
var _ ports.TokenCache = (*MemoryCache)(nil)

// NewMemoryCache creates a memory cache. maxEntries <= 0 means unbounded.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[memoryKey]*memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get retrieves a stored token count.
func (m *MemoryCache) Get(ctx context.Context, tokenizer, digest string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[memoryKey{tokenizer, digest}]
	if !ok {
		atomic.AddInt64(&m.missCount, 1)
		return 0, false
	}

	e.usedAt = m.now()
	atomic.AddInt64(&m.hitCount, 1)
	return e.tokens, true
}

// Put stores a token count, evicting the least recently used entry if full.
func (m *MemoryCache) Put(ctx context.Context, tokenizer, digest string, tokens int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey{tokenizer, digest}
	now := m.now()
	if e, ok := m.entries[key]; ok {
		e.tokens = tokens
		e.usedAt = now
		return nil
	}

	if m.maxEntries > 0 {
		for len(m.entries) >= m.maxEntries {
			m.evictLeastRecent()
		}
	}

	m.entries[key] = &memoryEntry{tokens: tokens, createdAt: now, usedAt: now}
	return nil
}

// evictLeastRecent removes one entry. Must be called with lock held.
func (m *MemoryCache) evictLeastRecent() {
	var oldestKey memoryKey
	var oldest *memoryEntry

	for key, e := range m.entries {
		if oldest == nil || e.usedAt.Before(oldest.usedAt) {
			oldestKey, oldest = key, e
		}
	}

	if oldest != nil {
		delete(m.entries, oldestKey)
		atomic.AddInt64(&m.evictionCount, 1)
	}
}

// Stats returns cache statistics.
func (m *MemoryCache) Stats(ctx context.Context) (*ports.CacheStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hits := atomic.LoadInt64(&m.hitCount)
	misses := atomic.LoadInt64(&m.missCount)

	stats := &ports.CacheStats{
		TotalEntries:  int64(len(m.entries)),
		HitCount:      hits,
		MissCount:     misses,
		EvictionCount: atomic.LoadInt64(&m.evictionCount),
	}
	if hits+misses > 0 {
		stats.HitRate = float64(hits) / float64(hits+misses) * 100
	}

	for _, e := range m.entries {
		if stats.OldestEntry.IsZero() || e.createdAt.Before(stats.OldestEntry) {
			stats.OldestEntry = e.createdAt
		}
		if stats.NewestEntry.IsZero() || e.createdAt.After(stats.NewestEntry) {
			stats.NewestEntry = e.createdAt
		}
	}

	return stats, nil
}

// Clear removes all entries and resets statistics.
func (m *MemoryCache) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[memoryKey]*memoryEntry)
	atomic.StoreInt64(&m.hitCount, 0)
	atomic.StoreInt64(&m.missCount, 0)
	atomic.StoreInt64(&m.evictionCount, 0)
	return nil
}

// Len returns the number of entries held.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close is a no-op; it exists to satisfy ports.TokenCache.
func (m *MemoryCache) Close() error {
	return nil
}
