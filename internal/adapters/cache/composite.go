package cache

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/jbctechsolutions/beancounter/internal/application/ports"
)

// TieredCache combines an in-memory tier with the SQLite store. Repeated
// lookups within a run are served from memory, while counts persist in
// SQLite across runs.
type TieredCache struct {
	memory *MemoryCache
	sqlite *SQLiteCache

	// Memory hits not yet recorded in the persistent statistics.
	pendingHits int64
}

// Ensure TieredCache implements ports.TokenCache.
var _ ports.TokenCache = (*TieredCache)(nil)

// NewTieredCache creates a two-tier cache with memory in front of sqlite.
func NewTieredCache(memory *MemoryCache, sqlite *SQLiteCache) *TieredCache {
	return &TieredCache{
		memory: memory,
		sqlite: sqlite,
	}
}

// Path returns the database file path of the persistent tier.
func (c *TieredCache) Path() string {
	return c.sqlite.Path()
}

// Get checks memory first, then SQLite, promoting SQLite hits to memory.
func (c *TieredCache) Get(ctx context.Context, tokenizer, digest string) (int, bool) {
	if tokens, ok := c.memory.Get(ctx, tokenizer, digest); ok {
		atomic.AddInt64(&c.pendingHits, 1)
		return tokens, true
	}

	tokens, ok := c.sqlite.Get(ctx, tokenizer, digest)
	if ok {
		_ = c.memory.Put(ctx, tokenizer, digest, tokens)
	}
	return tokens, ok
}

// Put stores a count in both tiers.
func (c *TieredCache) Put(ctx context.Context, tokenizer, digest string, tokens int) error {
	if err := c.memory.Put(ctx, tokenizer, digest, tokens); err != nil {
		return err
	}
	return c.sqlite.Put(ctx, tokenizer, digest, tokens)
}

// Stats returns the persistent statistics plus this run's memory hits.
// Memory misses fall through to SQLite, which counts them itself.
func (c *TieredCache) Stats(ctx context.Context) (*ports.CacheStats, error) {
	stats, err := c.sqlite.Stats(ctx)
	if err != nil {
		return nil, err
	}

	stats.HitCount += atomic.LoadInt64(&c.pendingHits)
	if total := stats.HitCount + stats.MissCount; total > 0 {
		stats.HitRate = float64(stats.HitCount) / float64(total) * 100
	}
	return stats, nil
}

// Clear removes all entries from both tiers.
func (c *TieredCache) Clear(ctx context.Context) error {
	if err := c.memory.Clear(ctx); err != nil {
		return err
	}
	atomic.StoreInt64(&c.pendingHits, 0)
	return c.sqlite.Clear(ctx)
}

// Close records pending memory hits and closes both tiers.
func (c *TieredCache) Close() error {
	if n := atomic.SwapInt64(&c.pendingHits, 0); n > 0 {
		c.sqlite.incrementStatBy(context.Background(), "hit_count", n)
	}
	return errors.Join(c.memory.Close(), c.sqlite.Close())
}
