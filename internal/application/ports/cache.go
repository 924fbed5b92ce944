// Package ports defines the interfaces the application layer depends on.
package ports

import (
	"context"
	"time"
)

// TokenCache remembers token counts by tokenizer and content digest so an
// unchanged file is not re-encoded on the next run.
type TokenCache interface {
	// Get returns the stored count for (tokenizer, digest).
	Get(ctx context.Context, tokenizer, digest string) (int, bool)

	// Put stores a count, replacing any previous value.
	Put(ctx context.Context, tokenizer, digest string, tokens int) error

	// Stats returns cache statistics.
	Stats(ctx context.Context) (*CacheStats, error)

	// Clear removes all entries and resets statistics.
	Clear(ctx context.Context) error

	// Close releases the underlying storage.
	Close() error
}

// CacheStats summarizes the token cache.
type CacheStats struct {
	TotalEntries  int64
	HitCount      int64
	MissCount     int64
	EvictionCount int64
	HitRate       float64 // percentage, 0-100
	OldestEntry   time.Time
	NewestEntry   time.Time
}
