package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// openTestCache opens a cache in a temp dir with a controllable clock.
func openTestCache(t *testing.T, maxEntries int64) (*SQLiteCache, *time.Time) {
	t.Helper()

	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), maxEntries)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })

	clock := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return c, &clock
}

func TestDigest(t *testing.T) {
	a := Digest("hello world")
	if len(a) != 64 {
		t.Errorf("len(Digest()) = %d, want 64", len(a))
	}
	if a != Digest("hello world") {
		t.Error("Digest() is not deterministic")
	}
	if a == Digest("hello world!") {
		t.Error("Digest() collided for different input")
	}
}

func TestOpen_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "cache.db")

	c, err := Open(dbPath, 0)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
	if c.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", c.Path(), dbPath)
	}
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	for i := 0; i < 2; i++ {
		c, err := Open(dbPath, 0)
		if err != nil {
			t.Fatalf("Open() #%d error = %v", i+1, err)
		}
		c.Close()
	}
}

func TestSQLiteCache_GetPut(t *testing.T) {
	ctx := context.Background()
	c, _ := openTestCache(t, 0)

	if _, ok := c.Get(ctx, "cl100k_base", "abc"); ok {
		t.Fatal("Get() on empty cache should miss")
	}

	if err := c.Put(ctx, "cl100k_base", "abc", 42); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok := c.Get(ctx, "cl100k_base", "abc")
	if !ok || got != 42 {
		t.Errorf("Get() = (%d, %v), want (42, true)", got, ok)
	}

	// Same digest, different tokenizer is a different entry.
	if _, ok := c.Get(ctx, "gpt2", "abc"); ok {
		t.Error("Get() should be keyed by tokenizer as well as digest")
	}

	if err := c.Put(ctx, "cl100k_base", "abc", 7); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}
	if got, _ := c.Get(ctx, "cl100k_base", "abc"); got != 7 {
		t.Errorf("Get() after overwrite = %d, want 7", got)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.HitCount != 2 || stats.MissCount != 2 {
		t.Errorf("Stats() hits/misses = (%d, %d), want (2, 2)", stats.HitCount, stats.MissCount)
	}
}

func TestSQLiteCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c, _ := openTestCache(t, 2)

	c.Put(ctx, "gpt2", "a", 1)
	c.Put(ctx, "gpt2", "b", 2)
	c.Get(ctx, "gpt2", "a") // a is now more recent than b
	c.Put(ctx, "gpt2", "c", 3)

	if _, ok := c.Get(ctx, "gpt2", "b"); ok {
		t.Error("b should have been evicted")
	}
	for _, d := range []string{"a", "c"} {
		if _, ok := c.Get(ctx, "gpt2", d); !ok {
			t.Errorf("%s should still be cached", d)
		}
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalEntries != 2 {
		t.Errorf("TotalEntries = %d, want 2", stats.TotalEntries)
	}
	if stats.EvictionCount != 1 {
		t.Errorf("EvictionCount = %d, want 1", stats.EvictionCount)
	}
}

func TestSQLiteCache_StatsAndClear(t *testing.T) {
	ctx := context.Background()
	c, _ := openTestCache(t, 0)

	c.Put(ctx, "p50k_base", "x", 10)
	c.Get(ctx, "p50k_base", "x")
	c.Get(ctx, "p50k_base", "missing")

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.HitCount != 1 || stats.MissCount != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", stats.HitCount, stats.MissCount)
	}
	if stats.HitRate != 50 {
		t.Errorf("HitRate = %v, want 50", stats.HitRate)
	}
	if stats.OldestEntry.IsZero() || stats.NewestEntry.IsZero() {
		t.Error("expected entry timestamps")
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	stats, _ = c.Stats(ctx)
	if stats.TotalEntries != 0 || stats.HitCount != 0 || stats.MissCount != 0 {
		t.Errorf("after Clear() stats = %+v", stats)
	}
	if !stats.OldestEntry.IsZero() {
		t.Error("OldestEntry should be zero on an empty cache")
	}
}

func TestSQLiteCache_CloseTwice(t *testing.T) {
	c, _ := openTestCache(t, 0)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
