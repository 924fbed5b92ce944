// Package cache provides token count caches backed by memory and SQLite.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/jbctechsolutions/beancounter/internal/application/ports"
)

// Digest returns the cache key for a piece of text.
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// DefaultPath returns ~/.beancounter/cache.db.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".beancounter", "cache.db"), nil
}

// SQLiteCache implements ports.TokenCache using SQLite.
type SQLiteCache struct {
	db         *sql.DB
	path       string
	maxEntries int64
	now        func() time.Time

	mu     sync.Mutex
	closed bool
}

// Ensure SQLiteCache implements ports.TokenCache.
var _ ports.TokenCache = (*SQLiteCache)(nil)

// Open opens (creating if needed) the cache database at path and runs
// migrations. maxEntries <= 0 disables eviction.
func Open(path string, maxEntries int64) (*SQLiteCache, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("could not create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("could not open cache database: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping cache database: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	return &SQLiteCache{
		db:         db,
		path:       path,
		maxEntries: maxEntries,
		now:        time.Now,
	}, nil
}

// Path returns the database file path.
func (s *SQLiteCache) Path() string {
	return s.path
}

// Get retrieves a stored token count.
func (s *SQLiteCache) Get(ctx context.Context, tokenizer, digest string) (int, bool) {
	var tokens int
	err := s.db.QueryRowContext(ctx, `
		SELECT tokens FROM token_counts
		WHERE tokenizer = ? AND digest = ?
	`, tokenizer, digest).Scan(&tokens)
	if err != nil {
		s.incrementStat(ctx, "miss_count")
		return 0, false
	}

	s.incrementStat(ctx, "hit_count")

	_, _ = s.db.ExecContext(ctx, `
		UPDATE token_counts
		SET hit_count = hit_count + 1, last_accessed_at = ?
		WHERE tokenizer = ? AND digest = ?
	`, s.now().UnixNano(), tokenizer, digest)

	return tokens, true
}

// Put stores a token count and evicts least recently used rows beyond maxEntries.
func (s *SQLiteCache) Put(ctx context.Context, tokenizer, digest string, tokens int) error {
	now := s.now().UnixNano()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO token_counts
		(tokenizer, digest, tokens, hit_count, created_at, last_accessed_at)
		VALUES (?, ?, ?, 0, ?, ?)
	`, tokenizer, digest, tokens, now, now)
	if err != nil {
		return fmt.Errorf("could not store token count: %w", err)
	}

	if s.maxEntries > 0 {
		return s.evictOverflow(ctx)
	}
	return nil
}

// evictOverflow removes the least recently used rows above maxEntries.
func (s *SQLiteCache) evictOverflow(ctx context.Context) error {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM token_counts`).Scan(&count); err != nil {
		return fmt.Errorf("could not count cache entries: %w", err)
	}
	overflow := count - s.maxEntries
	if overflow <= 0 {
		return nil
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM token_counts
		WHERE rowid IN (
			SELECT rowid FROM token_counts
			ORDER BY last_accessed_at ASC
			LIMIT ?
		)
	`, overflow)
	if err != nil {
		return fmt.Errorf("could not evict cache entries: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows > 0 {
		s.incrementStatBy(ctx, "eviction_count", rows)
	}
	return nil
}

// Stats returns cache statistics.
func (s *SQLiteCache) Stats(ctx context.Context) (*ports.CacheStats, error) {
	stats := &ports.CacheStats{}

	var oldest, newest sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(created_at), MAX(created_at) FROM token_counts
	`).Scan(&stats.TotalEntries, &oldest, &newest)
	if err != nil {
		return nil, err
	}
	if oldest.Valid {
		stats.OldestEntry = time.Unix(0, oldest.Int64)
	}
	if newest.Valid {
		stats.NewestEntry = time.Unix(0, newest.Int64)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT stat_type, stat_value FROM cache_stats`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var statType string
		var value int64
		if err := rows.Scan(&statType, &value); err != nil {
			return nil, err
		}
		switch statType {
		case "hit_count":
			stats.HitCount = value
		case "miss_count":
			stats.MissCount = value
		case "eviction_count":
			stats.EvictionCount = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if total := stats.HitCount + stats.MissCount; total > 0 {
		stats.HitRate = float64(stats.HitCount) / float64(total) * 100
	}

	return stats, nil
}

// Clear removes all entries and resets statistics.
func (s *SQLiteCache) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM token_counts`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `UPDATE cache_stats SET stat_value = 0`)
	return err
}

// Close closes the database connection.
func (s *SQLiteCache) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("could not close cache database: %w", err)
	}
	return nil
}

func (s *SQLiteCache) incrementStat(ctx context.Context, statType string) {
	s.incrementStatBy(ctx, statType, 1)
}

func (s *SQLiteCache) incrementStatBy(ctx context.Context, statType string, n int64) {
	_, _ = s.db.ExecContext(ctx, `
		UPDATE cache_stats SET stat_value = stat_value + ? WHERE stat_type = ?
	`, n, statType)
}
