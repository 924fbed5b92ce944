package cache

import (
	"database/sql"
	"fmt"
)

// applyMigrations applies all database migrations in order.
func applyMigrations(db *sql.DB) error {
	if err := createMigrationsTable(db); err != nil {
		return err
	}

	migrations := []struct {
		version int
		name    string
		sql     string
	}{
		{1, "create_token_counts_table", createTokenCountsTable},
		{2, "create_cache_stats_table", createCacheStatsTable},
		{3, "create_token_counts_indices", createTokenCountsIndices},
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(db, m.version)
		if err != nil {
			return fmt.Errorf("could not check migration %d: %w", m.version, err)
		}
		if applied {
			continue
		}

		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("could not apply migration %d (%s): %w", m.version, m.name, err)
		}

		if err := recordMigration(db, m.version, m.name); err != nil {
			return fmt.Errorf("could not record migration %d: %w", m.version, err)
		}
	}

	return nil
}

// createMigrationsTable creates the migrations tracking table.
func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func isMigrationApplied(db *sql.DB, version int) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func recordMigration(db *sql.DB, version int, name string) error {
	_, err := db.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", version, name)
	return err
}

// Timestamps are unix nanoseconds so ordering is numeric.
const createTokenCountsTable = `
	CREATE TABLE IF NOT EXISTS token_counts (
		tokenizer TEXT NOT NULL,
		digest TEXT NOT NULL,
		tokens INTEGER NOT NULL,
		hit_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		last_accessed_at INTEGER NOT NULL,
		PRIMARY KEY (tokenizer, digest)
	)
`

const createCacheStatsTable = `
	CREATE TABLE IF NOT EXISTS cache_stats (
		stat_type TEXT PRIMARY KEY,
		stat_value INTEGER NOT NULL DEFAULT 0
	);
	INSERT OR IGNORE INTO cache_stats (stat_type, stat_value) VALUES
		('hit_count', 0),
		('miss_count', 0),
		('eviction_count', 0);
`

const createTokenCountsIndices = `
	CREATE INDEX IF NOT EXISTS idx_token_counts_last_accessed ON token_counts(last_accessed_at);
`
