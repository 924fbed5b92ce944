package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/beancounter/internal/adapters/cache"
	"github.com/jbctechsolutions/beancounter/internal/presentation/cli/output"
)

// NewCacheCmd creates the token cache management command.
func NewCacheCmd(globals *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the token count cache",
		Long: `Manage the token count cache.

Token counts are stored by tokenizer and content hash, so analyzing an
unchanged file again skips encoding. Fallback counts are never stored.`,
	}

	cmd.AddCommand(newCacheStatsCmd(globals))
	cmd.AddCommand(newCacheClearCmd(globals))

	return cmd
}

func newCacheStatsCmd(globals *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(cmd, globals)
			if err != nil {
				return err
			}

			tc, err := openCache(globals)
			if err != nil {
				return err
			}
			defer tc.Close()

			stats, err := tc.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get cache stats: %w", err)
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(map[string]any{
					"path":           tc.Path(),
					"total_entries":  stats.TotalEntries,
					"hit_count":      stats.HitCount,
					"miss_count":     stats.MissCount,
					"eviction_count": stats.EvictionCount,
					"hit_rate":       stats.HitRate,
				})
			}

			formatter.Header("Cache Statistics")
			formatter.Item("Path", tc.Path())
			formatter.Item("Entries", fmt.Sprintf("%d", stats.TotalEntries))
			formatter.Item("Hits", fmt.Sprintf("%d", stats.HitCount))
			formatter.Item("Misses", fmt.Sprintf("%d", stats.MissCount))
			formatter.Item("Hit Rate", fmt.Sprintf("%.1f%%", stats.HitRate))
			formatter.Item("Evictions", fmt.Sprintf("%d", stats.EvictionCount))
			if !stats.OldestEntry.IsZero() {
				formatter.Item("Oldest", formatCacheAge(time.Since(stats.OldestEntry))+" ago")
				formatter.Item("Newest", formatCacheAge(time.Since(stats.NewestEntry))+" ago")
			}
			return nil
		},
	}
}

func newCacheClearCmd(globals *GlobalFlags) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached token counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(cmd, globals)
			if err != nil {
				return err
			}

			if !confirm {
				formatter.Warning("This will clear ALL cached token counts.")
				formatter.Println("Use --confirm to proceed.")
				return nil
			}

			tc, err := openCache(globals)
			if err != nil {
				return err
			}
			defer tc.Close()

			if err := tc.Clear(context.WithoutCancel(cmd.Context())); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			formatter.Success("Cache cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm clearing all cache entries")

	return cmd
}

// openCache opens the cache configured for this user.
func openCache(globals *GlobalFlags) (*cache.SQLiteCache, error) {
	cfg, err := loadConfig(globals.ConfigFile)
	if err != nil {
		return nil, err
	}

	tc, err := cache.Open(cfg.Cache.Path, cfg.Cache.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return tc, nil
}

// formatCacheAge formats a duration as its largest whole unit.
func formatCacheAge(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	case d >= time.Hour:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d >= time.Minute:
		return fmt.Sprintf("%dm", d/time.Minute)
	case d >= time.Second:
		return fmt.Sprintf("%ds", d/time.Second)
	default:
		return fmt.Sprintf("%dms", d/time.Millisecond)
	}
}
