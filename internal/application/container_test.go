package application

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jbctechsolutions/beancounter/internal/adapters/cache"
	domainTokenizer "github.com/jbctechsolutions/beancounter/internal/domain/tokenizer"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/config"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Cache.Path = filepath.Join(t.TempDir(), "cache.db")
	cfg.Tokenizer.Offline = true
	return cfg
}

func TestNewContainer(t *testing.T) {
	ctx := context.Background()

	container, err := NewContainer(ctx, testConfig(t), Options{})
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}
	defer container.Close(ctx)

	if container.Config() == nil {
		t.Error("Config should not be nil")
	}
	if container.Logger() == nil {
		t.Error("Logger should not be nil")
	}
	if container.Tracer() == nil {
		t.Error("Tracer should not be nil")
	}
	if container.Registry() == nil {
		t.Error("Registry should not be nil")
	}
	if container.Analyzer() == nil {
		t.Error("Analyzer should not be nil")
	}
	if container.TokenCache() == nil {
		t.Error("TokenCache should be open when enabled")
	}
}

func TestNewContainer_NilConfigUsesDefaults(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainer(ctx, nil, Options{NoCache: true})
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}
	defer container.Close(ctx)

	if container.Config().Tokenizer.Default != config.DefaultTokenizer {
		t.Errorf("expected default config, got %+v", container.Config().Tokenizer)
	}
}

func TestNewContainer_CacheDisabled(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		opts   Options
	}{
		{"config disabled", func(c *config.Config) { c.Cache.Enabled = false }, Options{}},
		{"flag disabled", func(*config.Config) {}, Options{NoCache: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)

			container, err := NewContainer(ctx, cfg, tt.opts)
			if err != nil {
				t.Fatalf("NewContainer failed: %v", err)
			}
			defer container.Close(ctx)

			if container.TokenCache() != nil {
				t.Error("TokenCache should be nil")
			}
		})
	}
}

func TestNewContainer_UnopenableCacheIsNotFatal(t *testing.T) {
	ctx := context.Background()
	logs := &bytes.Buffer{}

	// A regular file cannot be the parent directory of the database.
	blocker := testutil.WriteFile(t, t.TempDir(), "blocker", "x")
	cfg := testConfig(t)
	cfg.Cache.Path = filepath.Join(blocker, "cache.db")

	container, err := NewContainer(ctx, cfg, Options{LogOutput: logs})
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}
	defer container.Close(ctx)

	if container.TokenCache() != nil {
		t.Error("TokenCache should be nil when it cannot be opened")
	}
	if !strings.Contains(logs.String(), "token cache unavailable") {
		t.Errorf("expected warning, got %q", logs.String())
	}
}

func TestNewContainer_InvalidTracing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tracing.Enabled = true
	cfg.Tracing.ExporterType = "carrier-pigeon"

	if _, err := NewContainer(context.Background(), cfg, Options{}); err == nil {
		t.Error("expected error for unsupported exporter")
	}
}

func TestContainer_AnalyzeOffline(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainer(ctx, testConfig(t), Options{})
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}
	defer container.Close(ctx)

	path := testutil.WriteFile(t, t.TempDir(), "hello.txt", testutil.SampleHelloWorld)
	spec := domainTokenizer.Default()

	first := container.Analyzer().Analyze(ctx, path, spec)
	second := container.Analyzer().Analyze(ctx, path, spec)

	testutil.AssertContains(t, first, "Total tokens: 2\n", "Average characters per token: 5.50\n")
	testutil.AssertEqual(t, second, first)

	stats, err := container.TokenCache().Stats(ctx)
	testutil.AssertNoError(t, err)
	if stats.TotalEntries != 1 || stats.HitCount != 1 {
		t.Errorf("cache stats = %+v, want 1 entry and 1 hit", stats)
	}
}

func TestContainer_MemoryTier(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		entries    int
		wantTiered bool
	}{
		{"enabled", 16, true},
		{"disabled", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Cache.MemoryEntries = tt.entries

			container, err := NewContainer(ctx, cfg, Options{})
			if err != nil {
				t.Fatalf("NewContainer failed: %v", err)
			}
			defer container.Close(ctx)

			_, tiered := container.TokenCache().(*cache.TieredCache)
			if tiered != tt.wantTiered {
				t.Errorf("tiered = %v, want %v", tiered, tt.wantTiered)
			}
		})
	}
}

func TestContainer_CloseTwice(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainer(ctx, testConfig(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := container.Close(ctx); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := container.Close(ctx); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
