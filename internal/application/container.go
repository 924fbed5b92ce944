// Package application provides application-level services and dependency injection.
package application

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jbctechsolutions/beancounter/internal/adapters/cache"
	adapterTokenizer "github.com/jbctechsolutions/beancounter/internal/adapters/tokenizer"
	"github.com/jbctechsolutions/beancounter/internal/application/analyzer"
	"github.com/jbctechsolutions/beancounter/internal/application/ports"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/config"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/logging"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/tracing"
)

// Options carries command line overrides of the configuration.
type Options struct {
	Verbose   bool      // log at debug level regardless of config
	Offline   bool      // force embedded BPE vocabularies
	NoCache   bool      // skip the token cache for this run
	LogOutput io.Writer // defaults to stderr
	Fetch     adapterTokenizer.VocabularyFetcher
}

// Container holds all application dependencies and manages their lifecycle.
type Container struct {
	config *config.Config
	opts   Options

	logger *logging.Logger
	tracer *tracing.Tracer

	registry   *adapterTokenizer.Registry
	tokenCache ports.TokenCache

	adapter  *analyzer.Adapter
	analyzer *analyzer.Analyzer
}

// NewContainer wires the analyzer from cfg and opts.
func NewContainer(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	c := &Container{config: cfg, opts: opts}

	if err := c.initObservability(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	if cfg.Cache.Enabled && !opts.NoCache {
		c.initCache()
	}

	c.initServices()
	return c, nil
}

// initObservability sets up logging and tracing.
func (c *Container) initObservability(ctx context.Context) error {
	level := logging.Level(c.config.Logging.Level)
	if level == "" {
		level = logging.LevelWarn
	}
	if c.opts.Verbose {
		level = logging.LevelDebug
	}

	format := logging.FormatText
	if c.config.Logging.Format == "json" {
		format = logging.FormatJSON
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.Format = format
	if c.opts.LogOutput != nil {
		logCfg.Output = c.opts.LogOutput
	}
	c.logger = logging.New(logCfg)

	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:      c.config.Tracing.Enabled,
		ExporterType: tracing.ExporterType(c.config.Tracing.ExporterType),
		OTLPEndpoint: c.config.Tracing.OTLPEndpoint,
		ServiceName:  c.config.Tracing.ServiceName,
		SampleRate:   c.config.Tracing.SampleRate,
	})
	if err != nil {
		return err
	}
	c.tracer = tracer
	return nil
}

// initCache opens the token cache. A cache that cannot be opened only
// disables caching for this run.
func (c *Container) initCache() {
	tc, err := cache.Open(c.config.Cache.Path, c.config.Cache.MaxEntries)
	if err != nil {
		c.logger.Warn("token cache unavailable", "error", err.Error())
		return
	}

	if n := c.config.Cache.MemoryEntries; n > 0 {
		c.tokenCache = cache.NewTieredCache(cache.NewMemoryCache(n), tc)
	} else {
		c.tokenCache = tc
	}
	c.logger.Debug("token cache opened", "path", tc.Path(), "memory_entries", c.config.Cache.MemoryEntries)
}

// initServices builds the tokenizer registry and analyzer.
func (c *Container) initServices() {
	c.registry = adapterTokenizer.NewRegistry(adapterTokenizer.Options{
		Offline:         c.config.Tokenizer.Offline || c.opts.Offline,
		VocabularyFiles: c.config.HuggingFace.Files,
		Fetch:           c.opts.Fetch,
	})

	adapterOpts := []analyzer.AdapterOption{
		analyzer.WithAdapterLogger(c.logger),
		analyzer.WithAdapterTracer(c.tracer),
	}
	if c.tokenCache != nil {
		adapterOpts = append(adapterOpts, analyzer.WithCache(c.tokenCache))
	}
	c.adapter = analyzer.NewAdapter(c.registry, adapterOpts...)

	c.analyzer = analyzer.New(c.adapter,
		analyzer.WithLogger(c.logger),
		analyzer.WithTracer(c.tracer),
	)
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the application logger.
func (c *Container) Logger() *logging.Logger {
	return c.logger
}

// Tracer returns the application tracer.
func (c *Container) Tracer() *tracing.Tracer {
	return c.tracer
}

// Registry returns the tokenizer registry.
func (c *Container) Registry() *adapterTokenizer.Registry {
	return c.registry
}

// Analyzer returns the file analyzer.
func (c *Container) Analyzer() *analyzer.Analyzer {
	return c.analyzer
}

// TokenCache returns the token cache, or nil when caching is off.
func (c *Container) TokenCache() ports.TokenCache {
	return c.tokenCache
}

// Close flushes traces and closes the token cache.
func (c *Container) Close(ctx context.Context) error {
	var errs []error

	if c.tracer != nil {
		if err := c.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer: %w", err))
		}
	}

	if c.tokenCache != nil {
		if err := c.tokenCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close token cache: %w", err))
		}
	}

	return errors.Join(errs...)
}
