// Package config provides configuration structs and utilities for the beancounter application.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config represents the root configuration for the beancounter application.
type Config struct {
	Tokenizer   TokenizerConfig   `yaml:"tokenizer"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	Logging     LoggingConfig     `yaml:"logging"`
	Cache       CacheConfig       `yaml:"cache"`
	Tracing     TracingConfig     `yaml:"tracing"`
	Watch       WatchConfig       `yaml:"watch"`
}

// TokenizerConfig holds tokenizer selection defaults.
type TokenizerConfig struct {
	Default int  `yaml:"default"` // catalog number used when the menu answer is empty
	Offline bool `yaml:"offline"` // use embedded BPE vocabularies, never fetch
}

// HuggingFaceConfig holds settings for model-vocabulary tokenizers.
type HuggingFaceConfig struct {
	// Files maps repository ids to local tokenizer.json files, e.g. for
	// gated repositories downloaded out of band.
	Files map[string]string `yaml:"files,omitempty"`
}

// LoggingConfig holds configuration for application logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// CacheConfig holds configuration for the token count cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`        // defaults to ~/.beancounter/cache.db
	MaxEntries int64  `yaml:"max_entries"` // 0 disables eviction

	// MemoryEntries bounds the in-process tier in front of the database.
	// 0 disables it.
	MemoryEntries int `yaml:"memory_entries"`
}

// TracingConfig holds configuration for OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ExporterType string  `yaml:"exporter_type"` // none, stdout, otlp
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"` // 0.0 to 1.0
	ServiceName  string  `yaml:"service_name"`
}

// WatchConfig holds configuration for watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default configuration values.
const (
	DefaultTokenizer  = 1
	DefaultLogLevel   = "warn"
	DefaultLogFormat  = "text"
	DefaultCacheMax   = 10000
	DefaultMemoryMax  = 1024
	DefaultDebounce   = 200 * time.Millisecond
	DefaultSampleRate = 1.0

	DefaultTracingExporterType = "none"
	DefaultTracingServiceName  = "beancounter"

	// catalogSize mirrors the tokenizer catalog length.
	catalogSize = 8
)

// Valid log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Valid log formats.
var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

// Valid tracing exporter types.
var validTracingExporterTypes = map[string]bool{
	"none":   true,
	"stdout": true,
	"otlp":   true,
}

// NewDefaultConfig creates a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Tokenizer: TokenizerConfig{
			Default: DefaultTokenizer,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Cache: CacheConfig{
			Enabled:       true,
			MaxEntries:    DefaultCacheMax,
			MemoryEntries: DefaultMemoryMax,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			ExporterType: DefaultTracingExporterType,
			SampleRate:   DefaultSampleRate,
			ServiceName:  DefaultTracingServiceName,
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Tokenizer.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tokenizer: %w", err))
	}

	if err := c.HuggingFace.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("huggingface: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}

	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}

	if err := c.Watch.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("watch: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the TokenizerConfig is valid.
func (t *TokenizerConfig) Validate() error {
	if t.Default < 1 || t.Default > catalogSize {
		return fmt.Errorf("default must be between 1 and %d, got %d", catalogSize, t.Default)
	}
	return nil
}

// Validate checks if the HuggingFaceConfig is valid.
func (h *HuggingFaceConfig) Validate() error {
	var errs []error
	for repo, path := range h.Files {
		if repo == "" {
			errs = append(errs, errors.New("files: repository id must not be empty"))
		}
		if path == "" {
			errs = append(errs, fmt.Errorf("files: path for %q must not be empty", repo))
		}
	}
	return errors.Join(errs...)
}

// Validate checks if the LoggingConfig is valid.
func (l *LoggingConfig) Validate() error {
	var errs []error

	if l.Level != "" && !validLogLevels[l.Level] {
		errs = append(errs, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", l.Level))
	}

	if l.Format != "" && !validLogFormats[l.Format] {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be one of json, text", l.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the CacheConfig is valid.
func (c *CacheConfig) Validate() error {
	var errs []error
	if c.MaxEntries < 0 {
		errs = append(errs, errors.New("max_entries must be non-negative"))
	}
	if c.MemoryEntries < 0 {
		errs = append(errs, errors.New("memory_entries must be non-negative"))
	}
	return errors.Join(errs...)
}

// Validate checks if the TracingConfig is valid.
func (t *TracingConfig) Validate() error {
	var errs []error

	if t.ExporterType != "" && !validTracingExporterTypes[t.ExporterType] {
		errs = append(errs, fmt.Errorf("invalid exporter_type %q: must be one of none, stdout, otlp", t.ExporterType))
	}

	if t.SampleRate < 0 || t.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate))
	}

	if t.Enabled && t.ExporterType == "otlp" && t.OTLPEndpoint != "" {
		if _, err := url.Parse("http://" + t.OTLPEndpoint); err != nil {
			errs = append(errs, fmt.Errorf("invalid otlp_endpoint: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the WatchConfig is valid.
func (w *WatchConfig) Validate() error {
	if w.Debounce < 0 {
		return errors.New("debounce must be non-negative")
	}
	return nil
}
