// Package logging provides structured logging infrastructure for the beancounter application.
// It wraps Go's standard log/slog package with context-aware logging, correlation IDs,
// and domain-specific log attributes.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// contextKey is used for storing logger-related values in context.
type contextKey string

const (
	// CorrelationIDKey is the context key for the per-invocation correlation ID.
	CorrelationIDKey contextKey = "correlation_id"
	// TokenizerKey is the context key for the selected tokenizer identifier.
	TokenizerKey contextKey = "tokenizer"
	// FileKey is the context key for the file being analyzed.
	FileKey contextKey = "file"
)

// Level represents log levels.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format represents log output formats.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds logging configuration.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer
	AddSource  bool
	TimeFormat string
}

// DefaultConfig returns the default logging configuration: warnings and
// errors only, as text on stderr, so diagnostics never mix with the report.
func DefaultConfig() Config {
	return Config{
		Level:      LevelWarn,
		Format:     FormatText,
		Output:     os.Stderr,
		AddSource:  false,
		TimeFormat: time.RFC3339,
	}
}

// Logger wraps slog.Logger with additional functionality for beancounter.
type Logger struct {
	slogger *slog.Logger
}

// global is the package-level default logger.
var (
	global     *Logger
	globalOnce sync.Once
)

// Init initializes the global logger with the provided configuration.
func Init(cfg Config) *Logger {
	globalOnce.Do(func() {
		global = New(cfg)
	})
	return global
}

// Default returns the global logger, initializing it with defaults if necessary.
func Default() *Logger {
	if global == nil {
		Init(DefaultConfig())
	}
	return global
}

// New creates a new Logger with the provided configuration.
func New(cfg Config) *Logger {
	level := &slog.LevelVar{}
	level.Set(parseLevel(cfg.Level))

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && cfg.TimeFormat != "" {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format(cfg.TimeFormat))
				}
			}
			return a
		},
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{slogger: slog.New(handler)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(Config{Level: LevelError, Output: io.Discard})
}

// parseLevel converts a Level to slog.Level.
func parseLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slogger: l.slogger.With(args...)}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}

// DebugContext logs at debug level with context.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slogger.DebugContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// InfoContext logs at info level with context.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slogger.InfoContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// WarnContext logs at warn level with context.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slogger.WarnContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// ErrorContext logs at error level with context.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slogger.ErrorContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// enrichArgs extracts context values and adds them as log attributes.
func (l *Logger) enrichArgs(ctx context.Context, args []any) []any {
	enriched := make([]any, 0, len(args)+6)

	if v := ctx.Value(CorrelationIDKey); v != nil {
		enriched = append(enriched, "correlation_id", v)
	}
	if v := ctx.Value(TokenizerKey); v != nil {
		enriched = append(enriched, "tokenizer", v)
	}
	if v := ctx.Value(FileKey); v != nil {
		enriched = append(enriched, "file", v)
	}

	enriched = append(enriched, args...)
	return enriched
}

// --- Context helpers ---

// WithCorrelationID adds a correlation ID to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// WithNewCorrelationID adds a freshly generated correlation ID to the context.
func WithNewCorrelationID(ctx context.Context) context.Context {
	return WithCorrelationID(ctx, uuid.New().String())
}

// WithTokenizer adds the tokenizer identifier to the context.
func WithTokenizer(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TokenizerKey, id)
}

// WithFile adds the file path to the context.
func WithFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, FileKey, path)
}

// CorrelationID extracts the correlation ID from context.
func CorrelationID(ctx context.Context) string {
	if v := ctx.Value(CorrelationIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// --- Domain-specific logging helpers ---

// LogBatchStart logs the start of a batch run.
func LogBatchStart(ctx context.Context, logger *Logger, files int) {
	logger.InfoContext(ctx, "batch analysis started", "files", files)
}

// LogBatchComplete logs the end of a batch run.
func LogBatchComplete(ctx context.Context, logger *Logger, files, failed int, duration time.Duration) {
	logger.InfoContext(ctx, "batch analysis completed",
		"files", files,
		"failed", failed,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogFileAnalyzed logs the statistics of one analyzed file.
func LogFileAnalyzed(ctx context.Context, logger *Logger, tokens, words, chars int, duration time.Duration) {
	logger.DebugContext(ctx, "file analyzed",
		"tokens", tokens,
		"words", words,
		"characters", chars,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogFileFailed logs a file that could not be analyzed.
func LogFileFailed(ctx context.Context, logger *Logger, err error) {
	logger.WarnContext(ctx, "file analysis failed", "error", err.Error())
}

// LogTokenizerFallback logs that a provider failed and the character count was used instead.
func LogTokenizerFallback(ctx context.Context, logger *Logger, kind, stage string, err error) {
	logger.WarnContext(ctx, "tokenizer unavailable, falling back to character count",
		"kind", kind,
		"stage", stage,
		"error", err.Error(),
	)
}

// LogCacheHit logs a token cache hit.
func LogCacheHit(ctx context.Context, logger *Logger, digest string, tokens int) {
	logger.DebugContext(ctx, "cache hit",
		"digest", digest,
		"tokens", tokens,
	)
}

// LogCacheMiss logs a token cache miss.
func LogCacheMiss(ctx context.Context, logger *Logger, digest string) {
	logger.DebugContext(ctx, "cache miss",
		"digest", digest,
	)
}
