// Package analyzer runs the token analysis pipeline: counting tokens with a
// fallback, analyzing files, and combining them into one report.
package analyzer

import (
	"context"
	"fmt"

	"github.com/jbctechsolutions/beancounter/internal/adapters/cache"
	"github.com/jbctechsolutions/beancounter/internal/application/ports"
	"github.com/jbctechsolutions/beancounter/internal/domain/analysis"
	domainErrors "github.com/jbctechsolutions/beancounter/internal/domain/errors"
	domainTokenizer "github.com/jbctechsolutions/beancounter/internal/domain/tokenizer"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/logging"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/tracing"
)

// Failure stages reported in fallback diagnostics.
const (
	StageLoad   = "load"
	StageEncode = "encode"
)

// CounterSource hands out token counters for catalog entries.
type CounterSource interface {
	Get(spec domainTokenizer.Spec) (domainTokenizer.Counter, error)
}

// Count is the outcome of counting tokens in one text.
type Count struct {
	Tokens   int
	Fallback bool // provider failed, Tokens is the code point count
	CacheHit bool
}

// Adapter counts tokens with the selected provider. It never fails: when the
// provider cannot load or encode, the code point count is used instead and a
// warning is logged.
type Adapter struct {
	source CounterSource
	cache  ports.TokenCache
	logger *logging.Logger
	tracer *tracing.Tracer
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithCache enables the token count cache.
func WithCache(c ports.TokenCache) AdapterOption {
	return func(a *Adapter) { a.cache = c }
}

// WithAdapterLogger sets the logger used for diagnostics.
func WithAdapterLogger(l *logging.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = l }
}

// WithAdapterTracer sets the tracer.
func WithAdapterTracer(t *tracing.Tracer) AdapterOption {
	return func(a *Adapter) { a.tracer = t }
}

// NewAdapter creates an Adapter backed by source.
func NewAdapter(source CounterSource, opts ...AdapterOption) *Adapter {
	a := &Adapter{source: source}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.Default()
	}
	if a.tracer == nil {
		a.tracer = tracing.Noop()
	}
	return a
}

// CountTokens returns the number of tokens in text under spec.
func (a *Adapter) CountTokens(ctx context.Context, spec domainTokenizer.Spec, text string) Count {
	if text == "" {
		return Count{}
	}

	ctx = logging.WithTokenizer(ctx, spec.Identifier)
	ctx, span := a.tracer.StartTokenizerSpan(ctx, spec.Identifier, spec.Kind.String())
	defer span.End()

	var digest string
	if a.cache != nil {
		digest = cache.Digest(text)
		if tokens, ok := a.cache.Get(ctx, spec.Identifier, digest); ok {
			logging.LogCacheHit(ctx, a.logger, digest, tokens)
			span.SetCacheHit(true)
			span.SetTokens(tokens, false)
			return Count{Tokens: tokens, CacheHit: true}
		}
		logging.LogCacheMiss(ctx, a.logger, digest)
		span.SetCacheHit(false)
	}

	tokens, stage, err := a.count(spec, text)
	if err != nil {
		logging.LogTokenizerFallback(ctx, a.logger, spec.Kind.String(), stage, err)
		span.RecordError(err)
		fallback := analysis.CountCharacters(text)
		span.SetTokens(fallback, true)
		return Count{Tokens: fallback, Fallback: true}
	}

	if a.cache != nil {
		if err := a.cache.Put(ctx, spec.Identifier, digest, tokens); err != nil {
			a.logger.DebugContext(ctx, "cache store failed", "error", err.Error())
		}
	}

	span.SetTokens(tokens, false)
	return Count{Tokens: tokens}
}

// count loads the counter and encodes text, reporting which stage failed.
// A provider that panics is treated like one that returned an error.
func (a *Adapter) count(spec domainTokenizer.Spec, text string) (tokens int, stage string, err error) {
	if a.source == nil {
		return 0, StageLoad, domainErrors.ErrProviderUnavailable
	}

	counter, err := a.load(spec)
	if err != nil {
		return 0, StageLoad, err
	}

	tokens, err = encode(counter, text)
	if err != nil {
		return 0, StageEncode, domainErrors.WithContext(
			domainErrors.NewError(domainErrors.CodeProvider, fmt.Sprintf("encode with %s", spec.Identifier), err),
			"kind", spec.Kind.String(),
		)
	}
	if tokens < 0 {
		return 0, StageEncode, fmt.Errorf("%w: negative token count from %s", domainErrors.ErrProviderUnavailable, spec.Identifier)
	}
	return tokens, "", nil
}

func (a *Adapter) load(spec domainTokenizer.Spec) (_ domainTokenizer.Counter, err error) {
	defer recoverProvider(&err)
	return a.source.Get(spec)
}

func encode(counter domainTokenizer.Counter, text string) (_ int, err error) {
	defer recoverProvider(&err)
	return counter.CountTokens(text)
}

// recoverProvider converts a provider panic into an error. It must be
// deferred directly.
func recoverProvider(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: provider panicked: %v", domainErrors.ErrProviderUnavailable, r)
	}
}
