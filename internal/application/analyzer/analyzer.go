package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jbctechsolutions/beancounter/internal/domain/analysis"
	domainErrors "github.com/jbctechsolutions/beancounter/internal/domain/errors"
	domainTokenizer "github.com/jbctechsolutions/beancounter/internal/domain/tokenizer"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/logging"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/tracing"
)

// Analyzer turns files into report sections.
type Analyzer struct {
	adapter  *Adapter
	logger   *logging.Logger
	tracer   *tracing.Tracer
	readFile func(name string) ([]byte, error)
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithTracer sets the tracer.
func WithTracer(t *tracing.Tracer) Option {
	return func(a *Analyzer) { a.tracer = t }
}

// New creates an Analyzer that counts tokens through adapter.
func New(adapter *Adapter, opts ...Option) *Analyzer {
	a := &Analyzer{
		adapter:  adapter,
		readFile: os.ReadFile,
	}
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

// Analyze returns the report section for one file. Failures are rendered
// into the section, never returned.
func (a *Analyzer) Analyze(ctx context.Context, path string, spec domainTokenizer.Spec) string {
	section, _ := a.section(ctx, path, spec)
	return section
}

// section renders one file and reports whether analysis succeeded.
func (a *Analyzer) section(ctx context.Context, path string, spec domainTokenizer.Spec) (string, bool) {
	ctx = logging.WithFile(ctx, path)
	ctx, span := a.tracer.StartFileSpan(ctx, path)
	defer span.End()

	result, err := a.AnalyzeFile(ctx, path, spec)
	if err != nil {
		span.RecordError(err)
		logging.LogFileFailed(ctx, a.logger, err)
		if errors.Is(err, domainErrors.ErrFileNotFound) {
			return analysis.NotFoundReport(path), false
		}
		return analysis.ErrorReport(err), false
	}

	span.SetCounts(result.Tokens, result.Words, result.Characters)
	return result.Render(), true
}

// AnalyzeFile reads path and computes its statistics.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, spec domainTokenizer.Spec) (analysis.Result, error) {
	start := time.Now()

	text, err := a.read(path)
	if err != nil {
		return analysis.Result{}, err
	}

	count := a.adapter.CountTokens(ctx, spec, text)
	result := analysis.NewResult(path, spec.Identifier, text, count.Tokens)

	logging.LogFileAnalyzed(ctx, a.logger, result.Tokens, result.Words, result.Characters, time.Since(start))
	return result, nil
}

// lineEndings folds CRLF and lone CR to LF, as text-mode reads do.
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// read loads path as UTF-8 text with universal newlines.
func (a *Analyzer) read(path string) (string, error) {
	data, err := a.readFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", path, domainErrors.ErrFileNotFound)
		}
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", path, domainErrors.ErrInvalidUTF8)
	}
	return lineEndings.Replace(string(data)), nil
}
