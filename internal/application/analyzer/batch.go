package analyzer

import (
	"context"
	"time"

	"github.com/jbctechsolutions/beancounter/internal/domain/analysis"
	domainTokenizer "github.com/jbctechsolutions/beancounter/internal/domain/tokenizer"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/logging"
)

// AnalyzeAll analyzes every path in order and joins the sections. A failing
// file contributes its error section and the batch continues.
func (a *Analyzer) AnalyzeAll(ctx context.Context, paths []string, spec domainTokenizer.Spec) string {
	start := time.Now()
	ctx = logging.WithTokenizer(ctx, spec.Identifier)
	ctx, span := a.tracer.StartBatchSpan(ctx, spec.Identifier, len(paths))
	defer span.End()

	logging.LogBatchStart(ctx, a.logger, len(paths))

	sections := make([]string, 0, len(paths))
	failed := 0
	for _, path := range paths {
		section, ok := a.section(ctx, path, spec)
		if !ok {
			failed++
		}
		sections = append(sections, section)
	}

	span.SetFailed(failed)
	logging.LogBatchComplete(ctx, a.logger, len(paths), failed, time.Since(start))

	return analysis.Join(sections)
}
