package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/jbctechsolutions/beancounter/internal/application"
	"github.com/jbctechsolutions/beancounter/internal/domain/analysis"
	"github.com/jbctechsolutions/beancounter/internal/domain/tokenizer"
	"github.com/jbctechsolutions/beancounter/internal/infrastructure/watch"
)

// runWatch prints a fresh section for every file that changes until ctx ends.
func runWatch(ctx context.Context, out io.Writer, container *application.Container, paths []string, spec tokenizer.Spec) error {
	logger := container.Logger()

	w, err := watch.New(watch.Config{Debounce: container.Config().Watch.Debounce}, paths...)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	logger.InfoContext(ctx, "watching files", "files", len(paths))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			logger.DebugContext(ctx, "file changed", "path", ev.Path, "event", string(ev.Type))
			fmt.Fprint(out, analysis.Separator+container.Analyzer().Analyze(ctx, ev.Path, spec))

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "watch error", "error", err.Error())
		}
	}
}
