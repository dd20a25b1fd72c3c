package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mvp-joe/pydecl/internal/scanner"
	"github.com/mvp-joe/pydecl/internal/watcher"
	"github.com/spf13/cobra"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the index up to date as Python files change",
		Long: `Watch indexes the project once, then watches the project root and
re-indexes changed files after a quiet period (watch.debounce_ms).

Stop with Ctrl+C.

Example:
  pydecl watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.loadProject(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = runWatch(ctx, p)
			if errors.Is(err, context.Canceled) {
				log.Printf("Stopped watching")
				return nil
			}
			return err
		},
	}
	return cmd
}

// newCoordinator wires a file watcher on the project root to the session's indexer.
func (p *project) newCoordinator(session *indexSession) (*watcher.WatchCoordinator, error) {
	files, err := watcher.NewFileWatcher([]string{p.rootDir}, watcher.Options{
		Debounce: time.Duration(p.cfg.Watch.DebounceMs) * time.Millisecond,
		Filter:   session.discovery.Matches,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return watcher.NewWatchCoordinator(files, session.indexer), nil
}

func runWatch(ctx context.Context, p *project) error {
	session, err := p.openIndex(scanner.NoOpProgressReporter{})
	if err != nil {
		return err
	}
	defer session.Close()

	stats, err := session.indexer.Index(ctx, nil)
	if err != nil {
		return fmt.Errorf("initial indexing failed: %w", err)
	}
	log.Printf("✓ Indexed %d file(s) (%d classes, %d functions, %d methods)",
		stats.FilesScanned, stats.Classes, stats.Functions, stats.Methods)

	coordinator, err := p.newCoordinator(session)
	if err != nil {
		return err
	}

	log.Printf("Watching %s for changes...", p.rootDir)
	return coordinator.Start(ctx)
}
