package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/pydecl/internal/scanner"
	"github.com/mvp-joe/pydecl/internal/storage"
	"github.com/spf13/cobra"
)

func newIndexCmd(g *globalOptions) *cobra.Command {
	var quiet, status, asJSON bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Record the project's declarations in the index database",
		Long: `Index scans every Python file under the project root that matches
paths.include and not paths.ignore, and stores its classes, methods and
functions in a SQLite database (.pydecl/declarations.db by default).

Files deleted since the previous run are removed from the index. Files that
fail to parse are recorded with their error.

Examples:
  # Index the current directory
  pydecl index

  # Index without progress output
  pydecl index --quiet

  # Show what the index currently holds
  pydecl index --status --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.loadProject(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if status {
				return runIndexStatus(cmd.OutOrStdout(), p, asJSON)
			}
			return runIndex(cmd, p, quiet)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Disable progress bars and non-error output")
	cmd.Flags().BoolVar(&status, "status", false, "Print index statistics instead of scanning")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output status as JSON")
	return cmd
}

func runIndex(cmd *cobra.Command, p *project, quiet bool) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted! Cancelling indexing...")
			cancel()
		case <-ctx.Done():
		}
	}()

	var progress scanner.ProgressReporter = scanner.NoOpProgressReporter{}
	if !quiet {
		progress = NewCLIProgressReporter(cmd.ErrOrStderr(), false)
	}

	session, err := p.openIndex(progress)
	if err != nil {
		return err
	}
	defer session.Close()

	stats, err := session.indexer.Index(ctx, nil)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Indexed %s files into %s\n",
			formatNumber(stats.FilesScanned), p.display(p.cfg.DatabasePath(p.rootDir)))
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d files failed to parse", stats.Failed, stats.FilesScanned)
	}
	return nil
}

func runIndexStatus(out io.Writer, p *project, asJSON bool) error {
	dbPath := p.cfg.DatabasePath(p.rootDir)
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no index at %s: run 'pydecl index' first", p.display(dbPath))
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	reader := storage.NewReader(db)
	stats, err := reader.Stats()
	if err != nil {
		return err
	}
	scan, err := reader.LatestScan()
	if err != nil {
		return err
	}

	if asJSON {
		output := map[string]interface{}{
			"database": dbPath,
			"stats":    stats,
		}
		if scan != nil {
			output["last_scan"] = map[string]interface{}{
				"id":          scan.ID,
				"started_at":  scan.StartedAt,
				"finished_at": scan.FinishedAt,
				"files":       scan.FileCount,
				"failed":      scan.FailedCount,
			}
		}
		return writeJSON(out, output)
	}

	fmt.Fprintf(out, "Index: %s\n", p.display(dbPath))
	if scan != nil {
		fmt.Fprintf(out, "Last scan: %s (%s files, %s failed)\n",
			scan.FinishedAt.Format("2006-01-02 15:04:05"), formatNumber(scan.FileCount), formatNumber(scan.FailedCount))
	}
	fmt.Fprintf(out, "  Files:     %s (%s failed)\n", formatNumber(stats.Files), formatNumber(stats.Failed))
	fmt.Fprintf(out, "  Classes:   %s\n", formatNumber(stats.Classes))
	fmt.Fprintf(out, "  Methods:   %s\n", formatNumber(stats.Methods))
	fmt.Fprintf(out, "  Functions: %s\n", formatNumber(stats.Functions))
	return nil
}
