// Package scanner analyzes many Python files concurrently, caching results
// by file content so unchanged files are not re-parsed.
package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maypok86/otter"
	"github.com/mvp-joe/pydecl/internal/extraction"
	"github.com/mvp-joe/pydecl/internal/parsers"
	"github.com/mvp-joe/pydecl/internal/source"
	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of analyzing one file. Exactly one of Summary
// and Err is set.
type FileResult struct {
	Path    string
	Hash    string // hex SHA-256 of the content, empty when the file could not be read
	Summary *extraction.ModuleSummary
	Err     error
}

// Stats summarizes a scan.
type Stats struct {
	Files       int
	Failed      int
	Classes     int
	Functions   int
	Methods     int
	CacheHits   int
	CacheMisses int
	Duration    time.Duration
}

// Options configures a Scanner.
type Options struct {
	// Workers bounds concurrent parses. Defaults to GOMAXPROCS.
	Workers int

	// CacheSize is the number of file results kept in memory. Zero disables
	// the cache.
	CacheSize int

	// Progress receives scan events. Defaults to NoOpProgressReporter.
	Progress ProgressReporter
}

// Scanner analyzes batches of files. It is safe for concurrent use.
type Scanner struct {
	parser   *parsers.PythonParser
	workers  int
	cache    *otter.Cache[string, *extraction.ModuleSummary]
	progress ProgressReporter

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Scanner.
func New(opts Options) (*Scanner, error) {
	s := &Scanner{
		parser:   parsers.NewPythonParser(),
		workers:  opts.Workers,
		progress: opts.Progress,
	}
	if s.workers <= 0 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	if s.progress == nil {
		s.progress = NoOpProgressReporter{}
	}

	if opts.CacheSize > 0 {
		cache, err := otter.MustBuilder[string, *extraction.ModuleSummary](opts.CacheSize).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		s.cache = &cache
	}

	return s, nil
}

// Close releases the cache.
func (s *Scanner) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// ScanFile analyzes a single file. Cached summaries are shared between
// callers and must be treated as read-only.
func (s *Scanner) ScanFile(path string) FileResult {
	src, err := source.FromPath(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}

	hash := contentHash(src.Text)
	key := path + "\x00" + hash
	if s.cache != nil {
		if summary, ok := s.cache.Get(key); ok {
			s.hits.Add(1)
			return FileResult{Path: path, Hash: hash, Summary: summary}
		}
	}
	s.misses.Add(1)

	decls, err := s.parser.Parse(src.Text, src.Origin)
	if err != nil {
		return FileResult{Path: path, Hash: hash, Err: err}
	}

	summary := decls.Summary()
	if s.cache != nil {
		s.cache.Set(key, summary)
	}
	return FileResult{Path: path, Hash: hash, Summary: summary}
}

// Scan analyzes paths with bounded concurrency. Results are returned in input
// order; per-file failures are recorded in FileResult.Err and never abort the
// batch. The returned error is non-nil only when ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context, paths []string) ([]FileResult, *Stats, error) {
	start := time.Now()
	hitsBefore, missesBefore := s.hits.Load(), s.misses.Load()

	results := make([]FileResult, len(paths))
	s.progress.OnScanStart(len(paths))

	var progressMu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			results[i] = s.ScanFile(path)

			progressMu.Lock()
			s.progress.OnFileScanned(path, results[i].Err)
			progressMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	stats := &Stats{
		Files:       len(paths),
		CacheHits:   int(s.hits.Load() - hitsBefore),
		CacheMisses: int(s.misses.Load() - missesBefore),
		Duration:    time.Since(start),
	}
	for _, r := range results {
		if r.Err != nil {
			stats.Failed++
			continue
		}
		stats.Classes += len(r.Summary.Classes)
		stats.Functions += len(r.Summary.Functions)
		for _, c := range r.Summary.Classes {
			stats.Methods += len(c.Methods)
		}
	}

	s.progress.OnScanComplete(stats)
	return results, stats, nil
}

// contentHash keys cache entries by content so edits invalidate them without
// explicit eviction.
func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
