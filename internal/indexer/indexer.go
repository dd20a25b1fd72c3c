// Package indexer keeps the declaration database in sync with a project tree.
package indexer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mvp-joe/pydecl/internal/discovery"
	"github.com/mvp-joe/pydecl/internal/scanner"
	"github.com/mvp-joe/pydecl/internal/storage"
	"github.com/mvp-joe/pydecl/internal/watcher"
)

// Indexer scans Python files under a root and records their declarations.
// Paths are stored relative to the root with forward slashes.
type Indexer struct {
	rootDir   string
	discovery *discovery.FileDiscovery
	scanner   *scanner.Scanner
	writer    *storage.Writer
	reader    *storage.Reader

	// Serializes writes; watch callbacks and explicit runs may overlap.
	mu sync.Mutex
}

// New creates an Indexer. db must already hold the schema (see storage.Open).
func New(rootDir string, fd *discovery.FileDiscovery, sc *scanner.Scanner, db *sql.DB) *Indexer {
	return &Indexer{
		rootDir:   rootDir,
		discovery: fd,
		scanner:   sc,
		writer:    storage.NewWriter(db),
		reader:    storage.NewReader(db),
	}
}

var _ watcher.Indexer = (*Indexer)(nil)

// Index refreshes the database. With an empty hint every matching file under
// the root is rescanned and files that disappeared are pruned. With a hint
// only those paths are checked: deleted files are removed, a deleted
// directory takes every stored file below it along, a directory that exists
// is expanded into its files, and files whose content hash is unchanged are
// skipped.
func (idx *Indexer) Index(ctx context.Context, hint []string) (*watcher.IndexStats, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if len(hint) == 0 {
		return idx.full(ctx)
	}
	return idx.incremental(ctx, hint)
}

func (idx *Indexer) full(ctx context.Context) (*watcher.IndexStats, error) {
	started := time.Now()

	files, err := idx.discovery.Walk(idx.rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	results, _, err := idx.scanner.Scan(ctx, files)
	if err != nil {
		return nil, err
	}

	stats := &watcher.IndexStats{}
	records := idx.toRecords(results, stats)

	if _, err := idx.writer.WriteScan(idx.rootDir, started, records, true); err != nil {
		return nil, fmt.Errorf("failed to write scan: %w", err)
	}
	stats.FilesScanned = len(records)
	return stats, nil
}

func (idx *Indexer) incremental(ctx context.Context, hint []string) (*watcher.IndexStats, error) {
	started := time.Now()
	stats := &watcher.IndexStats{}

	seen := make(map[string]bool)
	var present, removed []string
	for _, path := range hint {
		abs := path
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(idx.rootDir, abs)
		}

		info, err := os.Stat(abs)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			removed = append(removed, idx.relative(abs))
		case err == nil && info.IsDir():
			files, err := idx.discovery.WalkUnder(abs)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				if !seen[f] {
					seen[f] = true
					present = append(present, f)
				}
			}
		case idx.discovery.Matches(abs) && !seen[abs]:
			seen[abs] = true
			present = append(present, abs)
		}
	}

	results, _, err := idx.scanner.Scan(ctx, present)
	if err != nil {
		return nil, err
	}

	var changed []scanner.FileResult
	for _, r := range results {
		stored, err := idx.reader.FileHash(idx.relative(r.Path))
		if err != nil {
			return nil, err
		}
		if r.Err == nil && r.Hash != "" && r.Hash == stored {
			stats.FilesSkipped++
			continue
		}
		changed = append(changed, r)
	}

	records := idx.toRecords(changed, stats)
	if len(records) > 0 {
		if _, err := idx.writer.WriteScan(idx.rootDir, started, records, false); err != nil {
			return nil, fmt.Errorf("failed to write scan: %w", err)
		}
	}

	deleted, err := idx.writer.DeleteFiles(removed)
	if err != nil {
		return nil, err
	}
	for _, rel := range removed {
		// Vanished paths may be directories; nothing records which
		if rel == "." || escapesRoot(rel) {
			continue
		}
		n, err := idx.writer.DeleteUnder(rel)
		if err != nil {
			return nil, err
		}
		deleted += n
	}

	stats.FilesScanned = len(records)
	stats.FilesRemoved = int(deleted)
	return stats, nil
}

func (idx *Indexer) toRecords(results []scanner.FileResult, stats *watcher.IndexStats) []storage.FileRecord {
	records := make([]storage.FileRecord, 0, len(results))
	for _, r := range results {
		record := storage.FileRecord{
			Path: idx.relative(r.Path),
			Hash: r.Hash,
		}
		if r.Err != nil {
			record.Error = r.Err.Error()
			stats.Failed++
		} else {
			record.Summary = r.Summary
			stats.Classes += len(r.Summary.Classes)
			stats.Functions += len(r.Summary.Functions)
			for _, c := range r.Summary.Classes {
				stats.Methods += len(c.Methods)
			}
		}
		records = append(records, record)
	}
	return records
}

func (idx *Indexer) relative(path string) string {
	rel, err := filepath.Rel(idx.rootDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func escapesRoot(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, "../")
}
