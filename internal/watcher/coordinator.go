package watcher

import (
	"context"
	"log"
)

// WatchCoordinator routes debounced file changes from a FileWatcher to an Indexer.
type WatchCoordinator struct {
	files   FileWatcher
	indexer Indexer

	// OnIndexed, if set, is called after every successful refresh.
	OnIndexed func(stats *IndexStats)
}

// NewWatchCoordinator creates a new watch coordinator.
func NewWatchCoordinator(files FileWatcher, indexer Indexer) *WatchCoordinator {
	return &WatchCoordinator{
		files:   files,
		indexer: indexer,
	}
}

// Start begins routing events to the indexer.
// Blocks until context is cancelled.
func (c *WatchCoordinator) Start(ctx context.Context) error {
	if err := c.files.Start(ctx, func(files []string) {
		c.handleFileChange(ctx, files)
	}); err != nil {
		c.cleanup()
		return err
	}

	<-ctx.Done()
	c.cleanup()
	return ctx.Err()
}

// cleanup stops the file watcher.
func (c *WatchCoordinator) cleanup() {
	if err := c.files.Stop(); err != nil {
		log.Printf("Warning: file watcher stop failed: %v", err)
	}
}

// handleFileChange processes file change events from the file watcher.
// Events arriving while indexing queue up and are delivered afterwards.
func (c *WatchCoordinator) handleFileChange(ctx context.Context, files []string) {
	if len(files) == 0 || ctx.Err() != nil {
		return
	}

	log.Printf("Processing %d file change(s)...", len(files))

	stats, err := c.indexer.Index(ctx, files)
	if err != nil {
		log.Printf("Error: indexing failed: %v", err)
		return
	}

	log.Printf("✓ Indexed %d file(s), %d unchanged, %d removed, %d failed (%d classes, %d functions, %d methods)",
		stats.FilesScanned, stats.FilesSkipped, stats.FilesRemoved, stats.Failed,
		stats.Classes, stats.Functions, stats.Methods)

	if c.OnIndexed != nil {
		c.OnIndexed(stats)
	}
}
