package watcher

import "context"

// FileWatcher monitors Python sources for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching source directories, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// Indexer is the minimal interface the coordinator needs to refresh
// declarations after changes.
type Indexer interface {
	// Index rescans the given files. An empty hint means a full rescan.
	Index(ctx context.Context, hint []string) (*IndexStats, error)
}

// IndexStats contains statistics about one refresh.
type IndexStats struct {
	FilesScanned int
	FilesSkipped int // unchanged since the last write
	FilesRemoved int
	Failed       int
	Classes      int
	Functions    int
	Methods      int
}
