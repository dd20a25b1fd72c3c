package indexer

// Test Plan for Indexer:
// - Full index writes every discovered file and its declarations
// - Full index prunes files deleted since the previous run
// - Files with syntax errors are stored as failed and counted
// - Incremental index skips files whose content is unchanged
// - Incremental index rescans modified files and drops deleted ones
// - Incremental index ignores paths outside the include patterns
// - A vanished directory removes every stored file below it, and only those
// - An appearing directory is expanded into its matching files
// - Moving a package out of and back into a watched tree keeps the index in sync
// - Cancelled context aborts the run without writing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mvp-joe/pydecl/internal/discovery"
	"github.com/mvp-joe/pydecl/internal/scanner"
	"github.com/mvp-joe/pydecl/internal/storage"
	"github.com/mvp-joe/pydecl/internal/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelsPy = `class Model:
    def save(self):
        pass

    @property
    def key(self):
        return 1


def load(path):
    pass
`

type fixture struct {
	root    string
	indexer *Indexer
	reader  *storage.Reader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	fd, err := discovery.NewFileDiscovery(root, []string{"**/*.py"}, []string{"build/**"})
	require.NoError(t, err)

	sc, err := scanner.New(scanner.Options{Workers: 2, CacheSize: 16})
	require.NoError(t, err)
	t.Cleanup(sc.Close)

	db := storage.NewTestDB(t)
	return &fixture{
		root:    root,
		indexer: New(root, fd, sc, db),
		reader:  storage.NewReader(db),
	}
}

func (f *fixture) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(f.root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (f *fixture) paths(t *testing.T) []string {
	t.Helper()
	files, err := f.reader.Files()
	require.NoError(t, err)
	paths := make([]string, 0, len(files))
	for _, file := range files {
		paths = append(paths, file.Path)
	}
	return paths
}

func TestIndex_Full(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.write(t, "app/models.py", modelsPy)
	f.write(t, "app/__init__.py", "")
	f.write(t, "build/generated.py", "class Generated: pass\n")

	stats, err := f.indexer.Index(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesScanned)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, 1, stats.Classes)
	assert.Equal(t, 1, stats.Functions)
	assert.Equal(t, 2, stats.Methods)

	assert.Equal(t, []string{"app/__init__.py", "app/models.py"}, f.paths(t))

	methods, err := f.reader.Methods("app/models.py", "Model")
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.True(t, methods[1].IsProperty)
}

func TestIndex_FullPrunesDeletedFiles(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.write(t, "a.py", "def a(): pass\n")
	b := f.write(t, "b.py", "def b(): pass\n")

	_, err := f.indexer.Index(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, f.paths(t), 2)

	require.NoError(t, os.Remove(b))

	_, err = f.indexer.Index(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, f.paths(t))
}

func TestIndex_SyntaxErrorRecorded(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.write(t, "broken.py", "def broken(:\n")

	stats, err := f.indexer.Index(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)

	files, err := f.reader.Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.NotEmpty(t, files[0].Error)
}

func TestIndex_IncrementalSkipsUnchanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	path := f.write(t, "models.py", modelsPy)

	_, err := f.indexer.Index(context.Background(), nil)
	require.NoError(t, err)

	stats, err := f.indexer.Index(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesScanned)
	assert.Equal(t, 1, stats.FilesSkipped)
}

func TestIndex_IncrementalModifiedAndDeleted(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	models := f.write(t, "models.py", modelsPy)
	old := f.write(t, "old.py", "def legacy(): pass\n")
	f.write(t, "untouched.py", "def keep(): pass\n")

	_, err := f.indexer.Index(context.Background(), nil)
	require.NoError(t, err)

	f.write(t, "models.py", "class Renamed:\n    pass\n")
	require.NoError(t, os.Remove(old))

	stats, err := f.indexer.Index(context.Background(), []string{models, old})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesScanned)
	assert.Equal(t, 1, stats.FilesRemoved)
	assert.Equal(t, 1, stats.Classes)
	assert.Equal(t, 0, stats.Methods)

	assert.Equal(t, []string{"models.py", "untouched.py"}, f.paths(t))

	classes, err := f.reader.FindClasses("")
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "Renamed", classes[0].Name)
}

func TestIndex_IncrementalIgnoresUnmatchedPaths(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.indexer.Index(context.Background(), nil)
	require.NoError(t, err)

	generated := f.write(t, "build/generated.py", "class Generated: pass\n")
	notes := f.write(t, "notes.txt", "class NotPython: pass\n")

	stats, err := f.indexer.Index(context.Background(), []string{generated, notes})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesScanned)
	assert.Empty(t, f.paths(t))
}

func TestIndex_ContextCancelled(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.write(t, "a.py", "def a(): pass\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.indexer.Index(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.paths(t))
}

func TestIndex_IncrementalDirectoryRemoved(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.write(t, "my_pkg/a.py", modelsPy)
	f.write(t, "my_pkg/sub/b.py", "def b(): pass\n")
	f.write(t, "my_pkg.py", "def sibling(): pass\n")
	f.write(t, "myXpkg/c.py", "def c(): pass\n")

	_, err := f.indexer.Index(context.Background(), nil)
	require.NoError(t, err)

	pkg := filepath.Join(f.root, "my_pkg")
	require.NoError(t, os.Rename(pkg, filepath.Join(t.TempDir(), "my_pkg")))

	stats, err := f.indexer.Index(context.Background(), []string{pkg})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesRemoved)
	assert.Equal(t, []string{"myXpkg/c.py", "my_pkg.py"}, f.paths(t))

	classes, err := f.reader.FindClasses("Model")
	require.NoError(t, err)
	assert.Empty(t, classes)
}

func TestIndex_IncrementalDirectoryAdded(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.indexer.Index(context.Background(), nil)
	require.NoError(t, err)

	outside := filepath.Join(t.TempDir(), "lib")
	require.NoError(t, os.MkdirAll(filepath.Join(outside, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "models.py"), []byte(modelsPy), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "sub", "util.py"), []byte("def util(): pass\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "README.md"), []byte("# lib\n"), 0644))

	lib := filepath.Join(f.root, "lib")
	require.NoError(t, os.Rename(outside, lib))

	stats, err := f.indexer.Index(context.Background(), []string{lib, filepath.Join(lib, "models.py")})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesScanned)
	assert.Equal(t, 1, stats.Classes)
	assert.Equal(t, 2, stats.Functions)
	assert.Equal(t, []string{"lib/models.py", "lib/sub/util.py"}, f.paths(t))
}

func TestIndex_WatchedDirectoryMoves(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.write(t, "pkg/a.py", modelsPy)
	f.write(t, "main.py", "def main(): pass\n")

	_, err := f.indexer.Index(context.Background(), nil)
	require.NoError(t, err)

	files, err := watcher.NewFileWatcher([]string{f.root}, watcher.Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	coordinator := watcher.NewWatchCoordinator(files, f.indexer)
	indexed := make(chan *watcher.IndexStats, 4)
	coordinator.OnIndexed = func(stats *watcher.IndexStats) { indexed <- stats }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- coordinator.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(50 * time.Millisecond)

	waitIndexed := func() *watcher.IndexStats {
		t.Helper()
		select {
		case stats := <-indexed:
			return stats
		case <-time.After(3 * time.Second):
			t.Fatal("index was not refreshed")
			return nil
		}
	}

	parked := filepath.Join(t.TempDir(), "pkg")
	require.NoError(t, os.Rename(filepath.Join(f.root, "pkg"), parked))

	stats := waitIndexed()
	assert.Equal(t, 1, stats.FilesRemoved)
	assert.Equal(t, []string{"main.py"}, f.paths(t))

	require.NoError(t, os.Rename(parked, filepath.Join(f.root, "vendor")))

	stats = waitIndexed()
	assert.Equal(t, 1, stats.FilesScanned)
	assert.Equal(t, []string{"main.py", "vendor/a.py"}, f.paths(t))

	classes, err := f.reader.FindClasses("Model")
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "vendor/a.py", classes[0].FilePath)
}
