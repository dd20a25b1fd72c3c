// Package discovery expands command-line arguments (files, directories, and
// glob patterns) into the Python files to analyze.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// ErrNoMatches is returned when a glob argument matches nothing.
var ErrNoMatches = errors.New("no files match pattern")

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery finds Python files under include/ignore rules.
type FileDiscovery struct {
	rootDir         string
	includePatterns []compiledPattern
	ignorePatterns  []compiledPattern
}

// NewFileDiscovery creates a discovery rooted at rootDir. Patterns are
// matched against slash-separated paths relative to the directory being walked.
func NewFileDiscovery(rootDir string, includePatterns, ignorePatterns []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir: rootDir,
	}

	var err error
	if fd.includePatterns, err = compilePatterns(includePatterns); err != nil {
		return nil, err
	}
	if fd.ignorePatterns, err = compilePatterns(ignorePatterns); err != nil {
		return nil, err
	}

	return fd, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

// Expand resolves each argument to files:
//   - an existing file is returned as-is (non-.py files are kept with a warning)
//   - a directory is walked for files matching the include patterns
//   - anything else is treated as a glob pattern relative to the root
//
// The result is de-duplicated, keeps argument order, and is sorted within
// each directory or pattern expansion.
func (fd *FileDiscovery) Expand(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(paths ...string) {
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				files = append(files, p)
			}
		}
	}

	for _, arg := range args {
		path := arg
		if !filepath.IsAbs(path) {
			path = filepath.Join(fd.rootDir, path)
		}

		info, err := os.Stat(path)
		switch {
		case err == nil && info.IsDir():
			found, err := fd.Walk(path)
			if err != nil {
				return nil, err
			}
			add(found...)
		case err == nil:
			if !IsPythonFile(path) {
				log.Printf("Warning: %s does not have a .py extension", arg)
			}
			add(path)
		case errors.Is(err, fs.ErrNotExist) && hasMeta(arg):
			found, err := fd.Glob(arg)
			if err != nil {
				return nil, err
			}
			add(found...)
		default:
			// Missing files are reported by the analyzer, not here
			add(path)
		}
	}

	if files == nil {
		files = []string{}
	}
	return files, nil
}

// Walk returns every Python file under dir matching the include patterns,
// skipping hidden entries, __pycache__, and ignored paths. Patterns are
// matched relative to dir. Output is sorted.
func (fd *FileDiscovery) Walk(dir string) ([]string, error) {
	return fd.walk(dir, dir)
}

// WalkUnder returns the Python files below dir, a directory inside the root,
// that Walk on the root would select. Used when a watched directory appears.
func (fd *FileDiscovery) WalkUnder(dir string) ([]string, error) {
	rel, err := filepath.Rel(fd.rootDir, dir)
	if err != nil || escapesRoot(rel) {
		return []string{}, nil
	}
	rel = filepath.ToSlash(rel)
	if rel != "." {
		for _, part := range strings.Split(rel, "/") {
			if SkipDir(part) {
				return []string{}, nil
			}
		}
		if fd.shouldIgnore(rel) {
			return []string{}, nil
		}
	}
	return fd.walk(dir, fd.rootDir)
}

// walk collects matching files under dir, matching patterns against paths
// relative to base.
func (fd *FileDiscovery) walk(dir, base string) ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		// Normalize path separators for glob matching
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if path != dir && (SkipDir(d.Name()) || fd.shouldIgnore(relPath)) {
				return filepath.SkipDir
			}
			return nil
		}

		if isHidden(d.Name()) || fd.shouldIgnore(relPath) {
			return nil
		}
		if fd.matchesAnyPattern(relPath, fd.includePatterns) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

// Glob returns files whose path matches pattern. Relative patterns are
// matched against root-relative paths; absolute patterns, and relative ones
// that climb out of the root with "..", are matched against absolute paths
// under their literal leading directory. Ignore rules still apply.
func (fd *FileDiscovery) Glob(pattern string) ([]string, error) {
	base, absolute := fd.rootDir, false
	target := pattern
	if filepath.IsAbs(pattern) || escapesRoot(pattern) {
		if !filepath.IsAbs(target) {
			target = filepath.Join(fd.rootDir, target)
		}
		base, absolute = literalPrefix(target), true
	}
	target = filepath.ToSlash(target)

	g, err := glob.Compile(target, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	matcher := []compiledPattern{{pattern: target, glob: g}}

	if _, err := os.Stat(base); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMatches, pattern)
	}

	var files []string
	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && (SkipDir(d.Name()) || fd.shouldIgnore(relPath)) {
				return filepath.SkipDir
			}
			return nil
		}

		candidate := relPath
		if absolute {
			candidate = filepath.ToSlash(path)
		}
		if !isHidden(d.Name()) && !fd.shouldIgnore(relPath) && fd.matchesAnyPattern(candidate, matcher) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", pattern, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatches, pattern)
	}

	sort.Strings(files)
	return files, nil
}

// escapesRoot reports whether a relative pattern starts by leaving the root.
func escapesRoot(pattern string) bool {
	p := filepath.ToSlash(pattern)
	return p == ".." || strings.HasPrefix(p, "../")
}

// literalPrefix returns the leading directories of an absolute pattern that
// contain no glob metacharacters.
func literalPrefix(pattern string) string {
	parts := strings.Split(filepath.ToSlash(pattern), "/")
	i := 0
	for i < len(parts)-1 && !hasMeta(parts[i]) {
		i++
	}
	prefix := strings.Join(parts[:i], "/")
	if prefix == "" {
		prefix = "/"
	}
	if vol := filepath.VolumeName(pattern); vol != "" && prefix == vol {
		prefix += "/"
	}
	return filepath.FromSlash(prefix)
}

// Matches reports whether path (absolute or relative to the root) would be
// selected by Walk on the root. Used to filter watcher events.
func (fd *FileDiscovery) Matches(path string) bool {
	relPath := path
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(fd.rootDir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return false
		}
		relPath = rel
	}
	relPath = filepath.ToSlash(relPath)

	for _, part := range strings.Split(relPath, "/") {
		if SkipDir(part) {
			return false
		}
	}
	return !fd.shouldIgnore(relPath) && fd.matchesAnyPattern(relPath, fd.includePatterns)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	// Always ignore the pydecl state directory
	if strings.HasPrefix(relPath, ".pydecl/") || relPath == ".pydecl" {
		return true
	}

	if fd.matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// Also check if this is a directory that would match with /** suffix
	// For example, "node_modules" should match pattern "node_modules/**"
	return fd.matchesAnyPattern(relPath+"/**", fd.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func (fd *FileDiscovery) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Special handling: if path is in root (no slash), also try matching against
	// patterns with **/ prefix removed. This makes "**/*.py" match both "setup.py"
	// and "pkg/mod.py" as users would expect.
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
					if simplifiedGlob.Match(path) {
						return true
					}
				}
			}
		}
	}

	return false
}

// IsPythonFile reports whether path has a .py extension.
func IsPythonFile(path string) bool {
	return filepath.Ext(path) == ".py"
}

// SkipDir reports whether a directory name is never descended into.
func SkipDir(name string) bool {
	return name == "__pycache__" || isHidden(name)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
