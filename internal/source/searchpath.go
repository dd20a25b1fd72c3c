package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/mvp-joe/pydecl/internal/extraction"
)

// compiledSuffixes are module artifacts that carry no Python source.
var compiledSuffixes = []string{".so", ".pyd", ".pyc"}

// SearchPathResolver locates modules by walking an ordered list of roots the
// way the import system walks sys.path, without running an interpreter.
type SearchPathResolver struct {
	roots []string
}

// NewSearchPathResolver creates a resolver over roots, searched in order.
func NewSearchPathResolver(roots ...string) *SearchPathResolver {
	return &SearchPathResolver{roots: roots}
}

// Roots returns the configured search roots.
func (r *SearchPathResolver) Roots() []string {
	return append([]string(nil), r.roots...)
}

// Resolve implements ModuleResolver.
func (r *SearchPathResolver) Resolve(ctx context.Context, name string) (string, error) {
	if err := validateModuleName(name); err != nil {
		return "", err
	}

	rel := filepath.Join(strings.Split(name, ".")...)
	compiledOnly := false

	for _, root := range r.roots {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		base := filepath.Join(root, rel)
		for _, candidate := range []string{base + ".py", filepath.Join(base, "__init__.py")} {
			if isRegularFile(candidate) {
				return candidate, nil
			}
		}

		if hasCompiledArtifact(base) || isDir(base) {
			// Extension module or namespace package: importable, but no source file.
			compiledOnly = true
		}
	}

	if compiledOnly {
		return "", fmt.Errorf("module %q: %w", name, extraction.ErrNoSource)
	}
	return "", fmt.Errorf("module %q %w on search path %v", name, extraction.ErrNotFound, r.roots)
}

// validateModuleName rejects names that cannot be dotted Python identifiers.
func validateModuleName(name string) error {
	if name == "" {
		return fmt.Errorf("empty module name: %w", extraction.ErrNotFound)
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return fmt.Errorf("invalid module name %q: %w", name, extraction.ErrNotFound)
		}
		for i, ch := range part {
			if ch == '_' || unicode.IsLetter(ch) || (i > 0 && unicode.IsDigit(ch)) {
				continue
			}
			return fmt.Errorf("invalid module name %q: %w", name, extraction.ErrNotFound)
		}
	}
	return nil
}

// hasCompiledArtifact checks for base.so, base.cpython-312-x86_64-linux-gnu.so,
// base.pyd or base.pyc next to the expected source location.
func hasCompiledArtifact(base string) bool {
	entries, err := os.ReadDir(filepath.Dir(base))
	if err != nil {
		return false
	}

	prefix := filepath.Base(base) + "."
	for _, entry := range entries {
		entryName := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(entryName, prefix) {
			continue
		}
		for _, suffix := range compiledSuffixes {
			if strings.HasSuffix(entryName, suffix) {
				return true
			}
		}
	}
	return false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
