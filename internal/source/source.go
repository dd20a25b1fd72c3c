package source

import (
	"context"
	"fmt"
	"os"

	"github.com/mvp-joe/pydecl/internal/extraction"
)

// DefaultOrigin labels source text that did not come from a file.
const DefaultOrigin = "<string>"

// Source is Python source text plus a label used in diagnostics.
type Source struct {
	Text   []byte
	Origin string
}

// ModuleResolver maps a dotted module name to the path of its .py file.
type ModuleResolver interface {
	// Resolve returns the backing source path of module name.
	// Fails with extraction.ErrNotFound when the module cannot be located and
	// extraction.ErrNoSource when it has no Python source.
	Resolve(ctx context.Context, name string) (string, error)
}

// FromText wraps raw source text. An empty origin becomes DefaultOrigin.
func FromText(text, origin string) *Source {
	if origin == "" {
		origin = DefaultOrigin
	}
	return &Source{Text: []byte(text), Origin: origin}
}

// FromPath reads a source file. Missing and unreadable files both match
// extraction.ErrNotFound; the underlying fs error is preserved.
func FromPath(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w: %w", path, extraction.ErrNotFound, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to read %s: %w: is a directory", path, extraction.ErrNotFound)
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w: %w", path, extraction.ErrNotFound, err)
	}
	return &Source{Text: text, Origin: path}, nil
}

// FromModule resolves module name with r and reads the resulting file.
func FromModule(ctx context.Context, r ModuleResolver, name string) (*Source, error) {
	if r == nil {
		return nil, fmt.Errorf("no module resolver configured for %q", name)
	}
	path, err := r.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	return FromPath(path)
}
