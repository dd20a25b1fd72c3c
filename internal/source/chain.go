package source

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mvp-joe/pydecl/internal/extraction"
)

// ChainResolver tries each resolver in order and returns the first success.
type ChainResolver struct {
	resolvers []ModuleResolver
}

// NewChainResolver creates a resolver that consults resolvers in order.
func NewChainResolver(resolvers ...ModuleResolver) *ChainResolver {
	return &ChainResolver{resolvers: resolvers}
}

// Resolve implements ModuleResolver. When every resolver fails, a
// no-source answer wins over a plain not-found so callers learn that the
// module exists.
func (c *ChainResolver) Resolve(ctx context.Context, name string) (string, error) {
	if len(c.resolvers) == 0 {
		return "", fmt.Errorf("module %q: %w: no resolvers configured", name, extraction.ErrNotFound)
	}

	var noSource, notFound, other error
	for _, r := range c.resolvers {
		path, err := r.Resolve(ctx, name)
		if err == nil {
			return path, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		switch {
		case errors.Is(err, extraction.ErrNoSource):
			if noSource == nil {
				noSource = err
			}
		case errors.Is(err, extraction.ErrNotFound):
			if notFound == nil {
				notFound = err
			}
		default:
			log.Printf("Warning: module resolver failed for %s: %v", name, err)
			if other == nil {
				other = err
			}
		}
	}

	switch {
	case noSource != nil:
		return "", noSource
	case notFound != nil:
		return "", notFound
	default:
		return "", other
	}
}
