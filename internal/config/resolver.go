package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/pydecl/internal/source"
)

// ImportRoots returns the roots searched for modules without an interpreter:
// rootDir, then python.search_paths, then PYTHONPATH entries.
func (c *Config) ImportRoots(rootDir string) []string {
	roots := []string{rootDir}
	for _, p := range c.Python.SearchPaths {
		roots = append(roots, resolve(rootDir, p))
	}
	for _, p := range filepath.SplitList(os.Getenv("PYTHONPATH")) {
		if p != "" {
			roots = append(roots, p)
		}
	}
	return roots
}

// ModuleResolver builds the resolver used for --module lookups. The search
// path is consulted first; the interpreter (system or embedded) covers
// site-packages and the standard library.
func (c *Config) ModuleResolver(rootDir string) (source.ModuleResolver, error) {
	roots := c.ImportRoots(rootDir)
	resolvers := []source.ModuleResolver{source.NewSearchPathResolver(roots...)}

	switch {
	case c.Python.Embedded:
		command, err := source.EmbeddedInterpreter(resolve(rootDir, c.Python.RuntimeDir), roots)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare embedded interpreter: %w", err)
		}
		resolvers = append(resolvers, source.NewInterpreterResolver(command))
	case c.Python.Interpreter != "":
		resolvers = append(resolvers, source.NewInterpreterResolver(source.SystemInterpreter(c.Python.Interpreter, roots)))
	}

	return source.NewChainResolver(resolvers...), nil
}
