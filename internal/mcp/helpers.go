package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mvp-joe/pydecl/pkg/analysis"
)

// errInvalidRequest marks argument problems the caller can fix.
var errInvalidRequest = errors.New("invalid request")

// validate checks that exactly one input is selected.
func (r *DeclarationRequest) validate() error {
	set := 0
	for _, v := range []string{r.Source, r.Path, r.Module} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("%w: exactly one of source, path or module is required", errInvalidRequest)
	}
	return nil
}

// origin labels the selected input in responses.
func (r *DeclarationRequest) origin(rootDir string) string {
	switch {
	case r.Path != "":
		return resolvePath(rootDir, r.Path)
	case r.Module != "":
		return r.Module
	default:
		return "<string>"
	}
}

func resolvePath(rootDir, path string) string {
	if filepath.IsAbs(path) || rootDir == "" {
		return path
	}
	return filepath.Join(rootDir, path)
}

// isUserError reports whether err should be shown to the model as a tool
// error rather than failing the call.
func isUserError(err error) bool {
	return errors.Is(err, errInvalidRequest) ||
		errors.Is(err, analysis.ErrNotFound) ||
		errors.Is(err, analysis.ErrSyntax)
}

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
