package mcp

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	mcputils "github.com/mvp-joe/pydecl/internal/mcp-utils"
	"github.com/mvp-joe/pydecl/internal/storage"
)

// AddFindClassTool registers pydecl_find_class, which searches the project
// index built by `pydecl index` instead of parsing files on demand.
func AddFindClassTool(s *server.MCPServer, db *sql.DB) {
	tool := mcp.NewTool(
		"pydecl_find_class",
		mcp.WithDescription("Find classes by name across the indexed project, returning the defining file, line, bases, decorators and direct methods of each match. Requires a prior `pydecl index` run."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Exact class name to look up (e.g., 'UserRepository')")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createFindClassHandler(storage.NewReader(db)))
}

func createFindClassHandler(reader *storage.Reader) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.GetRawArguments().(map[string]interface{}); !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req FindClassRequest
		if err := mcputils.CoerceBindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if req.Name == "" {
			return mcp.NewToolResultError("name parameter is required"), nil
		}

		stored, err := reader.FindClasses(req.Name)
		if err != nil {
			return nil, err
		}

		classes := make([]IndexedClass, 0, len(stored))
		for _, c := range stored {
			methods, err := reader.ClassMethods(c.ID)
			if err != nil {
				return nil, err
			}
			classes = append(classes, IndexedClass{
				FilePath:    c.FilePath,
				ClassRecord: c.ClassRecord,
				Methods:     methods,
			})
		}

		stats, err := reader.Stats()
		if err != nil {
			return nil, err
		}

		return marshalToolResponse(&FindClassResponse{
			Classes: classes,
			Total:   len(classes),
			Index:   stats,
		})
	}
}
