package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	mcputils "github.com/mvp-joe/pydecl/internal/mcp-utils"
	"github.com/mvp-joe/pydecl/pkg/analysis"
)

// declarationTools answers declaration queries for one project.
type declarationTools struct {
	rootDir  string
	resolver analysis.ModuleResolver
}

// queryFunc runs one declaration query for a validated request.
type queryFunc func(ctx context.Context, req *DeclarationRequest) (interface{}, error)

// inputOptions are the source selectors shared by every declaration tool.
func inputOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("source",
			mcp.Description("Python source text to analyze")),
		mcp.WithString("path",
			mcp.Description("Path of a .py file, absolute or relative to the project root")),
		mcp.WithString("module",
			mcp.Description("Dotted module name resolved on the project's import path (e.g., 'app.models')")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	}
}

// AddDeclarationTools registers pydecl_list_classes, pydecl_list_functions,
// pydecl_list_methods and pydecl_analyze_module with an MCP server.
func AddDeclarationTools(s *server.MCPServer, rootDir string, resolver analysis.ModuleResolver) {
	d := &declarationTools{rootDir: rootDir, resolver: resolver}

	s.AddTool(mcp.NewTool("pydecl_list_classes", append([]mcp.ToolOption{
		mcp.WithDescription("List every class defined in Python source, nested classes included, with line numbers, base class expressions and decorators. Exactly one of source, path or module is required."),
	}, inputOptions()...)...), createDeclarationHandler(d.listClasses, false))

	s.AddTool(mcp.NewTool("pydecl_list_functions", append([]mcp.ToolOption{
		mcp.WithDescription("List functions defined outside any class body, with parameters, decorators and async flag. Exactly one of source, path or module is required."),
	}, inputOptions()...)...), createDeclarationHandler(d.listFunctions, false))

	s.AddTool(mcp.NewTool("pydecl_list_methods", append([]mcp.ToolOption{
		mcp.WithDescription("List the methods defined directly in the body of a class, with staticmethod, classmethod and property flags. Fails when no class with that name exists. Exactly one of source, path or module is required."),
		mcp.WithString("class_name",
			mcp.Required(),
			mcp.Description("Name of the class whose methods to list")),
	}, inputOptions()...)...), createDeclarationHandler(d.listMethods, true))

	s.AddTool(mcp.NewTool("pydecl_analyze_module", append([]mcp.ToolOption{
		mcp.WithDescription("Summarize a whole module in one pass: every class with its direct methods, plus all module-level functions. Exactly one of source, path or module is required."),
	}, inputOptions()...)...), createDeclarationHandler(d.analyze, false))
}

// createDeclarationHandler binds arguments, validates them and runs q.
func createDeclarationHandler(q queryFunc, needsClass bool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.GetRawArguments().(map[string]interface{}); !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req DeclarationRequest
		if err := mcputils.CoerceBindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if err := req.validate(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if needsClass && req.ClassName == "" {
			return mcp.NewToolResultError("class_name parameter is required"), nil
		}

		result, err := q(ctx, &req)
		if err != nil {
			if isUserError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}

		return marshalToolResponse(result)
	}
}

func (d *declarationTools) listClasses(ctx context.Context, req *DeclarationRequest) (interface{}, error) {
	var classes []analysis.ClassRecord
	var err error
	switch {
	case req.Source != "":
		classes, err = analysis.ListClassesFromSource(req.Source)
	case req.Path != "":
		classes, err = analysis.ListClassesFromFile(resolvePath(d.rootDir, req.Path))
	default:
		classes, err = analysis.ListClassesFromModule(ctx, d.resolver, req.Module)
	}
	if err != nil {
		return nil, err
	}

	return &ClassesResponse{
		Origin:  req.origin(d.rootDir),
		Classes: classes,
		Total:   len(classes),
	}, nil
}

func (d *declarationTools) listFunctions(ctx context.Context, req *DeclarationRequest) (interface{}, error) {
	var functions []analysis.FunctionRecord
	var err error
	switch {
	case req.Source != "":
		functions, err = analysis.ListFunctionsFromSource(req.Source)
	case req.Path != "":
		functions, err = analysis.ListFunctionsFromFile(resolvePath(d.rootDir, req.Path))
	default:
		functions, err = analysis.ListFunctionsFromModule(ctx, d.resolver, req.Module)
	}
	if err != nil {
		return nil, err
	}

	return &FunctionsResponse{
		Origin:    req.origin(d.rootDir),
		Functions: functions,
		Total:     len(functions),
	}, nil
}

func (d *declarationTools) listMethods(ctx context.Context, req *DeclarationRequest) (interface{}, error) {
	var methods []analysis.MethodRecord
	var err error
	switch {
	case req.Source != "":
		methods, err = analysis.ListMethodsFromSource(req.Source, req.ClassName)
	case req.Path != "":
		methods, err = analysis.ListMethodsFromFile(resolvePath(d.rootDir, req.Path), req.ClassName)
	default:
		methods, err = analysis.ListMethodsFromModule(ctx, d.resolver, req.Module, req.ClassName)
	}
	if err != nil {
		return nil, err
	}

	return &MethodsResponse{
		Origin:    req.origin(d.rootDir),
		ClassName: req.ClassName,
		Methods:   methods,
		Total:     len(methods),
	}, nil
}

func (d *declarationTools) analyze(ctx context.Context, req *DeclarationRequest) (interface{}, error) {
	switch {
	case req.Source != "":
		return analysis.AnalyzeSource(req.Source)
	case req.Path != "":
		return analysis.AnalyzeFile(resolvePath(d.rootDir, req.Path))
	default:
		return analysis.AnalyzeModule(ctx, d.resolver, req.Module)
	}
}
