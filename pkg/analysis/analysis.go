// Package analysis lists the classes, functions, and methods declared in
// Python source without executing it.
//
// Every query comes in three forms: from source text, from a file path, and
// from an importable module name resolved through a source.ModuleResolver.
// Calls are independent and hold no shared mutable state, so they may run
// concurrently.
package analysis

import (
	"context"

	"github.com/mvp-joe/pydecl/internal/extraction"
	"github.com/mvp-joe/pydecl/internal/parsers"
	"github.com/mvp-joe/pydecl/internal/source"
)

type (
	ClassRecord    = extraction.ClassRecord
	FunctionRecord = extraction.FunctionRecord
	MethodRecord   = extraction.MethodRecord
	ClassSummary   = extraction.ClassSummary
	ModuleSummary  = extraction.ModuleSummary

	SyntaxError        = extraction.SyntaxError
	ClassNotFoundError = extraction.ClassNotFoundError

	ModuleResolver = source.ModuleResolver
)

var (
	ErrSyntax   = extraction.ErrSyntax
	ErrNotFound = extraction.ErrNotFound
	ErrNoSource = extraction.ErrNoSource
)

var parser = parsers.NewPythonParser()

// SearchPathResolver resolves modules against roots, in order, without
// running Python.
func SearchPathResolver(roots ...string) ModuleResolver {
	return source.NewSearchPathResolver(roots...)
}

// InterpreterResolver resolves modules by asking the given Python interpreter.
// pythonPath entries are prepended to PYTHONPATH.
func InterpreterResolver(interpreter string, pythonPath ...string) ModuleResolver {
	return source.NewInterpreterResolver(source.SystemInterpreter(interpreter, pythonPath))
}

func parse(src *source.Source) (*parsers.Declarations, error) {
	return parser.Parse(src.Text, src.Origin)
}

func load(path string) (*parsers.Declarations, error) {
	src, err := source.FromPath(path)
	if err != nil {
		return nil, err
	}
	return parse(src)
}

func loadModule(ctx context.Context, r ModuleResolver, module string) (*parsers.Declarations, error) {
	src, err := source.FromModule(ctx, r, module)
	if err != nil {
		return nil, err
	}
	return parse(src)
}

// ListClassesFromSource lists every class in code, nested classes included.
func ListClassesFromSource(code string) ([]ClassRecord, error) {
	decls, err := parse(source.FromText(code, ""))
	if err != nil {
		return nil, err
	}
	return decls.Classes(), nil
}

// ListClassesFromFile lists every class in the file at path.
func ListClassesFromFile(path string) ([]ClassRecord, error) {
	decls, err := load(path)
	if err != nil {
		return nil, err
	}
	return decls.Classes(), nil
}

// ListClassesFromModule lists every class in the source file backing module.
func ListClassesFromModule(ctx context.Context, r ModuleResolver, module string) ([]ClassRecord, error) {
	decls, err := loadModule(ctx, r, module)
	if err != nil {
		return nil, err
	}
	return decls.Classes(), nil
}

// ListFunctionsFromSource lists functions that are not class members.
func ListFunctionsFromSource(code string) ([]FunctionRecord, error) {
	decls, err := parse(source.FromText(code, ""))
	if err != nil {
		return nil, err
	}
	return decls.Functions(), nil
}

// ListFunctionsFromFile lists functions that are not class members in the file at path.
func ListFunctionsFromFile(path string) ([]FunctionRecord, error) {
	decls, err := load(path)
	if err != nil {
		return nil, err
	}
	return decls.Functions(), nil
}

// ListFunctionsFromModule lists functions that are not class members in module.
func ListFunctionsFromModule(ctx context.Context, r ModuleResolver, module string) ([]FunctionRecord, error) {
	decls, err := loadModule(ctx, r, module)
	if err != nil {
		return nil, err
	}
	return decls.Functions(), nil
}

// ListMethodsFromSource lists the direct methods of className. A missing class
// is reported as *ClassNotFoundError, never as an empty result.
func ListMethodsFromSource(code, className string) ([]MethodRecord, error) {
	decls, err := parse(source.FromText(code, ""))
	if err != nil {
		return nil, err
	}
	return decls.Methods(className)
}

// ListMethodsFromFile lists the direct methods of className in the file at path.
func ListMethodsFromFile(path, className string) ([]MethodRecord, error) {
	decls, err := load(path)
	if err != nil {
		return nil, err
	}
	return decls.Methods(className)
}

// ListMethodsFromModule lists the direct methods of className in module.
func ListMethodsFromModule(ctx context.Context, r ModuleResolver, module, className string) ([]MethodRecord, error) {
	decls, err := loadModule(ctx, r, module)
	if err != nil {
		return nil, err
	}
	return decls.Methods(className)
}

// AnalyzeSource returns all classes with their methods and all functions in
// a single traversal.
func AnalyzeSource(code string) (*ModuleSummary, error) {
	decls, err := parse(source.FromText(code, ""))
	if err != nil {
		return nil, err
	}
	return decls.Summary(), nil
}

// AnalyzeFile is AnalyzeSource for the file at path.
func AnalyzeFile(path string) (*ModuleSummary, error) {
	decls, err := load(path)
	if err != nil {
		return nil, err
	}
	return decls.Summary(), nil
}

// AnalyzeModule is AnalyzeSource for the file backing module.
func AnalyzeModule(ctx context.Context, r ModuleResolver, module string) (*ModuleSummary, error) {
	decls, err := loadModule(ctx, r, module)
	if err != nil {
		return nil, err
	}
	return decls.Summary(), nil
}
