package mcp

import (
	"github.com/mvp-joe/pydecl/internal/extraction"
	"github.com/mvp-joe/pydecl/internal/storage"
)

// DeclarationRequest selects the Python source a declaration tool inspects.
// Exactly one of Source, Path and Module must be set.
type DeclarationRequest struct {
	Source    string `json:"source,omitempty"`     // inline source text
	Path      string `json:"path,omitempty"`       // file path, relative to the project root
	Module    string `json:"module,omitempty"`     // dotted module name
	ClassName string `json:"class_name,omitempty"` // pydecl_list_methods only
}

// ClassesResponse is returned by pydecl_list_classes.
type ClassesResponse struct {
	Origin  string                   `json:"origin"`
	Classes []extraction.ClassRecord `json:"classes"`
	Total   int                      `json:"total"`
}

// FunctionsResponse is returned by pydecl_list_functions.
type FunctionsResponse struct {
	Origin    string                      `json:"origin"`
	Functions []extraction.FunctionRecord `json:"functions"`
	Total     int                         `json:"total"`
}

// MethodsResponse is returned by pydecl_list_methods.
type MethodsResponse struct {
	Origin    string                    `json:"origin"`
	ClassName string                    `json:"class_name"`
	Methods   []extraction.MethodRecord `json:"methods"`
	Total     int                       `json:"total"`
}

// FindClassRequest queries the project index.
type FindClassRequest struct {
	Name string `json:"name"`
}

// IndexedClass is one class found in the project index, with its methods.
type IndexedClass struct {
	FilePath string `json:"file_path"`
	extraction.ClassRecord
	Methods []extraction.MethodRecord `json:"methods"`
}

// FindClassResponse is returned by pydecl_find_class.
type FindClassResponse struct {
	Classes []IndexedClass      `json:"classes"`
	Total   int                 `json:"total"`
	Index   *storage.IndexStats `json:"index"`
}
