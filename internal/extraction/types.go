package extraction

import "sort"

// ClassRecord describes a single class definition.
type ClassRecord struct {
	Name string `json:"name"`
	Line int    `json:"line"`

	// Bases holds the literal source text of each positional base expression.
	Bases      []string `json:"bases"`
	Decorators []string `json:"decorators"`
}

// FunctionRecord describes a function defined outside any class body.
type FunctionRecord struct {
	Name       string   `json:"name"`
	Line       int      `json:"line"`
	Parameters []string `json:"parameters"` // variadics carry their * / ** marker
	Decorators []string `json:"decorators"`
	IsAsync    bool     `json:"is_async"`
}

// MethodRecord describes a function defined directly in a class body.
type MethodRecord struct {
	Name           string   `json:"name"`
	Line           int      `json:"line"`
	Parameters     []string `json:"parameters"`
	Decorators     []string `json:"decorators"`
	IsAsync        bool     `json:"is_async"`
	IsStaticMethod bool     `json:"is_staticmethod"`
	IsClassMethod  bool     `json:"is_classmethod"`
	IsProperty     bool     `json:"is_property"`
}

// ClassSummary pairs a class with its direct methods.
type ClassSummary struct {
	Class   ClassRecord    `json:"class"`
	Methods []MethodRecord `json:"methods"`
}

// ModuleSummary is the complete declaration view of one source file.
type ModuleSummary struct {
	Origin    string           `json:"origin"`
	Classes   []ClassSummary   `json:"classes"`
	Functions []FunctionRecord `json:"functions"`
}

// Kind returns a short label for the method based on its modifiers.
// Precedence follows the order staticmethod, classmethod, property.
func (m MethodRecord) Kind() string {
	switch {
	case m.IsStaticMethod:
		return "staticmethod"
	case m.IsClassMethod:
		return "classmethod"
	case m.IsProperty:
		return "property"
	default:
		return "method"
	}
}

// MethodsOf returns the direct methods of every class named className, in
// source order. It fails with *ClassNotFoundError when no such class exists.
func (m *ModuleSummary) MethodsOf(className string) ([]MethodRecord, error) {
	found := false
	methods := []MethodRecord{}
	for _, c := range m.Classes {
		if c.Class.Name != className {
			continue
		}
		found = true
		methods = append(methods, c.Methods...)
	}
	if !found {
		return nil, &ClassNotFoundError{ClassName: className, Origin: m.Origin}
	}

	// Same-named classes may nest, so class order is not source order
	sort.SliceStable(methods, func(i, j int) bool {
		return methods[i].Line < methods[j].Line
	})
	return methods, nil
}
