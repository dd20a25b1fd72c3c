package parsers

import (
	"strings"

	"github.com/mvp-joe/pydecl/internal/extraction"
)

// Decorator names that set method modifier flags. Matching is done against
// the final dotted segment of the rendered decorator.
const (
	decoratorStaticMethod = "staticmethod"
	decoratorClassMethod  = "classmethod"
	decoratorProperty     = "property"
)

// Declarations holds the findings of one traversal and converts them into
// records on demand. Every accessor returns freshly allocated records.
type Declarations struct {
	origin   string
	findings []finding
}

// Origin returns the label of the parsed source.
func (d *Declarations) Origin() string {
	return d.origin
}

// Classes returns every class in the source, at any nesting depth, in source order.
func (d *Declarations) Classes() []extraction.ClassRecord {
	classes := []extraction.ClassRecord{}
	for _, f := range d.findings {
		if f.kind == frameClass {
			classes = append(classes, toClassRecord(f))
		}
	}
	return classes
}

// Functions returns functions defined at module scope or inside other plain
// functions. Class members and anything nested inside a method are excluded.
func (d *Declarations) Functions() []extraction.FunctionRecord {
	functions := []extraction.FunctionRecord{}
	for _, f := range d.findings {
		if f.kind != frameFunction || f.parentKind == frameClass || f.insideClass {
			continue
		}
		functions = append(functions, extraction.FunctionRecord{
			Name:       f.name,
			Line:       f.line,
			Parameters: cloneStrings(f.parameters),
			Decorators: cloneStrings(f.decorators),
			IsAsync:    f.isAsync,
		})
	}
	return functions
}

// Methods returns the direct methods of every class named className. It fails
// with *extraction.ClassNotFoundError when no such class exists.
func (d *Declarations) Methods(className string) ([]extraction.MethodRecord, error) {
	return d.Summary().MethodsOf(className)
}

// Summary returns every class paired with its own direct methods, plus the
// function query result, from the same traversal.
func (d *Declarations) Summary() *extraction.ModuleSummary {
	summary := &extraction.ModuleSummary{
		Origin:    d.origin,
		Classes:   []extraction.ClassSummary{},
		Functions: d.Functions(),
	}

	position := make(map[int]int) // finding index -> summary.Classes index
	for i, f := range d.findings {
		switch {
		case f.kind == frameClass:
			position[i] = len(summary.Classes)
			summary.Classes = append(summary.Classes, extraction.ClassSummary{
				Class:   toClassRecord(f),
				Methods: []extraction.MethodRecord{},
			})
		case f.parentKind == frameClass:
			cs := &summary.Classes[position[f.parent]]
			cs.Methods = append(cs.Methods, toMethodRecord(f))
		}
	}
	return summary
}

func toClassRecord(f finding) extraction.ClassRecord {
	return extraction.ClassRecord{
		Name:       f.name,
		Line:       f.line,
		Bases:      cloneStrings(f.bases),
		Decorators: cloneStrings(f.decorators),
	}
}

func toMethodRecord(f finding) extraction.MethodRecord {
	return extraction.MethodRecord{
		Name:           f.name,
		Line:           f.line,
		Parameters:     cloneStrings(f.parameters),
		Decorators:     cloneStrings(f.decorators),
		IsAsync:        f.isAsync,
		IsStaticMethod: hasDecorator(f.decorators, decoratorStaticMethod),
		IsClassMethod:  hasDecorator(f.decorators, decoratorClassMethod),
		IsProperty:     hasDecorator(f.decorators, decoratorProperty),
	}
}

// hasDecorator reports whether any decorator's final dotted segment equals name.
func hasDecorator(decorators []string, name string) bool {
	for _, dec := range decorators {
		if i := strings.LastIndexByte(dec, '.'); i >= 0 {
			dec = dec[i+1:]
		}
		if dec == name {
			return true
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
