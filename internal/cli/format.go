package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mvp-joe/pydecl/internal/extraction"
)

// formatClass renders a class the way the text output lists it.
func formatClass(c extraction.ClassRecord) string {
	return fmt.Sprintf("%s (line %d, bases: %s, decorators: %s)",
		c.Name, c.Line, pyList(c.Bases), pyList(c.Decorators))
}

// formatFunction renders a function as `async name(a, b) (line N) (decorators: [...])`.
func formatFunction(f extraction.FunctionRecord) string {
	var b strings.Builder
	if f.IsAsync {
		b.WriteString("async ")
	}
	writeSignature(&b, f.Name, f.Parameters, f.Line, f.Decorators)
	return b.String()
}

// formatMethod renders a method with its async and modifier markers. Only
// the first of staticmethod, classmethod and property is shown.
func formatMethod(m extraction.MethodRecord) string {
	var markers []string
	if m.IsAsync {
		markers = append(markers, "async")
	}
	switch {
	case m.IsStaticMethod:
		markers = append(markers, "@staticmethod")
	case m.IsClassMethod:
		markers = append(markers, "@classmethod")
	case m.IsProperty:
		markers = append(markers, "@property")
	}

	var b strings.Builder
	if len(markers) > 0 {
		b.WriteString(strings.Join(markers, " "))
		b.WriteByte(' ')
	}
	writeSignature(&b, m.Name, m.Parameters, m.Line, m.Decorators)
	return b.String()
}

func writeSignature(b *strings.Builder, name string, params []string, line int, decorators []string) {
	fmt.Fprintf(b, "%s(%s) (line %d)", name, strings.Join(params, ", "), line)
	if len(decorators) > 0 {
		fmt.Fprintf(b, " (decorators: %s)", pyList(decorators))
	}
}

// pyList renders strings as a Python list literal: ['a', "it's"].
func pyList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		if strings.Contains(item, "'") && !strings.Contains(item, `"`) {
			quoted[i] = `"` + strings.ReplaceAll(item, `\`, `\\`) + `"`
			continue
		}
		escaped := strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(item)
		quoted[i] = "'" + escaped + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func writeClasses(w io.Writer, file string, classes []extraction.ClassRecord) {
	fmt.Fprintf(w, "\nClasses in %s:\n", file)
	if len(classes) == 0 {
		fmt.Fprintln(w, "  No classes found")
		return
	}
	for _, c := range classes {
		fmt.Fprintf(w, "  - %s\n", formatClass(c))
	}
}

func writeFunctions(w io.Writer, file string, functions []extraction.FunctionRecord) {
	fmt.Fprintf(w, "\nFunctions in %s:\n", file)
	if len(functions) == 0 {
		fmt.Fprintln(w, "  No functions found")
		return
	}
	for _, f := range functions {
		fmt.Fprintf(w, "  - %s\n", formatFunction(f))
	}
}

func writeMethods(w io.Writer, file, className string, methods []extraction.MethodRecord) {
	fmt.Fprintf(w, "\nMethods in class '%s' from %s:\n", className, file)
	if len(methods) == 0 {
		fmt.Fprintf(w, "  No methods found in class '%s'\n", className)
		return
	}
	for _, m := range methods {
		fmt.Fprintf(w, "  - %s\n", formatMethod(m))
	}
}

func writeSummary(w io.Writer, file string, summary *extraction.ModuleSummary) {
	fmt.Fprintf(w, "\nModule %s:\n", file)

	fmt.Fprintln(w, "  Classes:")
	if len(summary.Classes) == 0 {
		fmt.Fprintln(w, "    No classes found")
	}
	for _, c := range summary.Classes {
		fmt.Fprintf(w, "    - %s\n", formatClass(c.Class))
		for _, m := range c.Methods {
			fmt.Fprintf(w, "        - %s\n", formatMethod(m))
		}
	}

	fmt.Fprintln(w, "  Functions:")
	if len(summary.Functions) == 0 {
		fmt.Fprintln(w, "    No functions found")
	}
	for _, f := range summary.Functions {
		fmt.Fprintf(w, "    - %s\n", formatFunction(f))
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
