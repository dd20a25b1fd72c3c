package cli

import (
	"io"

	"github.com/mvp-joe/pydecl/internal/extraction"
	"github.com/spf13/cobra"
)

func newClassesCmd(g *globalOptions) *cobra.Command {
	opts := &queryOptions{globalOptions: g}

	cmd := &cobra.Command{
		Use:   "classes [files|dirs|globs...]",
		Short: "List the classes defined in Python files",
		Long: `List every class defined in the given Python sources, nested classes
included, with its line, base class expressions and decorators.

Examples:
  pydecl classes app/models.py
  pydecl classes src/ 'tests/**/test_*.py'
  pydecl classes --module app.models --format json
  pydecl classes --example`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args, classesQuery())
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func classesQuery() *query {
	return &query{
		key:     "classes",
		example: exampleClasses,
		extract: func(summary *extraction.ModuleSummary) (interface{}, int, error) {
			classes := make([]extraction.ClassRecord, 0, len(summary.Classes))
			for _, c := range summary.Classes {
				classes = append(classes, c.Class)
			}
			return classes, len(classes), nil
		},
		text: func(w io.Writer, label string, records interface{}) {
			writeClasses(w, label, records.([]extraction.ClassRecord))
		},
	}
}
