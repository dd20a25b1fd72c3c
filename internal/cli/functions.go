package cli

import (
	"io"

	"github.com/mvp-joe/pydecl/internal/extraction"
	"github.com/spf13/cobra"
)

func newFunctionsCmd(g *globalOptions) *cobra.Command {
	opts := &queryOptions{globalOptions: g}

	cmd := &cobra.Command{
		Use:   "functions [files|dirs|globs...]",
		Short: "List the functions defined outside classes",
		Long: `List functions defined at module level or nested in other functions.
Methods, and anything defined inside a method, are not functions.

Examples:
  pydecl functions app/utils.py
  pydecl functions --module json.decoder
  pydecl functions --example`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args, functionsQuery())
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func functionsQuery() *query {
	return &query{
		key:     "functions",
		example: exampleFunctions,
		extract: func(summary *extraction.ModuleSummary) (interface{}, int, error) {
			return summary.Functions, len(summary.Functions), nil
		},
		text: func(w io.Writer, label string, records interface{}) {
			writeFunctions(w, label, records.([]extraction.FunctionRecord))
		},
	}
}
