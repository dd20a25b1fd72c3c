package cli

import (
	"io"

	"github.com/mvp-joe/pydecl/internal/extraction"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(g *globalOptions) *cobra.Command {
	opts := &queryOptions{globalOptions: g}

	cmd := &cobra.Command{
		Use:   "analyze [files|dirs|globs...]",
		Short: "Summarize classes, their methods and functions in one pass",
		Long: `Analyze whole modules: every class (nested ones included) with its direct
methods, followed by the module's functions.

Examples:
  pydecl analyze app/
  pydecl analyze --module app.models --format json
  pydecl analyze --example`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args, analyzeQuery())
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func analyzeQuery() *query {
	return &query{
		key:     "summary",
		example: exampleModule,
		extract: func(summary *extraction.ModuleSummary) (interface{}, int, error) {
			return summary, len(summary.Classes) + len(summary.Functions), nil
		},
		text: func(w io.Writer, label string, records interface{}) {
			writeSummary(w, label, records.(*extraction.ModuleSummary))
		},
	}
}
