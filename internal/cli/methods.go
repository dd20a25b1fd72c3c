package cli

import (
	"errors"
	"io"

	"github.com/mvp-joe/pydecl/internal/extraction"
	"github.com/spf13/cobra"
)

func newMethodsCmd(g *globalOptions) *cobra.Command {
	opts := &queryOptions{globalOptions: g}
	var className string

	cmd := &cobra.Command{
		Use:   "methods --class NAME [files|dirs|globs...]",
		Short: "List the methods of a class",
		Long: `List the methods defined directly in the body of a class, marking async
methods and staticmethod, classmethod and property modifiers. An input that
defines no class with that name is reported as an error.

Examples:
  pydecl methods --class User app/models.py
  pydecl methods -c JSONDecoder --module json.decoder
  pydecl methods --example`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.example {
				className = exampleMethodsClass
			}
			if className == "" {
				return errors.New("--class is required when analyzing files")
			}
			return opts.run(cmd, args, methodsQuery(className))
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&className, "class", "c", "", "Name of the class whose methods to list")
	return cmd
}

func methodsQuery(className string) *query {
	return &query{
		key:     "methods",
		example: exampleMethods,
		extract: func(summary *extraction.ModuleSummary) (interface{}, int, error) {
			methods, err := summary.MethodsOf(className)
			if err != nil {
				return nil, 0, err
			}
			return methods, len(methods), nil
		},
		text: func(w io.Writer, label string, records interface{}) {
			writeMethods(w, label, className, records.([]extraction.MethodRecord))
		},
	}
}
