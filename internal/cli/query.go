package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/mvp-joe/pydecl/internal/config"
	"github.com/mvp-joe/pydecl/internal/discovery"
	"github.com/mvp-joe/pydecl/internal/extraction"
	"github.com/mvp-joe/pydecl/internal/scanner"
	"github.com/mvp-joe/pydecl/pkg/analysis"
	"github.com/spf13/cobra"
)

// exampleLabel names the built-in sample in output.
const exampleLabel = "<example>"

// errNoInputs is returned when a query command has nothing to analyze.
var errNoInputs = errors.New("no input: pass files, directories, glob patterns or module names, or use --example")

// query describes one declaration listing command.
type query struct {
	// key names the records in JSON output.
	key string

	// example is the source analyzed by --example.
	example string

	// extract picks the records out of a file summary and counts them.
	extract func(summary *extraction.ModuleSummary) (records interface{}, count int, err error)

	// text writes the records of one input in text format.
	text func(w io.Writer, label string, records interface{})
}

// queryOptions holds the flags shared by classes, functions, methods and analyze.
type queryOptions struct {
	*globalOptions
	module  bool
	format  string
	quiet   bool
	example bool
}

func (o *queryOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&o.module, "module", "m", false, "Treat arguments as dotted module names")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "Output format: text or json (default from config)")
	cmd.Flags().BoolVarP(&o.quiet, "quiet", "q", false, "Suppress warnings and inputs with no results")
	cmd.Flags().BoolVar(&o.example, "example", false, "Run on built-in example code instead of files")
}

// input is one resolved file plus the label it is reported under.
type input struct {
	path  string
	label string
}

// run executes q over args. Per-input failures are reported on stderr and
// processing continues; the returned error is non-nil if any input failed.
func (o *queryOptions) run(cmd *cobra.Command, args []string, q *query) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if o.quiet {
		prev := log.Writer()
		log.SetOutput(io.Discard)
		defer log.SetOutput(prev)
	}

	p, err := o.loadProject(errOut)
	if err != nil {
		return err
	}

	format := strings.ToLower(o.format)
	if format == "" {
		format = strings.ToLower(p.cfg.Output.Format)
	}
	if format != config.FormatText && format != config.FormatJSON {
		return fmt.Errorf("unsupported format %q (want %s or %s)", format, config.FormatText, config.FormatJSON)
	}

	if o.example {
		return runExample(out, q, format)
	}
	if len(args) == 0 {
		return errNoInputs
	}

	var inputs []input
	var failed int
	if o.module {
		inputs, failed, err = resolveModules(cmd.Context(), p, args, errOut)
	} else {
		inputs, failed, err = expandPaths(p, args, errOut)
	}
	if err != nil {
		return err
	}
	total := len(inputs) + failed

	paths := make([]string, len(inputs))
	for i, in := range inputs {
		paths[i] = in.path
	}

	sc, err := scanner.New(scanner.Options{Workers: p.cfg.Scan.Workers})
	if err != nil {
		return err
	}
	defer sc.Close()

	results, _, err := sc.Scan(cmd.Context(), paths)
	if err != nil {
		return err
	}

	reports := []map[string]interface{}{}
	for i, r := range results {
		label := inputs[i].label

		records, count, err := extract(q, r)
		if err != nil {
			fmt.Fprintf(errOut, "Error processing '%s': %v\n", label, err)
			failed++
			continue
		}
		if o.quiet && count == 0 {
			continue
		}

		if format == config.FormatJSON {
			reports = append(reports, map[string]interface{}{"file": label, q.key: records})
		} else {
			q.text(out, label, records)
		}
	}

	if format == config.FormatJSON {
		if err := writeJSON(out, reports); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, total)
	}
	return nil
}

func extract(q *query, r scanner.FileResult) (interface{}, int, error) {
	if r.Err != nil {
		return nil, 0, r.Err
	}
	return q.extract(r.Summary)
}

// runExample analyzes the built-in sample for q.
func runExample(out io.Writer, q *query, format string) error {
	summary, err := analysis.AnalyzeSource(q.example)
	if err != nil {
		return err
	}
	records, _, err := q.extract(summary)
	if err != nil {
		return err
	}

	if format == config.FormatJSON {
		return writeJSON(out, []map[string]interface{}{{"file": exampleLabel, q.key: records}})
	}

	fmt.Fprintln(out, "Source code example:")
	fmt.Fprint(out, q.example)
	q.text(out, exampleLabel, records)
	return nil
}

// expandPaths turns file, directory and glob arguments into inputs.
func expandPaths(p *project, args []string, errOut io.Writer) ([]input, int, error) {
	fd, err := discovery.NewFileDiscovery(p.rootDir, p.cfg.Paths.Include, p.cfg.Paths.Ignore)
	if err != nil {
		return nil, 0, err
	}

	var inputs []input
	failed := 0
	seen := make(map[string]bool)
	for _, arg := range args {
		files, err := fd.Expand([]string{arg})
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			failed++
			continue
		}
		for _, f := range files {
			if seen[f] {
				continue
			}
			seen[f] = true
			inputs = append(inputs, input{path: f, label: p.display(f)})
		}
	}
	return inputs, failed, nil
}

// resolveModules maps module arguments to their source files.
func resolveModules(ctx context.Context, p *project, names []string, errOut io.Writer) ([]input, int, error) {
	resolver, err := p.cfg.ModuleResolver(p.rootDir)
	if err != nil {
		return nil, 0, err
	}

	var inputs []input
	failed := 0
	for _, name := range names {
		path, err := resolver.Resolve(ctx, name)
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			failed++
			continue
		}
		inputs = append(inputs, input{path: path, label: name})
	}
	return inputs, failed, nil
}
