// Package cli implements the pydecl command line.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/pydecl/internal/config"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	cfgFile string
	rootDir string
	verbose bool
}

// NewRootCmd builds the pydecl command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "pydecl",
		Short: "pydecl - list Python classes, functions and methods",
		Long: `pydecl reads Python source without executing it and reports the classes,
module-level functions and class methods it declares.

Inputs can be files, directories, glob patterns or (with --module) dotted
module names resolved on the project's import path.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !opts.verbose {
				log.SetFlags(0)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is .pydecl/config.yml under the project root)")
	rootCmd.PersistentFlags().StringVar(&opts.rootDir, "root", "", "project root (default is the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		newClassesCmd(opts),
		newFunctionsCmd(opts),
		newMethodsCmd(opts),
		newAnalyzeCmd(opts),
		newIndexCmd(opts),
		newWatchCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// project is the resolved root directory and configuration of one run.
type project struct {
	rootDir string
	cfg     *config.Config
}

// loadProject resolves the project root and loads its configuration.
func (o *globalOptions) loadProject(stderr io.Writer) (*project, error) {
	rootDir := o.rootDir
	if rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		rootDir = wd
	}
	rootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	var loader config.Loader
	if o.cfgFile != "" {
		loader = config.NewFileLoader(rootDir, o.cfgFile)
	} else {
		loader = config.NewLoader(rootDir)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if o.verbose {
		fmt.Fprintf(stderr, "Project root: %s\n", rootDir)
	}

	return &project{rootDir: rootDir, cfg: cfg}, nil
}

// display returns path relative to the project root when it lies inside it.
func (p *project) display(path string) string {
	rel, err := filepath.Rel(p.rootDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
