package cli

import (
	"fmt"
	"os"

	"github.com/mvp-joe/pydecl/internal/mcp"
	"github.com/mvp-joe/pydecl/internal/scanner"
	"github.com/spf13/cobra"
)

func newMCPCmd(g *globalOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for declaration queries",
		Long: `Start a Model Context Protocol (MCP) server on stdio so coding assistants
can list the classes, functions and methods of Python sources.

Tools:
- pydecl_list_classes, pydecl_list_functions, pydecl_list_methods,
  pydecl_analyze_module: parse inline source, a file or a module on demand
- pydecl_find_class: search the project index (when one exists)

Example:
  pydecl mcp --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.loadProject(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			resolver, err := p.cfg.ModuleResolver(p.rootDir)
			if err != nil {
				return err
			}

			serverConfig := &mcp.MCPServerConfig{
				RootDir:  p.rootDir,
				Resolver: resolver,
			}

			// The index-backed tool is only offered once an index exists or
			// the server is asked to maintain one.
			if _, statErr := os.Stat(p.cfg.DatabasePath(p.rootDir)); statErr == nil || watch {
				session, err := p.openIndex(scanner.NoOpProgressReporter{})
				if err != nil {
					return err
				}
				defer session.Close()
				serverConfig.DB = session.db

				if watch {
					if _, err := session.indexer.Index(cmd.Context(), nil); err != nil {
						return fmt.Errorf("initial indexing failed: %w", err)
					}
					coordinator, err := p.newCoordinator(session)
					if err != nil {
						return err
					}
					serverConfig.Watch = coordinator
				}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "pydecl MCP Server\n")
			fmt.Fprintf(cmd.ErrOrStderr(), "Project Root: %s\n\n", p.rootDir)

			server, err := mcp.NewMCPServer(serverConfig)
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			if err := server.Serve(cmd.Context()); err != nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Index the project and keep the index fresh while serving")
	return cmd
}
