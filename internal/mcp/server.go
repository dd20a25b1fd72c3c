// Package mcp exposes declaration queries as Model Context Protocol tools.
package mcp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/pydecl/internal/watcher"
	"github.com/mvp-joe/pydecl/pkg/analysis"
)

// ServerName and ServerVersion identify the server to MCP clients.
const (
	ServerName    = "pydecl-mcp"
	ServerVersion = "1.0.0"
)

// MCPServerConfig holds the dependencies of an MCP server.
type MCPServerConfig struct {
	// RootDir anchors relative paths in tool arguments.
	RootDir string

	// Resolver maps module arguments to files.
	Resolver analysis.ModuleResolver

	// DB, if set, enables the index-backed pydecl_find_class tool.
	DB *sql.DB

	// Watch, if set, keeps the index fresh while the server runs.
	Watch *watcher.WatchCoordinator
}

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	config *MCPServerConfig
	mcp    *server.MCPServer
}

// NewMCPServer creates a server with every tool registered.
func NewMCPServer(config *MCPServerConfig) (*MCPServer, error) {
	if config == nil {
		return nil, fmt.Errorf("server config is required")
	}
	if config.Resolver == nil {
		return nil, fmt.Errorf("module resolver is required")
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
	)

	AddDeclarationTools(mcpServer, config.RootDir, config.Resolver)
	if config.DB != nil {
		AddFindClassTool(mcpServer, config.DB)
	}

	return &MCPServer{
		config: config,
		mcp:    mcpServer,
	}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *MCPServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.config.Watch != nil {
		go func() {
			if err := s.config.Watch.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Warning: index watcher stopped: %v", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Server returns the underlying mcp-go server.
func (s *MCPServer) Server() *server.MCPServer {
	return s.mcp
}
