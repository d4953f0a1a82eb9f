package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/funcscrape/internal/search"
)

// Server exposes a function index over MCP on stdio.
type Server struct {
	searcher search.Searcher
	mcp      *server.MCPServer
}

// NewServer creates an MCP server with the search_functions tool registered.
// The server takes ownership of searcher and closes it in Close.
func NewServer(searcher search.Searcher, version string) (*Server, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}

	mcpServer := server.NewMCPServer(
		"funcscrape",
		version,
		server.WithToolCapabilities(true),
	)
	AddSearchTool(mcpServer, searcher)

	return &Server{
		searcher: searcher,
		mcp:      mcpServer,
	}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
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

// Close releases the searcher.
func (s *Server) Close() error {
	if s.searcher != nil {
		return s.searcher.Close()
	}
	return nil
}
