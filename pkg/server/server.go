// Package server provides the MCP server implementation for the pcetile
// converter.
//
// This package orchestrates the MCP (Model Context Protocol) server
// lifecycle, connecting MCP tool requests to the conversion pipeline and
// exporter through the pkg/tools package.
//
// Server Lifecycle:
//  1. Create server with New() using validated config
//  2. Tools are automatically registered during initialization
//  3. Run() starts the server with stdio transport
//  4. Server processes tool requests via MCP protocol
//  5. Context cancellation triggers graceful shutdown
//
// The server uses stdio transport for communication with MCP clients.
package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ochrefield/pcetile/pkg/config"
	"github.com/ochrefield/pcetile/pkg/tools"
	"github.com/willibrandon/mtlog/core"
)

// Server wraps the MCP server and the converter's tool implementations.
type Server struct {
	mcp    *mcp.Server
	config *config.Config
	logger core.Logger
}

// New creates a new pcetile MCP server with the given configuration.
//
// The configuration is validated before server creation. If validation
// fails, an error is returned immediately.
func New(cfg *config.Config, logger core.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "pcetile",
		Version: "0.1.0",
	}, nil)

	s := &Server{
		mcp:    mcpServer,
		config: cfg,
		logger: logger,
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server with stdio transport.
//
// Run blocks until the context is cancelled, the client closes the
// connection, or a fatal error occurs.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Information("Starting pcetile MCP server")
	s.logger.Debug("Configuration: {@Config}", s.config)

	transport := &mcp.StdioTransport{}

	if err := s.mcp.Run(ctx, transport); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// registerTools registers all MCP tools with the server, per spec.md §6.1's
// command surface.
func (s *Server) registerTools() {
	s.logger.Debug("Registering MCP tools")
	tools.RegisterImageTools(s.mcp, s.config, s.logger)
	tools.RegisterConversionTools(s.mcp, s.config, s.logger)
	tools.RegisterExportTools(s.mcp, s.config, s.logger)
	tools.RegisterStubTools(s.mcp, s.config, s.logger)
}
