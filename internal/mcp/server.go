// Package mcp implements the Model Context Protocol server that exposes
// ActivityWatch data to MCP clients over stdio.
//
// The server speaks line-delimited JSON-RPC 2.0 on stdin/stdout; logs go to
// stderr so the protocol channel stays clean. Tool handlers translate MCP
// tool calls into ActivityWatch API requests and run the window-title
// classification pipeline over the returned events.
package mcp

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"awmcp/internal/aql"
	"awmcp/internal/aw"
	"awmcp/internal/categories"
	"awmcp/internal/clients"
	"awmcp/internal/config"
	"awmcp/internal/export"
	"awmcp/internal/storage"
)

// Deps bundles the collaborators the tool handlers need. Client is required;
// everything else falls back to sensible defaults when nil.
type Deps struct {
	Client      *aw.Client
	Config      *config.Config
	Clients     *clients.Config
	Categorizer *categories.Categorizer
	Queries     *aql.Library
	Archiver    *export.Archiver
	MetricsDB   *storage.DB // nil disables metrics persistence
}

// MCPServer serves MCP requests over stdio.
type MCPServer struct {
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner
	logger  *slog.Logger
	version string

	client      *aw.Client
	cfg         *config.Config
	clients     *clients.Config
	categorizer *categories.Categorizer
	queries     *aql.Library
	archiver    *export.Archiver

	metrics *invocationRecorder
	tools   map[string]ToolHandler
}

// NewMCPServer creates an MCP server reading from stdin and writing to
// stdout. Missing optional dependencies are replaced with their defaults so
// the server always starts; only the ActivityWatch client is mandatory.
func NewMCPServer(version string, deps Deps, logger *slog.Logger) *MCPServer {
	if deps.Config == nil {
		deps.Config = config.DefaultConfig()
	}
	if deps.Clients == nil {
		deps.Clients = clients.DefaultConfig()
	}
	if deps.Categorizer == nil {
		deps.Categorizer = categories.Default()
	}
	if deps.Queries == nil {
		deps.Queries = aql.Builtin()
	}

	server := &MCPServer{
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		logger:      logger,
		version:     version,
		client:      deps.Client,
		cfg:         deps.Config,
		clients:     deps.Clients,
		categorizer: deps.Categorizer,
		queries:     deps.Queries,
		archiver:    deps.Archiver,
		metrics:     newInvocationRecorder(deps.MetricsDB),
		tools:       make(map[string]ToolHandler),
	}

	server.RegisterTools()

	return server
}

// Start runs the message loop until stdin closes.
func (s *MCPServer) Start() error {
	s.logger.Info("MCP server starting",
		"version", s.version,
		"server", s.client.BaseURL(),
	)

	for {
		msg, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				s.logger.Info("MCP server shutting down (EOF)")
				return nil
			}
			s.logger.Error("Error reading message",
				"error", err.Error(),
			)

			// Try to send error response if we can extract an ID
			if msg != nil && msg.Id != nil {
				_ = s.writeError(msg.Id, ParseError, fmt.Sprintf("Failed to parse message: %v", err))
			}
			continue
		}

		// Process the message
		response := s.handleMessage(msg)

		// Write response if one was generated (notifications don't generate responses)
		if response != nil {
			if err := s.writeMessage(response); err != nil {
				s.logger.Error("Error writing response",
					"error", err.Error(),
				)
			}
		}
	}
}

// SetStdin sets the input stream (for testing)
func (s *MCPServer) SetStdin(r io.Reader) {
	s.stdin = r
	s.scanner = nil // Reset scanner so it will be recreated with new reader
}

// SetStdout sets the output stream (for testing)
func (s *MCPServer) SetStdout(w io.Writer) {
	s.stdout = w
}
