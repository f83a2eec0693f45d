package mcpserver

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"datadeck/internal/service"
	"datadeck/internal/store"
)

// Server is the MCP server: it exposes SQL query, schema introspection, and
// tabular ingestion tools over one relational store.
type Server struct {
	mcp    *server.MCPServer
	store  *store.Store
	ingest *service.IngestService
}

// Deps holds the dependencies wired in at startup.
type Deps struct {
	Store  *store.Store
	Ingest *service.IngestService
}

// New creates and configures an MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{
		store:  deps.Store,
		ingest: deps.Ingest,
	}

	s.mcp = server.NewMCPServer(
		"datadeck",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerQueryTools()
	s.registerSchemaTools()
	s.registerIngestTools()
	s.registerResources()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// errorResult creates a structured failure result with the error flag set,
// so bad ad-hoc input surfaces to the caller instead of crashing the
// serving process.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: err.Error()},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}
