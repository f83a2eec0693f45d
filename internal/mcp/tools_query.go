package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerQueryTools() {
	s.mcp.AddTool(mcp.NewTool("run_query",
		mcp.WithDescription("Run a SQL query against the database. The statement executes inside a transaction that is always rolled back, so it cannot cause persistent changes."),
		mcp.WithString("sql", mcp.Description("SQL statement to execute"), mcp.Required()),
	), s.handleRunQuery)
}

func (s *Server) handleRunQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("sql", "")
	if query == "" {
		return nil, fmt.Errorf("sql is required")
	}

	result, err := s.store.RunReadOnly(ctx, query)
	if err != nil {
		// Query failures are a normal result for ad-hoc SQL, not a transport error.
		return errorResult(err), nil
	}
	return jsonResult(result)
}
