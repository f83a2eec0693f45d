package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerSchemaTools() {
	s.mcp.AddTool(mcp.NewTool("list_tables",
		mcp.WithDescription("List all tables in the database"),
	), s.handleListTables)

	s.mcp.AddTool(mcp.NewTool("describe_table",
		mcp.WithDescription("Show the columns and primary keys of a table"),
		mcp.WithString("table", mcp.Description("Table name"), mcp.Required()),
	), s.handleDescribeTable)

	s.mcp.AddTool(mcp.NewTool("table_stats",
		mcp.WithDescription("Return the row count of a table"),
		mcp.WithString("table", mcp.Description("Table name"), mcp.Required()),
	), s.handleTableStats)
}

func (s *Server) handleListTables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tables, err := s.store.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return jsonResult(tables)
}

func (s *Server) handleDescribeTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table := req.GetString("table", "")
	if table == "" {
		return nil, fmt.Errorf("table is required")
	}
	info, err := s.store.DescribeTable(ctx, table)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(info)
}

func (s *Server) handleTableStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table := req.GetString("table", "")
	if table == "" {
		return nil, fmt.Errorf("table is required")
	}
	count, err := s.store.CountRows(ctx, table)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{"table": table, "rowCount": count})
}
