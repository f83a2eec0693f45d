package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── schema://tables ────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"schema://tables",
		"Database Schema",
		mcp.WithMIMEType("application/json"),
	), s.handleSchemaResource)

	// ── schema://table/{name} ──────────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"schema://table/{name}",
			"Table Definition",
		),
		s.handleTableResource,
	)
}

func (s *Server) handleSchemaResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	schema, err := s.store.Introspect(ctx)
	if err != nil {
		return nil, err
	}

	data, _ := json.MarshalIndent(schema, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "schema://tables",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleTableResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	table := strings.TrimPrefix(uri, "schema://table/")
	if table == "" || table == uri {
		return nil, fmt.Errorf("could not extract table name from URI: %s", uri)
	}

	info, err := s.store.DescribeTable(ctx, table)
	if err != nil {
		return nil, err
	}

	data, _ := json.MarshalIndent(info, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
