package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"datadeck/internal/ingest"
)

func (s *Server) registerIngestTools() {
	s.mcp.AddTool(mcp.NewTool("ingest_file",
		mcp.WithDescription("Ingest delimited text (CSV/TSV) or an .xlsx workbook into a table, creating the table when absent. Rows with an 'id' column upsert by id; rows without one are inserted unless an exact duplicate already exists. The whole batch commits atomically."),
		mcp.WithString("fileName", mcp.Description("Source file name; the table name derives from it unless tableName is given"), mcp.Required()),
		mcp.WithString("fileData", mcp.Description("File contents, base64-encoded"), mcp.Required()),
		mcp.WithString("tableName", mcp.Description("Target table name override (optional)")),
		mcp.WithString("delimiter", mcp.Description("CSV column delimiter (optional, default comma)")),
		mcp.WithString("encoding", mcp.Description("Input charset: utf-8, latin-1, or windows-1252 (optional)")),
	), s.handleIngestFile)

	s.mcp.AddTool(mcp.NewTool("list_ingest_runs",
		mcp.WithDescription("List recent ingestion runs with their outcome summaries"),
	), s.handleListIngestRuns)
}

func (s *Server) handleIngestFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	fileName, _ := args["fileName"].(string)
	fileData, _ := args["fileData"].(string)
	tableName, _ := args["tableName"].(string)
	delimiter, _ := args["delimiter"].(string)
	encoding, _ := args["encoding"].(string)

	if fileName == "" || fileData == "" {
		return nil, fmt.Errorf("fileName and fileData are required")
	}

	raw, err := base64.StdEncoding.DecodeString(fileData)
	if err != nil {
		return errorResult(fmt.Errorf("decode fileData: %w", err)), nil
	}

	opts := ingest.Options{Encoding: encoding}
	if delimiter != "" {
		opts.Delimiter = rune(delimiter[0])
	}

	summaries, err := s.ingest.IngestFile(ctx, raw, fileName, tableName, opts)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(summaries)
}

func (s *Server) handleListIngestRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.ingest.Runs())
}
