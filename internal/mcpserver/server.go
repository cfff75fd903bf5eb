// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/bundleservice"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp     *server.MCPServer
	svc     *bundleservice.Service
	dataDir string
}

// New creates a new MCP server with all Raido tools registered. dataDir is
// the directory assets are saved under.
func New(svc *bundleservice.Service, dataDir string) *Server {
	s := &Server{svc: svc, dataDir: dataDir}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_datasets",
		mcp.WithDescription("List the configured datasets (id and label)."),
	), s.listDatasets)

	s.mcp.AddTool(mcp.NewTool("list_bundles",
		mcp.WithDescription("List command bundles in a dataset, newest first."),
		mcp.WithString("dataset", mcp.Required(), mcp.Description("Dataset id, e.g. main")),
	), s.listBundles)

	s.mcp.AddTool(mcp.NewTool("read_bundle",
		mcp.WithDescription("Read a full command bundle including its normalized command list and per-command memos."),
		mcp.WithString("dataset", mcp.Required(), mcp.Description("Dataset id")),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Bundle id")),
	), s.readBundle)

	s.mcp.AddTool(mcp.NewTool("search_bundles",
		mcp.WithDescription("Search bundles by name and keywords (case-insensitive substring)."),
		mcp.WithString("dataset", mcp.Required(), mcp.Description("Dataset id")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchBundles)

	s.mcp.AddTool(mcp.NewTool("create_bundle",
		mcp.WithDescription("Create a new command bundle. The command_text field MUST follow "+
			"the canonical command format (one shell command per line). Read the contract "+
			"first via the get_command_contract tool or the raido://command-format resource."),
		mcp.WithString("dataset", mcp.Required(), mcp.Description("Dataset id")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Bundle name")),
		mcp.WithString("command_text", mcp.Description("Commands, one per line")),
		mcp.WithString("description", mcp.Description("What the bundle is for")),
		mcp.WithString("keywords", mcp.Description("Comma-separated keywords")),
	), s.createBundle)

	s.mcp.AddTool(mcp.NewTool("get_command_contract",
		mcp.WithDescription("Returns the canonical Raido command format contract. "+
			"Call this before creating bundles to ensure correct structure."),
	), s.getCommandContract)

	s.mcp.AddTool(mcp.NewTool("procedures_by_keyword",
		mcp.WithDescription("List tagged procedure records whose tag falls under the given keyword-tree node."),
		mcp.WithString("keyword", mcp.Required(), mcp.Description("Keyword-tree node name")),
	), s.proceduresByKeyword)

	s.mcp.AddTool(mcp.NewTool("search_procedures",
		mcp.WithDescription("Search tagged procedure records by title."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchProcedures)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Download a file from a URL (or decode a data: URI) and save it "+
			"into the assets directory. Returns the saved path and a ready-to-paste Markdown image."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or base64 data: URI")),
		mcp.WithString("filename", mcp.Description("Optional target filename (extension required)")),
	), s.uploadAsset)

	// Resource: command format contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://command-format", "Command Format Contract",
			mcp.WithResourceDescription("Canonical command bundle format that all bundles must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCommandFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listDatasets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Datasets(ctx)), nil
}

func (s *Server) listBundles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, err := req.RequireString("dataset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := s.svc.ListBundles(ctx, ds, "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown dataset: %s", ds)), nil
	}
	return jsonResult(items), nil
}

func (s *Server) readBundle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, err := req.RequireString("dataset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := s.svc.GetBundle(ctx, ds, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%d", ds, id)), nil
	}
	return jsonResult(b), nil
}

func (s *Server) searchBundles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, err := req.RequireString("dataset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := s.svc.ListBundles(ctx, ds, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown dataset: %s", ds)), nil
	}
	return jsonResult(items), nil
}

func (s *Server) createBundle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, err := req.RequireString("dataset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := s.svc.CreateBundle(ctx, ds, bundleservice.BundleInput{
		Name:        name,
		CommandText: req.GetString("command_text", ""),
		Description: req.GetString("description", ""),
		Keywords:    req.GetString("keywords", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s/%d", ds, b.ID)), nil
}

func (s *Server) proceduresByKeyword(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keyword, err := req.RequireString("keyword")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.ProceduresByKeyword(ctx, keyword)), nil
}

func (s *Server) searchProcedures(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.SearchProcedures(ctx, query)), nil
}

func (s *Server) getCommandContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CommandFormatContract), nil
}

func (s *Server) readCommandFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://command-format",
			MIMEType: "text/markdown",
			Text:     CommandFormatContract,
		},
	}, nil
}
