// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the ponto catalog to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/pontos/internal/catalog"
	"github.com/starford/pontos/internal/storage"
)

const formatURI = "pontos://document-format"

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	db    catalog.Catalog
}

// New creates a new MCP server with all tools registered.
func New(store storage.Provider, db catalog.Catalog) *Server {
	s := &Server{store: store, db: db}

	s.mcp = server.NewMCPServer(
		"Pontos",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_pontos",
		mcp.WithDescription("Full-text search through ponto titles, lyrics and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchPontos)

	s.mcp.AddTool(mcp.NewTool("read_ponto",
		mcp.WithDescription("Read the full Markdown source of a ponto document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. ogum/ogum-mege.mdx)")),
	), s.readPonto)

	s.mcp.AddTool(mcp.NewTool("list_pontos",
		mcp.WithDescription("List catalogued pontos, optionally filtered by tag (category)."),
		mcp.WithString("tag", mcp.Description("Optional tag to filter by")),
	), s.listPontos)

	s.mcp.AddTool(mcp.NewTool("get_document_format",
		mcp.WithDescription("Returns the layout of a generated ponto document. "+
			"Call this before interpreting document sources."),
	), s.getDocumentFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Ponto Document Format",
			mcp.WithResourceDescription("Layout of generated ponto documents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
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

func (s *Server) searchPontos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPonto(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listPontos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := req.GetString("tag", "")

	var lines []string
	for offset := 0; ; {
		rows, total, err := s.db.List(500, offset, tag)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		for _, r := range rows {
			lines = append(lines, r.Path+"\t"+r.Title)
		}
		offset += len(rows)
		if len(rows) == 0 || offset >= total {
			break
		}
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no pontos found"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getDocumentFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormat), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormat,
		},
	}, nil
}
