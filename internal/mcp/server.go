package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mfenderov/blogsearch/internal/render"
	"github.com/mfenderov/blogsearch/internal/search"
	"github.com/mfenderov/blogsearch/pkg/models"
)

// DefaultLimit is the number of results returned when the caller gives none.
const DefaultLimit = 10

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// Server exposes the blog search as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	services  *search.Holder
}

// NewServer creates a new MCP server with search tools.
func NewServer(config Config, services *search.Holder) (*Server, error) {
	if services == nil || services.Service() == nil {
		return nil, fmt.Errorf("search service is required")
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		services:  services,
	}

	searchTool := mcp.NewTool("search_documents",
		mcp.WithDescription("Search the blog's pages. Supports field scoping (title:go), required/excluded terms (+gorm -nil) and wildcards. Returns ranked results with title, URL and a snippet."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)
	mcpServer.AddTool(searchTool, s.searchHandler)

	getDocTool := mcp.NewTool("get_document",
		mcp.WithDescription("Get a blog page's full text by document ID"),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Document ID, as returned in the ref field of search results"),
		),
	)
	mcpServer.AddTool(getDocTool, s.getDocumentHandler)

	return s, nil
}

func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	limit := req.GetInt("limit", DefaultLimit)

	results, err := s.handleSearch(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	data, err := json.Marshal(results)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getDocumentHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	doc, ok := s.handleGetDocument(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("document not found: %d", id)), nil
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal document: %v", err)), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}

// handleSearch returns at most limit results for query, best first.
// An empty query yields an empty list.
func (s *Server) handleSearch(ctx context.Context, query string, limit int) ([]render.Result, error) {
	results, err := s.services.Service().Results(ctx, query)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []render.Result{}
	}
	return results, nil
}

func (s *Server) handleGetDocument(id int) (models.Document, bool) {
	return s.services.Service().Store().Get(id)
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
