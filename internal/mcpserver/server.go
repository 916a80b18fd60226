// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the site's requests, page data, content search and hook points to
// LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/hookpress/internal/apperr"
	"github.com/starford/hookpress/internal/hook"
	"github.com/starford/hookpress/internal/index"
	"github.com/starford/hookpress/internal/models"
	"github.com/starford/hookpress/internal/site"
)

// ContentFormatURI is the resource describing the content file format.
const ContentFormatURI = "hookpress://content-format"

// Server wraps the MCP server with site tools.
type Server struct {
	mcp   *server.MCPServer
	live  *site.Live
	index index.DocumentIndex
}

// New creates a new MCP server with all tools registered. idx may be nil,
// which disables search_content.
func New(live *site.Live, idx index.DocumentIndex, version string) *Server {
	s := &Server{live: live, index: idx}

	s.mcp = server.NewMCPServer(
		"hookpress",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_requests",
		mcp.WithDescription("List every page the site renders with its route, slug and permalink."),
		mcp.WithString("route", mcp.Description("Optional route name to filter by (e.g. blog)")),
	), s.listRequests)

	s.mcp.AddTool(mcp.NewTool("get_page_data",
		mcp.WithDescription("Return the data a page is rendered with after every data hook ran, "+
			"including front matter and rendered HTML for content pages."),
		mcp.WithString("route", mcp.Required(), mcp.Description("Route name")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Page slug")),
	), s.getPageData)

	s.mcp.AddTool(mcp.NewTool("render_page",
		mcp.WithDescription("Render a page to its final HTML."),
		mcp.WithString("route", mcp.Required(), mcp.Description("Route name")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Page slug")),
	), s.renderPage)

	s.mcp.AddTool(mcp.NewTool("search_content",
		mcp.WithDescription("Full-text search through content titles and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchContent)

	s.mcp.AddTool(mcp.NewTool("list_hook_points",
		mcp.WithDescription("List the pipeline's extension points and the hooks registered on each, in execution order."),
	), s.listHookPoints)

	s.mcp.AddTool(mcp.NewTool("get_content_format",
		mcp.WithDescription("Returns the content file format: front matter, slugs and shortcodes."),
	), s.getContentFormat)

	s.mcp.AddResource(
		mcp.NewResource(ContentFormatURI, "Content File Format",
			mcp.WithResourceDescription("How content files are laid out, slugged and rendered."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContentFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found: " + err.Error())
	case errors.Is(err, apperr.ErrNotReady):
		return mcp.NewToolResultError("site is not ready")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func requestArg(req mcp.CallToolRequest) (models.Request, error) {
	route, err := req.RequireString("route")
	if err != nil {
		return models.Request{}, err
	}
	slug, err := req.RequireString("slug")
	if err != nil {
		return models.Request{}, err
	}
	return models.Request{Route: route, Slug: slug}, nil
}

type requestItem struct {
	Route     string `json:"route"`
	Slug      string `json:"slug"`
	Permalink string `json:"permalink"`
}

func (s *Server) listRequests(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.live.State()
	if st == nil {
		return toolError(apperr.ErrNotReady), nil
	}
	filter := req.GetString("route", "")

	items := []requestItem{}
	for _, r := range st.Requests() {
		if filter != "" && r.Route != filter {
			continue
		}
		link, _ := st.Permalink(r)
		items = append(items, requestItem{Route: r.Route, Slug: r.Slug, Permalink: link})
	}
	return jsonResult(items)
}

func (s *Server) getPageData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := requestArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.live.PageData(ctx, r)
	if err != nil {
		return toolError(err), nil
	}
	out := data.Clone()
	delete(out, models.DataMarkdown)
	return jsonResult(out)
}

func (s *Server) renderPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := requestArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.live.Page(ctx, r)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(page.HTML), nil
}

func (s *Server) searchContent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.index == nil {
		return mcp.NewToolResultError("search index is disabled"), nil
	}
	results, err := s.index.Search(query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no results"), nil
	}
	return jsonResult(results)
}

type hookItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

type pointItem struct {
	hook.PointInfo
	Hooks []hookItem `json:"hooks"`
}

func (s *Server) listHookPoints(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.live.State()
	out := []pointItem{}
	for _, info := range hook.Points() {
		p := pointItem{PointInfo: info, Hooks: []hookItem{}}
		if st != nil {
			for _, h := range st.Hooks(info.Point) {
				p.Hooks = append(p.Hooks, hookItem{Name: h.Name, Description: h.Description, Priority: h.Priority})
			}
		}
		out = append(out, p)
	}
	return jsonResult(out)
}

func (s *Server) getContentFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ContentFormat), nil
}

func (s *Server) readContentFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContentFormatURI,
			MIMEType: "text/markdown",
			Text:     ContentFormat,
		},
	}, nil
}

