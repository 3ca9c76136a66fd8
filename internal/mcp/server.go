// Package mcp exposes the content pipeline as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rotisserie/eris"

	"github.com/deusflow/contentcore/internal/app"
	"github.com/deusflow/contentcore/internal/article"
	"github.com/deusflow/contentcore/internal/plagiarism"
)

const defaultLimit = 5

// Pipeline is the part of app.Service the tools call.
type Pipeline interface {
	FetchTopics(ctx context.Context, category string, limit int) app.TopicsResult
	FetchSiteTopics(ctx context.Context, description string, limit int) app.SiteTopicsResult
	RelevantSources(ctx context.Context, topic, description string) app.SiteTopicsResult
	ArticleSummary(ctx context.Context, pageURL string) (*article.Enriched, error)
	AnalyzePlagiarism(content string, sources []article.Source) plagiarism.Report
	ValidateSources(sources []article.Source) plagiarism.QualityReport
	BuildAttribution(sources []article.Source) string
	EnhanceWithAttribution(content string, sources []article.Source) string
	SourceSummary(sources []article.Source) string
}

var _ Pipeline = (*app.Service)(nil)

type Config struct {
	Name    string
	Version string
}

// Server wraps the MCP server around a Pipeline.
type Server struct {
	mcpServer *server.MCPServer
	pipeline  Pipeline
}

func NewServer(config Config, pipeline Pipeline) *Server {
	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		pipeline:  pipeline,
	}

	sourcesParam := mcp.WithArray("sources",
		mcp.Required(),
		mcp.Description("Sources as objects with title, url, source, description, content and published"),
		mcp.Items(map[string]any{"type": "object"}),
	)

	mcpServer.AddTool(mcp.NewTool("fetch_topics",
		mcp.WithDescription("Fetch enriched trending articles for a category (ai, tech, business, sustainability, general)."),
		mcp.WithString("category", mcp.Description("Feed category; unknown values map to general")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of articles (default: 5)")),
	), s.fetchTopicsHandler)

	mcpServer.AddTool(mcp.NewTool("fetch_site_topics",
		mcp.WithDescription("Fetch articles ranked by relevance to a free-text site description."),
		mcp.WithString("site_description", mcp.Required(), mcp.Description("What the target site is about")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of articles (default: 5)")),
	), s.fetchSiteTopicsHandler)

	mcpServer.AddTool(mcp.NewTool("relevant_sources",
		mcp.WithDescription("Find site topics that mention a given topic, for use as generation sources."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Topic to find sources for")),
		mcp.WithString("site_description", mcp.Required(), mcp.Description("What the target site is about")),
	), s.relevantSourcesHandler)

	mcpServer.AddTool(mcp.NewTool("article_summary",
		mcp.WithDescription("Extract and analyse the full text of an article page."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Article URL")),
	), s.articleSummaryHandler)

	mcpServer.AddTool(mcp.NewTool("analyze_plagiarism",
		mcp.WithDescription("Compare generated content with the sources it was written from."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Generated content, plain text or HTML")),
		sourcesParam,
	), s.analyzePlagiarismHandler)

	mcpServer.AddTool(mcp.NewTool("validate_sources",
		mcp.WithDescription("Score a source list for credibility, recency and diversity."),
		sourcesParam,
	), s.validateSourcesHandler)

	mcpServer.AddTool(mcp.NewTool("build_attribution",
		mcp.WithDescription("Render the attribution block for a source list. With content, returns the content with the block appended."),
		sourcesParam,
		mcp.WithString("content", mcp.Description("Content to append the block to")),
		mcp.WithString("format", mcp.Description("html (default) or text")),
	), s.buildAttributionHandler)

	return s
}

func (s *Server) fetchTopicsHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := req.GetString("category", "general")
	limit := req.GetInt("limit", defaultLimit)
	return jsonResult(s.pipeline.FetchTopics(ctx, category, limit))
}

func (s *Server) fetchSiteTopicsHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := req.RequireString("site_description")
	if err != nil {
		return mcp.NewToolResultError("site_description parameter is required"), nil
	}
	limit := req.GetInt("limit", defaultLimit)
	return jsonResult(s.pipeline.FetchSiteTopics(ctx, description, limit))
}

func (s *Server) relevantSourcesHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError("topic parameter is required"), nil
	}
	description, err := req.RequireString("site_description")
	if err != nil {
		return mcp.NewToolResultError("site_description parameter is required"), nil
	}
	return jsonResult(s.pipeline.RelevantSources(ctx, topic, description))
}

func (s *Server) articleSummaryHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required"), nil
	}
	summary, err := s.pipeline.ArticleSummary(ctx, url)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("article summary failed: %v", err)), nil
	}
	return jsonResult(summary)
}

func (s *Server) analyzePlagiarismHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content parameter is required"), nil
	}
	sources, err := sourcesArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.pipeline.AnalyzePlagiarism(content, sources))
}

func (s *Server) validateSourcesHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sources, err := sourcesArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.pipeline.ValidateSources(sources))
}

func (s *Server) buildAttributionHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sources, err := sourcesArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch req.GetString("format", "html") {
	case "text":
		return mcp.NewToolResultText(s.pipeline.SourceSummary(sources)), nil
	case "html":
	default:
		return mcp.NewToolResultError("format must be html or text"), nil
	}

	if content := req.GetString("content", ""); content != "" {
		return mcp.NewToolResultText(s.pipeline.EnhanceWithAttribution(content, sources)), nil
	}
	return mcp.NewToolResultText(s.pipeline.BuildAttribution(sources)), nil
}

// sourcesArg decodes the "sources" argument. The list is passed through
// unmodified so the analysis sees exactly what the generator used.
func sourcesArg(req mcp.CallToolRequest) ([]article.Source, error) {
	raw, ok := req.GetArguments()["sources"]
	if !ok {
		return nil, eris.New("sources parameter is required")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, eris.Wrap(err, "invalid sources")
	}
	var sources []article.Source
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, eris.Wrap(err, "invalid sources")
	}
	return sources, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
