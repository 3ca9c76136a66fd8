package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/contentcore/internal/app"
	"github.com/deusflow/contentcore/internal/article"
	"github.com/deusflow/contentcore/internal/config"
	"github.com/deusflow/contentcore/internal/plagiarism"
)

// fakePipeline runs the originality operations for real and stubs the
// network-bound ones.
type fakePipeline struct {
	*app.Service

	category string
	limit    int
}

func (f *fakePipeline) FetchTopics(ctx context.Context, category string, limit int) app.TopicsResult {
	f.category, f.limit = category, limit
	return app.TopicsResult{
		RunID:      "run-1",
		IsFallback: true,
		Articles:   []article.Enriched{{Raw: article.Raw{Title: "Cloud Computing Trends", Category: "tech"}}},
	}
}

func (f *fakePipeline) FetchSiteTopics(ctx context.Context, description string, limit int) app.SiteTopicsResult {
	f.limit = limit
	return app.SiteTopicsResult{RunID: "run-2", Articles: []article.Ranked{}}
}

func (f *fakePipeline) RelevantSources(ctx context.Context, topic, description string) app.SiteTopicsResult {
	return app.SiteTopicsResult{RunID: "run-3", Articles: []article.Ranked{}}
}

func (f *fakePipeline) ArticleSummary(ctx context.Context, pageURL string) (*article.Enriched, error) {
	if strings.Contains(pageURL, "missing") {
		return nil, errors.New("HTTP error 404")
	}
	return &article.Enriched{Raw: article.Raw{Title: "Page", URL: pageURL}}, nil
}

func newTestServer(t *testing.T) (*Server, *fakePipeline) {
	t.Helper()
	svc := app.New(config.Defaults())
	t.Cleanup(svc.Close)
	fake := &fakePipeline{Service: svc}
	return NewServer(Config{Name: "contentcore", Version: "test"}, fake), fake
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

var toolSources = []any{
	map[string]any{
		"title":   "AI Breakthrough in Healthcare",
		"url":     "https://techcrunch.com/ai-healthcare-breakthrough",
		"source":  "TechCrunch",
		"content": "Artificial intelligence is transforming healthcare with new diagnostic tools.",
	},
}

func TestServer_Creation(t *testing.T) {
	s, _ := newTestServer(t)
	require.NotNil(t, s)
	assert.NotNil(t, s.mcpServer)
}

func TestFetchTopicsHandler(t *testing.T) {
	s, fake := newTestServer(t)

	res, err := s.fetchTopicsHandler(context.Background(), callRequest(map[string]any{"category": "tech", "limit": 3}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var out app.TopicsResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.True(t, out.IsFallback)
	assert.Equal(t, "run-1", out.RunID)
	assert.Equal(t, "tech", fake.category)
	assert.Equal(t, 3, fake.limit)

	_, err = s.fetchTopicsHandler(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, "general", fake.category)
	assert.Equal(t, defaultLimit, fake.limit)
}

func TestFetchSiteTopicsHandler_RequiresDescription(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.fetchSiteTopicsHandler(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.fetchSiteTopicsHandler(context.Background(), callRequest(map[string]any{"site_description": "green blog"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
}

func TestArticleSummaryHandler(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.articleSummaryHandler(context.Background(), callRequest(map[string]any{"url": "https://example.com/a"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"url":"https://example.com/a"`)

	res, err = s.articleSummaryHandler(context.Background(), callRequest(map[string]any{"url": "https://example.com/missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestAnalyzePlagiarismHandler(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.analyzePlagiarismHandler(context.Background(), callRequest(map[string]any{
		"content": "Artificial intelligence is transforming healthcare with new diagnostic tools.",
		"sources": toolSources,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var report plagiarism.Report
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.False(t, report.IsOriginal)
	assert.Greater(t, report.SimilarityScore, 0.8)
	assert.Len(t, report.SuspiciousSections, 1)
}

func TestAnalyzePlagiarismHandler_BadSources(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.analyzePlagiarismHandler(context.Background(), callRequest(map[string]any{"content": "text"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.analyzePlagiarismHandler(context.Background(), callRequest(map[string]any{
		"content": "text",
		"sources": "not a list",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestValidateSourcesHandler(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.validateSourcesHandler(context.Background(), callRequest(map[string]any{"sources": []any{}}))
	require.NoError(t, err)

	var report plagiarism.QualityReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, 0.0, report.OverallQuality)
	assert.Equal(t, []string{plagiarism.RecNoSources}, report.Recommendations)
}

func TestBuildAttributionHandler(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.buildAttributionHandler(context.Background(), callRequest(map[string]any{"sources": toolSources}))
	require.NoError(t, err)
	html := resultText(t, res)
	assert.Contains(t, html, `<div class="sources-section">`)

	res, err = s.buildAttributionHandler(context.Background(), callRequest(map[string]any{"sources": toolSources}))
	require.NoError(t, err)
	assert.Equal(t, html, resultText(t, res))

	res, err = s.buildAttributionHandler(context.Background(), callRequest(map[string]any{
		"sources": toolSources,
		"content": "Generated body",
	}))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resultText(t, res), "Generated body\n\n"))

	res, err = s.buildAttributionHandler(context.Background(), callRequest(map[string]any{
		"sources": toolSources,
		"format":  "text",
	}))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resultText(t, res), "This content was informed by 1 source(s):"))

	res, err = s.buildAttributionHandler(context.Background(), callRequest(map[string]any{
		"sources": toolSources,
		"format":  "pdf",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
