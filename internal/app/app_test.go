package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/contentcore/internal/article"
	"github.com/deusflow/contentcore/internal/config"
	"github.com/deusflow/contentcore/internal/ratelimit"
	"github.com/deusflow/contentcore/internal/rss"
)

type story struct {
	title, description string
}

var (
	techStories = []story{
		{"Chipmakers expand capacity", "New fabrication plants open across three continents."},
		{"Cloud outage hits retailers", "A configuration error took storefronts offline for hours."},
		{"Browser adds passkey support", "The update lets users sign in without a password."},
		{"Robotics startup ships arm", "The robotic arm targets small warehouse operators."},
	}
	greenStories = []story{
		{"Solar panels on every roof", "A city plan pushes renewable solar energy for all homes."},
		{"Recycling rates climb again", "Households report less waste and more recycling this year."},
	}
)

func feedXML(base, prefix string, stories []story) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>fixture</title>`)
	for i, s := range stories {
		fmt.Fprintf(&b, `<item><title>%s</title><link>%s/page/%s-%d</link>`+
			`<description>%s</description><pubDate>Mon, 0%d Jan 2024 10:00:00 +0000</pubDate></item>`,
			s.title, base, prefix, i, s.description, i+1)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

const pageHTML = `<html><body><h1>Full story</h1><article>
<p>The first paragraph of the full article explains the announcement in detail.</p>
<p>The second paragraph quotes analysts who expect the change to spread quickly.</p>
<p>The third paragraph lists the companies involved and the expected timeline.</p>
</article></body></html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/tech", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML(srv.URL, "tech", techStories))
	})
	mux.HandleFunc("/green", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML(srv.URL, "green", greenStories))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	mux.HandleFunc("/page/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.Feeds.CatalogPath = ""
	cfg.Feeds.PoliteDelay = time.Millisecond
	cfg.Feeds.RetryAttempts = 1
	cfg.Feeds.CacheTTL = 0
	cfg.Feeds.RequestTimeout = 2 * time.Second
	cfg.Scraper.Timeout = 2 * time.Second
	return cfg
}

func testService(t *testing.T, srv *httptest.Server, cfg config.Config, opts ...Option) *Service {
	t.Helper()
	catalog := rss.Catalog{Feeds: map[string][]string{
		rss.CategoryTech:           {srv.URL + "/tech"},
		rss.CategoryAI:             {srv.URL + "/broken"},
		rss.CategorySustainability: {srv.URL + "/green"},
		rss.CategoryGeneral:        {srv.URL + "/tech"},
	}}
	s := New(cfg, append([]Option{WithCatalog(catalog)}, opts...)...)
	t.Cleanup(s.Close)
	return s
}

type fakeSummarizer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, title, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "llm summary of " + title, nil
}

func TestFetchTopics(t *testing.T) {
	srv := newServer(t)
	s := testService(t, srv, testConfig())

	res := s.FetchTopics(context.Background(), "tech", 3)

	assert.False(t, res.IsFallback)
	assert.NotEmpty(t, res.RunID)
	require.Len(t, res.Articles, 3)
	for i, a := range res.Articles {
		assert.NoError(t, a.Validate())
		assert.Equal(t, rss.CategoryTech, a.Category)
		if i > 0 {
			assert.GreaterOrEqual(t, res.Articles[i-1].QualityScore, a.QualityScore)
		}
	}
	// same quality: newest first
	assert.Equal(t, "Robotics startup ships arm", res.Articles[0].Title)
}

func TestFetchTopics_Fallback(t *testing.T) {
	srv := newServer(t)
	s := testService(t, srv, testConfig())

	res := s.FetchTopics(context.Background(), "ai", 3)

	assert.True(t, res.IsFallback)
	assert.NotEmpty(t, res.Failures)
	assert.Equal(t, article.NetworkFailure, res.Failures[0].Kind)
	require.Len(t, res.Articles, 3)
	for _, a := range res.Articles {
		assert.Equal(t, rss.CategoryAI, a.Category)
	}
}

func TestFetchTopics_ZeroLimit(t *testing.T) {
	srv := newServer(t)
	s := testService(t, srv, testConfig())

	res := s.FetchTopics(context.Background(), "tech", 0)
	assert.Empty(t, res.Articles)
}

func TestFetchTopics_FullTextAndSummaries(t *testing.T) {
	srv := newServer(t)
	cfg := testConfig()
	cfg.Scraper.MaxArticles = 1
	cfg.Scraper.MinContent = 50
	cfg.Gemini.MaxArticles = 2
	sum := &fakeSummarizer{}
	s := testService(t, srv, cfg, WithSummarizer(sum))

	res := s.FetchTopics(context.Background(), "tech", 4)
	require.Len(t, res.Articles, 4)

	extracted := 0
	for _, a := range res.Articles {
		require.NotEmpty(t, a.Content)
		if a.Content != a.Description {
			extracted++
			assert.Contains(t, a.Content, "second paragraph")
		}
	}
	assert.Equal(t, 1, extracted)

	assert.Equal(t, 2, sum.calls)
	assert.Equal(t, "llm summary of "+res.Articles[0].Title, res.Articles[0].Summary)
	assert.Equal(t, "llm summary of "+res.Articles[1].Title, res.Articles[1].Summary)
	assert.NotContains(t, res.Articles[2].Summary, "llm summary")
}

func TestFetchTopics_SummaryFailureKeepsExtractive(t *testing.T) {
	srv := newServer(t)
	cfg := testConfig()
	cfg.Gemini.MaxArticles = 1
	sum := &fakeSummarizer{err: errors.New("quota exceeded")}
	s := testService(t, srv, cfg, WithSummarizer(sum))

	res := s.FetchTopics(context.Background(), "tech", 1)
	require.Len(t, res.Articles, 1)
	assert.Equal(t, 1, sum.calls)
	assert.NotEmpty(t, res.Articles[0].Summary)
	assert.NotContains(t, res.Articles[0].Summary, "llm summary")
}

func TestFetchSiteTopics_Sustainability(t *testing.T) {
	srv := newServer(t)
	s := testService(t, srv, testConfig())

	res := s.FetchSiteTopics(context.Background(), "A sustainable living blog about zero waste homes", 3)

	assert.False(t, res.IsFallback)
	require.Len(t, res.Articles, 3)
	assert.InDelta(t, 0.9, res.Articles[0].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.9, res.Articles[1].RelevanceScore, 1e-9)
	// backfilled from general
	assert.InDelta(t, 0.1, res.Articles[2].RelevanceScore, 1e-9)
	assert.Equal(t, rss.CategoryGeneral, res.Articles[2].Category)

	sources := res.Sources()
	require.Len(t, sources, 3)
	assert.Equal(t, res.Articles[0].Title, sources[0].Title)
}

func TestRelevantSources(t *testing.T) {
	srv := newServer(t)
	s := testService(t, srv, testConfig())
	desc := "A sustainable living blog about zero waste homes"

	res := s.RelevantSources(context.Background(), "Solar roofs", desc)
	require.NotEmpty(t, res.Articles)
	assert.Equal(t, "Solar panels on every roof", res.Articles[0].Title)
	for _, a := range res.Articles {
		text := strings.ToLower(a.Title + " " + a.Description)
		assert.True(t, strings.Contains(text, "solar") || strings.Contains(text, "roofs"), a.Title)
	}

	none := s.RelevantSources(context.Background(), "quantum", desc)
	assert.Len(t, none.Articles, 3)
}

func TestArticleSummary(t *testing.T) {
	srv := newServer(t)
	s := testService(t, srv, testConfig())

	a, err := s.ArticleSummary(context.Background(), srv.URL+"/page/x")
	require.NoError(t, err)
	assert.Equal(t, "Full story", a.Title)
	assert.Contains(t, a.Content, "first paragraph")
	assert.Greater(t, a.WordCount, 30)
	assert.NotEmpty(t, a.Summary)
	assert.False(t, a.Degraded)

	_, err = s.ArticleSummary(context.Background(), srv.URL+"/broken")
	assert.Error(t, err)
}

func TestOriginalityOperations(t *testing.T) {
	s := New(testConfig())
	defer s.Close()

	sources := []article.Source{{
		Title:     "Chipmakers expand capacity",
		URL:       "https://techcrunch.com/chips",
		Source:    "TechCrunch",
		Content:   "Chipmakers announced new fabrication plants across three continents this week.",
		Published: time.Now().UTC().Format(time.RFC3339),
	}}

	report := s.AnalyzePlagiarism(sources[0].Content, sources)
	assert.False(t, report.IsOriginal)
	assert.Greater(t, report.SimilarityScore, 0.8)

	quality := s.ValidateSources(sources)
	assert.Equal(t, 1, quality.CredibleSources)
	assert.Equal(t, 1, quality.RecentSources)

	block := s.BuildAttribution(sources)
	assert.Contains(t, block, "https://techcrunch.com/chips")
	assert.True(t, strings.HasPrefix(s.EnhanceWithAttribution("body", sources), "body\n\n"))
	assert.Contains(t, s.SourceSummary(sources), "1. Chipmakers expand capacity (TechCrunch)")
}

func TestCredibleDomains_ConfigUnlessCatalogPins(t *testing.T) {
	srv := newServer(t)
	cfg := testConfig()
	cfg.Feeds.CredibleDomains = []string{"example.org"}
	sources := []article.Source{{Title: "Local report", URL: "https://news.example.org/a"}}

	s := testService(t, srv, cfg)
	assert.Equal(t, 1, s.ValidateSources(sources).CredibleSources)

	pinned := New(cfg, WithCatalog(rss.Catalog{CredibleDomains: []string{"reuters.com"}}))
	t.Cleanup(pinned.Close)
	assert.Equal(t, 0, pinned.ValidateSources(sources).CredibleSources)
}

func TestFetchTopics_SpentBudgetSkipsSummaries(t *testing.T) {
	srv := newServer(t)
	cfg := testConfig()
	cfg.Gemini.MaxArticles = 3
	budget := ratelimit.NewRequestBudget("gemini", 1)
	require.NoError(t, budget.Use())
	sum := &fakeSummarizer{}
	s := testService(t, srv, cfg, WithSummarizer(sum), WithBudget(budget))

	res := s.FetchTopics(context.Background(), "tech", 3)
	require.Len(t, res.Articles, 3)
	assert.Equal(t, 0, sum.calls)
	for _, a := range res.Articles {
		assert.NotContains(t, a.Summary, "llm summary")
	}

	stats := s.Stats()
	require.Contains(t, stats, "llm_budget")
	usage := stats["llm_budget"].(map[string]interface{})
	assert.Equal(t, 1, usage["used"])
	assert.Equal(t, 1, usage["limit"])
}
