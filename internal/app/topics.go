package app

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/deusflow/contentcore/internal/article"
	"github.com/deusflow/contentcore/internal/logger"
	"github.com/deusflow/contentcore/internal/metrics"
	"github.com/deusflow/contentcore/internal/news"
	"github.com/deusflow/contentcore/internal/plagiarism"
	"github.com/deusflow/contentcore/internal/relevance"
	"github.com/deusflow/contentcore/internal/rss"
)

const (
	relevantSourcesPool     = 10
	relevantSourcesFallback = 3
)

// TopicsResult is the envelope returned by FetchTopics.
type TopicsResult struct {
	RunID      string             `json:"run_id"`
	Articles   []article.Enriched `json:"articles"`
	IsFallback bool               `json:"is_fallback"`
	Failures   []*article.Failure `json:"failures,omitempty"`
}

// SiteTopicsResult is the envelope returned by FetchSiteTopics.
type SiteTopicsResult struct {
	RunID      string             `json:"run_id"`
	Articles   []article.Ranked   `json:"articles"`
	IsFallback bool               `json:"is_fallback"`
	Failures   []*article.Failure `json:"failures,omitempty"`
}

// Sources returns the articles as a citable source list.
func (r SiteTopicsResult) Sources() []article.Source {
	return article.Sources(r.Articles)
}

// FetchTopics returns up to limit enriched, de-duplicated articles of a
// category, best quality and newest first. Unknown categories map to
// general.
func (s *Service) FetchTopics(ctx context.Context, category string, limit int) TopicsResult {
	runID := uuid.NewString()
	log := logger.WithRun(runID)
	start := time.Now()
	category = rss.NormalizeCategory(category)
	log.Info("fetching topics", "category", category, "limit", limit)

	res := s.fetcher.FetchCategory(ctx, category, limit)
	articles := news.Deduplicate(s.enricher.EnrichAll(res.Articles))
	sortByQuality(articles)
	articles = capEnriched(articles, limit)

	if !res.IsFallback {
		if s.extractFullText(ctx, log, articles) > 0 {
			sortByQuality(articles)
		}
		s.summarize(ctx, log, articles)
	}

	s.finishRun(log, start, len(articles), res.IsFallback)
	return TopicsResult{
		RunID:      runID,
		Articles:   articles,
		IsFallback: res.IsFallback,
		Failures:   res.Failures,
	}
}

// FetchSiteTopics returns up to limit articles ranked against a free-text
// site description. Articles above the description's relevance threshold
// come first; the best of the rest fill any gap.
func (s *Service) FetchSiteTopics(ctx context.Context, description string, limit int) SiteTopicsResult {
	runID := uuid.NewString()
	log := logger.WithRun(runID)
	start := time.Now()

	profile := relevance.NewProfile(description)
	categories := profile.Categories()
	log.Info("fetching site topics", "categories", categories, "limit", limit)

	res := s.fetcher.FetchCategories(ctx, categories, s.cfg.Feeds.EndpointsPerCategory, limit)
	unique := news.Deduplicate(s.enricher.EnrichAll(res.Articles))
	ranked := relevance.Filter(relevance.Rank(unique, description), profile, s.thresholds, limit)

	if !res.IsFallback {
		top := make([]article.Enriched, len(ranked))
		for i, r := range ranked {
			top[i] = r.Enriched
		}
		if s.extractFullText(ctx, log, top) > 0 {
			for i := range ranked {
				ranked[i].Enriched = top[i]
				ranked[i].RelevanceScore = profile.Score(top[i])
			}
		}
		s.summarize(ctx, log, top)
		for i := range ranked {
			ranked[i].Summary = top[i].Summary
		}
	}

	s.finishRun(log, start, len(ranked), res.IsFallback)
	return SiteTopicsResult{
		RunID:      runID,
		Articles:   ranked,
		IsFallback: res.IsFallback,
		Failures:   res.Failures,
	}
}

// RelevantSources picks site topics that mention the topic or any of its
// words. When none do, the first few site topics are returned instead.
func (s *Service) RelevantSources(ctx context.Context, topic, description string) SiteTopicsResult {
	res := s.FetchSiteTopics(ctx, description, relevantSourcesPool)

	topic = strings.ToLower(strings.TrimSpace(topic))
	words := strings.Fields(topic)

	var matched []article.Ranked
	for _, a := range res.Articles {
		title := strings.ToLower(a.Title)
		desc := strings.ToLower(a.Description)
		if topic != "" && (strings.Contains(title, topic) || strings.Contains(desc, topic)) {
			matched = append(matched, a)
			continue
		}
		for _, w := range words {
			if strings.Contains(title, w) || strings.Contains(desc, w) {
				matched = append(matched, a)
				break
			}
		}
	}

	if len(matched) == 0 {
		n := min(relevantSourcesFallback, len(res.Articles))
		matched = append([]article.Ranked{}, res.Articles[:n]...)
	}
	res.Articles = matched
	return res
}

// ArticleSummary extracts the page at url and enriches its full text.
func (s *Service) ArticleSummary(ctx context.Context, pageURL string) (*article.Enriched, error) {
	page, err := s.extractor.Extract(ctx, pageURL)
	if err != nil {
		return nil, eris.Wrapf(err, "extract %s", pageURL)
	}

	title := page.Title
	if title == "" {
		title = pageURL
	}
	raw := article.Raw{
		Title:       title,
		Description: news.Truncate(page.Content, 200),
		URL:         pageURL,
		Source:      news.Host(pageURL),
		Category:    rss.CategoryGeneral,
		Content:     page.Content,
	}

	enriched := s.enricher.Enrich(raw)
	items := []article.Enriched{enriched}
	s.summarize(ctx, logger.Logger, items)
	return &items[0], nil
}

// extractFullText replaces the teaser of the first Scraper.MaxArticles
// articles with the extracted page text and re-enriches them. It returns
// how many articles changed.
func (s *Service) extractFullText(ctx context.Context, log *slog.Logger, articles []article.Enriched) int {
	n := min(s.cfg.Scraper.MaxArticles, len(articles))
	if n <= 0 || s.extractor == nil {
		return 0
	}

	urls := make([]string, 0, n)
	for _, a := range articles[:n] {
		if a.URL != "" {
			urls = append(urls, a.URL)
		}
	}
	pages := s.extractor.ExtractMany(ctx, urls, n, s.cfg.Scraper.MinContent)

	changed := 0
	for i := range articles[:n] {
		page, ok := pages[articles[i].URL]
		if !ok {
			continue
		}
		raw := articles[i].Raw
		raw.Content = page.Content
		articles[i] = s.enricher.Enrich(raw)
		changed++
	}
	log.Info("full text extracted", "requested", n, "extracted", changed)
	return changed
}

// summarize swaps in an LLM summary for the first Gemini.MaxArticles
// articles. Failures keep the extractive summary.
func (s *Service) summarize(ctx context.Context, log *slog.Logger, articles []article.Enriched) {
	if s.summarizer == nil {
		return
	}
	n := min(s.cfg.Gemini.MaxArticles, len(articles))
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			return
		}
		if s.budget != nil && !s.budget.CanUse() {
			log.Info("llm request budget spent, keeping extractive summaries", "remaining", n-i)
			return
		}
		a := &articles[i]
		summary, err := s.summarizer.Summarize(ctx, a.Title, a.Body())
		if err != nil {
			log.Warn("llm summary failed, keeping extractive summary", "title", a.Title, "error", err)
			continue
		}
		a.Summary = summary
		metrics.Global.IncrementSummariesGenerated()
	}
}

func (s *Service) finishRun(log *slog.Logger, start time.Time, count int, fallback bool) {
	elapsed := time.Since(start)
	metrics.Global.RecordProcessingTime(elapsed)
	if fallback {
		metrics.Global.SetError("no feed endpoint succeeded")
	} else {
		metrics.Global.SetLastRun()
	}
	log.Info("pipeline finished", "articles", count, "fallback", fallback, "duration", elapsed)
}

// sortByQuality orders by quality, then publication time, both descending.
func sortByQuality(articles []article.Enriched) {
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].QualityScore != articles[j].QualityScore {
			return articles[i].QualityScore > articles[j].QualityScore
		}
		return newer(articles[i].Published, articles[j].Published)
	})
}

func newer(a, b string) bool {
	ta, okA := plagiarism.ParsePublished(a)
	tb, okB := plagiarism.ParsePublished(b)
	switch {
	case okA && okB:
		return ta.After(tb)
	case okA != okB:
		return okA
	default:
		return a > b
	}
}

func capEnriched(articles []article.Enriched, limit int) []article.Enriched {
	if limit <= 0 {
		return []article.Enriched{}
	}
	if len(articles) > limit {
		return articles[:limit]
	}
	return articles
}
