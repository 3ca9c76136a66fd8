// Package app wires the fetch, enrich, rank and originality components
// into the operations the CLI and MCP server expose.
package app

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/deusflow/contentcore/internal/config"
	"github.com/deusflow/contentcore/internal/gemini"
	"github.com/deusflow/contentcore/internal/logger"
	"github.com/deusflow/contentcore/internal/metrics"
	"github.com/deusflow/contentcore/internal/news"
	"github.com/deusflow/contentcore/internal/plagiarism"
	"github.com/deusflow/contentcore/internal/ratelimit"
	"github.com/deusflow/contentcore/internal/relevance"
	"github.com/deusflow/contentcore/internal/retry"
	"github.com/deusflow/contentcore/internal/rss"
	"github.com/deusflow/contentcore/internal/scraper"
)

// Service runs the content pipeline. It is safe for concurrent use.
type Service struct {
	cfg        config.Config
	fetcher    *rss.Fetcher
	enricher   *news.Enricher
	analyzer   *plagiarism.Analyzer
	validator  *plagiarism.Validator
	extractor  *scraper.Extractor
	summarizer gemini.Summarizer
	budget     *ratelimit.RequestBudget
	thresholds relevance.Thresholds
	closers    []func()
}

type Option func(*Service)

// WithCatalog replaces the catalog loaded from cfg.Feeds.CatalogPath.
func WithCatalog(c rss.Catalog) Option {
	return func(s *Service) {
		s.fetcher.Close()
		s.fetcher = rss.NewFetcher(c, fetcherOptions(s.cfg))
		if len(c.CredibleDomains) > 0 {
			s.setCredible(c.CredibleDomains)
		}
	}
}

// WithSummarizer enables LLM summaries of the top articles.
func WithSummarizer(sum gemini.Summarizer) Option {
	return func(s *Service) { s.summarizer = sum }
}

// WithBudget stops LLM summaries for the rest of the period once the
// budget is spent.
func WithBudget(b *ratelimit.RequestBudget) Option {
	return func(s *Service) { s.budget = b }
}

// New builds a Service from cfg without an LLM summariser.
func New(cfg config.Config, opts ...Option) *Service {
	catalog := rss.LoadCatalogOrDefault(cfg.Feeds.CatalogPath)

	extractor := scraper.NewExtractor(scraper.Options{
		Timeout:   cfg.Scraper.Timeout,
		UserAgent: cfg.Feeds.UserAgent,
		Pause:     cfg.Feeds.PoliteDelay,
	})
	thresholds := relevance.Thresholds{
		Sustainability: cfg.Relevance.SustainabilityThreshold,
		Default:        cfg.Relevance.DefaultThreshold,
	}

	s := &Service{
		cfg:        cfg,
		fetcher:    rss.NewFetcher(catalog, fetcherOptions(cfg)),
		analyzer:   plagiarism.NewAnalyzer(cfg.Plagiarism.SimilarityThreshold, logger.Logger),
		extractor:  extractor,
		thresholds: thresholds,
	}

	credible := cfg.Feeds.CredibleDomains
	if len(catalog.CredibleDomains) > 0 {
		credible = catalog.CredibleDomains
	}
	s.setCredible(credible)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig builds a Service and, when an API key is configured, a
// Gemini summariser bounded by the daily request budget.
func NewFromConfig(ctx context.Context, cfg config.Config) (*Service, error) {
	if cfg.Gemini.APIKey == "" {
		logger.Info("gemini api key not set, using extractive summaries only")
		return New(cfg), nil
	}

	budget := ratelimit.NewRequestBudget("gemini", cfg.Gemini.MaxRequests)
	client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, budget)
	if err != nil {
		return nil, eris.Wrap(err, "init gemini summarizer")
	}

	s := New(cfg, WithSummarizer(client), WithBudget(budget))
	s.closers = append(s.closers, client.Close)
	return s, nil
}

// Stats returns the pipeline counters, plus the LLM request budget when
// one is set.
func (s *Service) Stats() map[string]interface{} {
	stats := metrics.Global.GetStats()
	if s.budget != nil {
		stats["llm_budget"] = s.budget.GetStats()
	}
	return stats
}

// Close releases the fetch cache and the LLM client.
func (s *Service) Close() {
	s.fetcher.Close()
	for _, c := range s.closers {
		c()
	}
}

func (s *Service) setCredible(domains []string) {
	s.enricher = news.NewEnricher(domains, logger.Logger)
	s.validator = plagiarism.NewValidator(domains, s.cfg.Plagiarism.RecencyWindow)
}

func fetcherOptions(cfg config.Config) rss.Options {
	return rss.Options{
		RequestTimeout:     cfg.Feeds.RequestTimeout,
		PoliteDelay:        cfg.Feeds.PoliteDelay,
		Concurrency:        cfg.Feeds.Concurrency,
		EntriesPerEndpoint: cfg.Feeds.EntriesPerEndpoint,
		Retry: retry.RetryConfig{
			MaxAttempts: cfg.Feeds.RetryAttempts,
			Delay:       cfg.Feeds.RetryDelay,
			Backoff:     true,
		},
		CacheTTL:  cfg.Feeds.CacheTTL,
		UserAgent: cfg.Feeds.UserAgent,
	}
}
