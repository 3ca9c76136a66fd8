// Package rss fetches and normalises feed entries for a category.
package rss

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/deusflow/contentcore/internal/article"
	"github.com/deusflow/contentcore/internal/cache"
	"github.com/deusflow/contentcore/internal/logger"
	"github.com/deusflow/contentcore/internal/metrics"
	"github.com/deusflow/contentcore/internal/retry"
)

const descriptionLen = 200

// Options tune a Fetcher. Zero values fall back to production defaults.
type Options struct {
	RequestTimeout     time.Duration
	PoliteDelay        time.Duration
	Concurrency        int
	EntriesPerEndpoint int
	Retry              retry.RetryConfig
	CacheTTL           time.Duration
	UserAgent          string
}

func (o Options) withDefaults() Options {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 10 * time.Second
	}
	if o.PoliteDelay <= 0 {
		o.PoliteDelay = 500 * time.Millisecond
	}
	if o.Concurrency < 1 {
		o.Concurrency = 4
	}
	if o.EntriesPerEndpoint < 1 {
		o.EntriesPerEndpoint = 10
	}
	if o.Retry.MaxAttempts < 1 {
		o.Retry = retry.RetryConfig{MaxAttempts: 1}
	}
	if o.UserAgent == "" {
		o.UserAgent = "Mozilla/5.0 (compatible; contentcore/1.0)"
	}
	return o
}

// Result is the outcome of one fetch. IsFallback is set when no endpoint
// produced data and Articles holds placeholder records.
type Result struct {
	Articles   []article.Raw
	IsFallback bool
	Failures   []*article.Failure
}

// Fetcher pulls entries from feed endpoints. Endpoints are fetched
// concurrently; requests to the same host are spaced by PoliteDelay.
type Fetcher struct {
	catalog Catalog
	opts    Options
	client  *http.Client
	cache   *cache.Cache[[]article.Raw]
	log     *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFetcher builds a Fetcher over a feed catalog.
func NewFetcher(catalog Catalog, opts Options) *Fetcher {
	opts = opts.withDefaults()
	f := &Fetcher{
		catalog:  catalog,
		opts:     opts,
		client:   &http.Client{Timeout: opts.RequestTimeout},
		log:      logger.Logger,
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
	if opts.CacheTTL > 0 {
		f.cache = cache.New[[]article.Raw](opts.CacheTTL)
	}
	return f
}

// Close stops the endpoint cache.
func (f *Fetcher) Close() {
	if f.cache != nil {
		f.cache.Close()
	}
}

// FetchCategory fetches every endpoint of a category. limit bounds the
// fallback set served when no endpoint succeeds.
func (f *Fetcher) FetchCategory(ctx context.Context, category string, limit int) Result {
	category = NormalizeCategory(category)
	return f.FetchEndpoints(ctx, f.catalog.Endpoints(category, 0), category, limit)
}

// FetchCategories fetches the first perCategory endpoints of each category.
// The fallback set, if needed, is the first category's.
func (f *Fetcher) FetchCategories(ctx context.Context, categories []string, perCategory, limit int) Result {
	var endpoints []Endpoint
	seen := map[string]struct{}{}
	for _, c := range categories {
		for _, ep := range f.catalog.Endpoints(c, perCategory) {
			if _, dup := seen[ep.URL]; dup {
				continue
			}
			seen[ep.URL] = struct{}{}
			endpoints = append(endpoints, ep)
		}
	}
	fallback := CategoryGeneral
	if len(categories) > 0 {
		fallback = NormalizeCategory(categories[0])
	}
	return f.FetchEndpoints(ctx, endpoints, fallback, limit)
}

// FetchEndpoints fetches the given endpoints. A failing endpoint is
// recorded and skipped. When none succeeds, the mock set for
// fallbackCategory is returned with IsFallback set.
func (f *Fetcher) FetchEndpoints(ctx context.Context, endpoints []Endpoint, fallbackCategory string, limit int) Result {
	var (
		res       Result
		mu        sync.Mutex
		succeeded int
	)
	perEndpoint := make([][]article.Raw, len(endpoints))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)

	for i, ep := range endpoints {
		g.Go(func() error {
			items, skipped, err := f.fetchEndpoint(gctx, ep)

			mu.Lock()
			defer mu.Unlock()
			res.Failures = append(res.Failures, skipped...)
			if err != nil {
				failure := article.NewFailure(article.NetworkFailure, ep.URL, err)
				res.Failures = append(res.Failures, failure)
				f.log.Warn("feed endpoint failed", "endpoint", ep.URL, "error", err)
				metrics.Global.AddEndpointFailures(1)
				return nil
			}
			perEndpoint[i] = items
			succeeded++
			metrics.Global.AddEndpointsFetched(1)
			metrics.Global.AddEntriesSkipped(len(skipped))
			return nil
		})
	}
	_ = g.Wait()

	for _, items := range perEndpoint {
		res.Articles = append(res.Articles, items...)
	}

	if succeeded == 0 {
		res.Articles = f.Fallback(fallbackCategory, limit)
		res.IsFallback = true
		metrics.Global.IncrementFallbacksServed()
		f.log.Warn("no feed endpoint succeeded, serving fallback topics",
			"category", fallbackCategory, "endpoints", len(endpoints), "count", len(res.Articles))
	}
	return res
}

func (f *Fetcher) fetchEndpoint(ctx context.Context, ep Endpoint) ([]article.Raw, []*article.Failure, error) {
	if f.cache != nil {
		if items, ok := f.cache.Get(ep.URL); ok {
			f.log.Debug("feed cache hit", "endpoint", ep.URL, "category", ep.Category)
			return withCategory(items, ep.Category), nil, nil
		}
	}

	var feed *gofeed.Feed
	err := retry.WithRetry(ctx, f.opts.Retry, func(ctx context.Context) error {
		if err := f.limiter(ep.URL).Wait(ctx); err != nil {
			return eris.Wrap(err, "polite delay")
		}
		reqCtx, cancel := context.WithTimeout(ctx, f.opts.RequestTimeout)
		defer cancel()

		parser := gofeed.NewParser()
		parser.Client = f.client
		parser.UserAgent = f.opts.UserAgent
		parsed, err := parser.ParseURLWithContext(ep.URL, reqCtx)
		if err != nil {
			return eris.Wrapf(err, "fetch %s", ep.URL)
		}
		feed = parsed
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	entries := feed.Items
	if len(entries) > f.opts.EntriesPerEndpoint {
		entries = entries[:f.opts.EntriesPerEndpoint]
	}

	items := make([]article.Raw, 0, len(entries))
	var skipped []*article.Failure
	for _, it := range entries {
		raw := toRaw(it, ep.Category)
		if err := raw.Validate(); err != nil {
			skipped = append(skipped, article.NewFailure(article.ParseFailure, ep.URL, eris.Wrap(err, "feed entry")))
			continue
		}
		items = append(items, raw)
	}

	f.log.Info("feed fetched", "endpoint", ep.URL, "entries", len(items), "skipped", len(skipped))
	if f.cache != nil {
		f.cache.Set(ep.URL, items, f.opts.CacheTTL)
	}
	return items, skipped, nil
}

// withCategory copies cached entries and tags them with the category of the
// endpoint being served. One feed URL can sit under several categories.
func withCategory(items []article.Raw, category string) []article.Raw {
	out := make([]article.Raw, len(items))
	for i, it := range items {
		it.Category = category
		out[i] = it
	}
	return out
}

// limiter returns the rate limiter for the endpoint's host.
func (f *Fetcher) limiter(endpoint string) *rate.Limiter {
	host := endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		host = u.Host
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(f.opts.PoliteDelay), 1)
		f.limiters[host] = l
	}
	return l
}

func toRaw(it *gofeed.Item, category string) article.Raw {
	published := it.Published
	if published == "" {
		published = it.Updated
	}
	return article.Raw{
		Title:       strings.TrimSpace(it.Title),
		Description: CleanDescription(it.Description),
		URL:         strings.TrimSpace(it.Link),
		Source:      sourceDomain(it.Link),
		Category:    category,
		Published:   published,
	}
}

// CleanDescription strips markup from a feed description, collapses
// whitespace and cuts it to 200 characters.
func CleanDescription(desc string) string {
	text := desc
	if strings.Contains(desc, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc)); err == nil {
			text = doc.Text()
		}
	}
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > descriptionLen {
		return string(r[:descriptionLen]) + "..."
	}
	return text
}

func sourceDomain(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
