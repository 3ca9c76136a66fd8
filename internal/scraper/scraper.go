// Package scraper extracts the full text of an article page. Feeds only
// carry teasers; enrichment and plagiarism checks work better on the body.
package scraper

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/deusflow/contentcore/internal/logger"
)

// ArticleContent is the extracted page.
type ArticleContent struct {
	Title   string
	Content string
	URL     string
}

// Extractor downloads pages and pulls out title and body text.
type Extractor struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	maxLength int
	log       *slog.Logger
}

// Options tune an Extractor.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Pause     time.Duration // between page downloads
	MaxLength int           // characters kept, whole paragraphs only
}

func NewExtractor(opts Options) *Extractor {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Pause <= 0 {
		opts.Pause = 500 * time.Millisecond
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = 8000
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; contentcore/1.0)"
	}
	return &Extractor{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		limiter:   rate.NewLimiter(rate.Every(opts.Pause), 1),
		maxLength: opts.MaxLength,
		log:       logger.Logger,
	}
}

// Extract gets the title and main text of the page at pageURL.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*ArticleContent, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "waiting to fetch page")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "build request for %s", pageURL)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "load page %s", pageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("HTTP error %d for %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "parse page %s", pageURL)
	}

	content := cleanContent(extractContentBySource(doc, pageURL), e.maxLength)
	if content == "" {
		return nil, eris.Errorf("no article text found at %s", pageURL)
	}

	return &ArticleContent{
		Title:   extractTitle(doc),
		Content: content,
		URL:     pageURL,
	}, nil
}

// ExtractMany extracts up to max pages one after another, keeping those
// with more than minContent characters. Failures are logged and skipped.
func (e *Extractor) ExtractMany(ctx context.Context, urls []string, max, minContent int) map[string]*ArticleContent {
	result := make(map[string]*ArticleContent)

	for i, u := range urls {
		if i >= max || ctx.Err() != nil {
			break
		}

		e.log.Debug("extracting article", "n", i+1, "of", len(urls), "url", u)
		page, err := e.Extract(ctx, u)
		if err != nil {
			e.log.Warn("article extraction failed", "url", u, "error", err)
			continue
		}
		if len(page.Content) <= minContent {
			e.log.Debug("article text too short", "url", u, "chars", len(page.Content))
			continue
		}
		result[u] = page
	}
	return result
}

// siteSelectors lists paragraph selectors per publisher, tried in order.
var siteSelectors = map[string][]string{
	"techcrunch.com":  {".article-content p", ".entry-content p", "article p"},
	"wired.com":       {".body__inner-container p", ".article__body p", "article p"},
	"arstechnica.com": {".article-content p", ".post-content p", "article p"},
	"theverge.com":    {".duet--article--article-body-component p", ".c-entry-content p", "article p"},
	"venturebeat.com": {".article-content p", "#content p", "article p"},
}

var genericSelectors = []string{
	"article p",
	".article p",
	".content p",
	".post-content p",
	".entry-content p",
	"main p",
	"#content p",
	".text p",
	"p",
}

func extractContentBySource(doc *goquery.Document, pageURL string) string {
	host := ""
	if u, err := url.Parse(pageURL); err == nil {
		host = strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	}
	for domain, selectors := range siteSelectors {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			if text := firstMatching(doc, selectors, 10, 1); text != "" {
				return text
			}
			break
		}
	}
	return firstMatching(doc, genericSelectors, 20, 3)
}

// firstMatching collects paragraphs longer than minLen from each selector
// in turn until at least enough were found.
func firstMatching(doc *goquery.Document, selectors []string, minLen, enough int) string {
	var paragraphs []string
	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > minLen {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= enough {
			break
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

func extractTitle(doc *goquery.Document) string {
	selectors := []string{
		"h1",
		"title",
		".article-title",
		".headline",
		".entry-title",
	}

	for _, selector := range selectors {
		title := strings.TrimSpace(doc.Find(selector).First().Text())
		if title != "" {
			return title
		}
	}
	return ""
}

var junkIndicators = []string{
	"cookie", "subscribe", "newsletter", "advertisement", "sign up",
	"read more", "share this", "all rights reserved", "privacy policy",
}

// cleanContent drops boilerplate lines, merges broken lines into
// paragraphs and keeps whole paragraphs up to maxLength characters.
func cleanContent(content string, maxLength int) string {
	if content == "" {
		return ""
	}

	var paragraphs []string
	var current strings.Builder
	flush := func() {
		p := strings.Join(strings.Fields(current.String()), " ")
		if len(p) > 30 {
			paragraphs = append(paragraphs, p)
		}
		current.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 8 {
			flush()
			continue
		}

		lower := strings.ToLower(line)
		isJunk := false
		for _, indicator := range junkIndicators {
			if strings.Contains(lower, indicator) {
				isJunk = true
				break
			}
		}
		if isJunk {
			continue
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(line)
		if strings.HasSuffix(line, ".") || strings.HasSuffix(line, "!") || strings.HasSuffix(line, "?") {
			flush()
		}
	}
	flush()

	var kept []string
	total := 0
	for _, p := range paragraphs {
		if total+len(p) > maxLength && len(kept) > 0 {
			break
		}
		kept = append(kept, p)
		total += len(p) + 2
	}
	return strings.Join(kept, "\n\n")
}
