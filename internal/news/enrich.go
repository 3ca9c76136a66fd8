// Package news turns fetched feed entries into analysed articles and
// collapses duplicates.
package news

import (
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/deusflow/contentcore/internal/article"
	"github.com/deusflow/contentcore/internal/logger"
	"github.com/deusflow/contentcore/internal/metrics"
)

const (
	maxKeywords    = 10
	maxEntities    = 10
	wordsPerMinute = 200
)

var (
	positiveWords = []string{"good", "great", "excellent", "amazing", "wonderful", "positive", "success", "growth", "innovation"}
	negativeWords = []string{"bad", "terrible", "awful", "negative", "failure", "problem", "issue", "concern", "risk"}

	entityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:Inc|Corp|LLC|Ltd|Company|Technologies|Systems)\b`),
		regexp.MustCompile(`\b[A-Z]{2,}\b`),
	}
)

// Enricher derives keywords, sentiment, topics, entities and a quality
// score for fetched articles. It holds no mutable state and is safe for
// concurrent use.
type Enricher struct {
	credible []string
	log      *slog.Logger
}

// NewEnricher builds an Enricher that treats the given domains (and their
// subdomains) as credible.
func NewEnricher(credibleDomains []string, log *slog.Logger) *Enricher {
	if log == nil {
		log = logger.Logger
	}
	domains := make([]string, 0, len(credibleDomains))
	for _, d := range credibleDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains = append(domains, d)
		}
	}
	return &Enricher{credible: domains, log: log}
}

// EnrichAll enriches every article, in order. Failed articles come back
// degraded rather than being dropped.
func (e *Enricher) EnrichAll(raws []article.Raw) []article.Enriched {
	out := make([]article.Enriched, 0, len(raws))
	degraded := 0
	for _, r := range raws {
		en := e.Enrich(r)
		if en.Degraded {
			degraded++
		}
		out = append(out, en)
	}
	metrics.Global.AddArticlesEnriched(len(out))
	metrics.Global.AddEnrichmentsDegraded(degraded)
	return out
}

// Enrich analyses one article. It never fails: on any error the result is
// a degraded record built from the description alone.
func (e *Enricher) Enrich(raw article.Raw) article.Enriched {
	en, err := e.enrich(raw)
	if err != nil {
		f := article.NewFailure(article.EnrichmentFailure, raw.Title, err)
		e.log.Warn("enrichment degraded", "title", raw.Title, "url", raw.URL, "error", f)
		return Degraded(raw)
	}
	return en
}

func (e *Enricher) enrich(raw article.Raw) (en article.Enriched, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("panic during enrichment: %v", r)
		}
	}()

	if err := raw.Validate(); err != nil {
		return article.Enriched{}, eris.Wrap(err, "invalid article")
	}

	content := raw.Body()
	text := raw.Title + " " + content
	wc := len(strings.Fields(content))
	topics := DetectTopics(text)

	en = article.Enriched{
		Raw:          raw,
		Keywords:     Keywords(text, maxKeywords),
		Sentiment:    Sentiment(text),
		QualityScore: e.Quality(raw, wc),
		WordCount:    wc,
		ReadingTime:  ReadingTime(wc),
		Topics:       topics,
		Entities:     Entities(content),
		HashID:       HashID(raw.Title, raw.URL),
	}
	en.Content = content
	en.Summary = Summarize(content)

	if err := en.Validate(); err != nil {
		return article.Enriched{}, eris.Wrap(err, "enriched record out of bounds")
	}
	return en, nil
}

// Degraded is the fallback record for an article whose enrichment failed:
// description as content, neutral sentiment, quality 0.5, no derived
// lists and a one minute reading time.
func Degraded(raw article.Raw) article.Enriched {
	en := article.Enriched{
		Raw:          raw,
		Summary:      raw.Description,
		Keywords:     []string{},
		Sentiment:    article.SentimentNeutral,
		QualityScore: 0.5,
		WordCount:    len(strings.Fields(raw.Description)),
		ReadingTime:  1,
		Topics:       []string{},
		Entities:     []string{},
		HashID:       HashID(raw.Title, raw.URL),
		Degraded:     true,
	}
	en.Content = raw.Description
	return en
}

// Sentiment compares the distinct positive and negative lexicon words in
// text. Ties are neutral.
func Sentiment(text string) article.Sentiment {
	seen := map[string]struct{}{}
	for _, w := range Words(text) {
		seen[w] = struct{}{}
	}
	pos, neg := 0, 0
	for _, w := range positiveWords {
		if _, ok := seen[w]; ok {
			pos++
		}
	}
	for _, w := range negativeWords {
		if _, ok := seen[w]; ok {
			neg++
		}
	}
	switch {
	case pos > neg:
		return article.SentimentPositive
	case neg > pos:
		return article.SentimentNegative
	default:
		return article.SentimentNeutral
	}
}

// Quality scores an article from title length, body length, source
// credibility and metadata completeness.
func (e *Enricher) Quality(raw article.Raw, wordCount int) float64 {
	score := 0.0

	if n := len([]rune(raw.Title)); n > 10 && n < 100 {
		score += 0.2
	}
	switch {
	case wordCount > 2000:
		score += 0.2
	case wordCount >= 100:
		score += 0.3
	}
	if e.IsCredible(raw.Source) || e.IsCredible(raw.URL) {
		score += 0.2
	}
	if raw.URL != "" && raw.Published != "" {
		score += 0.1
	}
	return article.Clamp(score)
}

// IsCredible reports whether a domain or URL belongs to the allowlist.
func (e *Enricher) IsCredible(domainOrURL string) bool {
	return MatchesDomain(domainOrURL, e.credible)
}

// MatchesDomain reports whether a bare domain or URL host equals one of
// domains or is a subdomain of it.
func MatchesDomain(domainOrURL string, domains []string) bool {
	host := Host(domainOrURL)
	if host == "" {
		return false
	}
	for _, d := range domains {
		d = strings.ToLower(d)
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Host extracts a lowercase host without "www." from a URL or bare domain.
func Host(domainOrURL string) string {
	s := strings.ToLower(strings.TrimSpace(domainOrURL))
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		s = u.Hostname()
	}
	return strings.TrimPrefix(s, "www.")
}

// Entities extracts company names and acronyms, first-seen order, at most
// ten.
func Entities(content string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, re := range entityPatterns {
		for _, m := range re.FindAllString(content, -1) {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
			if len(out) == maxEntities {
				return out
			}
		}
	}
	return out
}

// ReadingTime is whole minutes at 200 words per minute, at least one.
func ReadingTime(wordCount int) int {
	if m := wordCount / wordsPerMinute; m > 1 {
		return m
	}
	return 1
}

// HashID fingerprints an article by title and url. Only the title is
// case-folded; URL paths are case-sensitive.
func HashID(title, link string) string {
	h := sha1.New()
	h.Write([]byte(strings.ToLower(title) + link))
	return hex.EncodeToString(h.Sum(nil))
}
