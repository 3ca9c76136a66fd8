package plagiarism

import (
	"strings"
	"time"

	"github.com/deusflow/contentcore/internal/article"
	"github.com/deusflow/contentcore/internal/news"
)

// Source quality recommendation texts.
const (
	RecNoSources    = "No sources provided - manual review required"
	RecMoreCredible = "Consider adding more credible sources"
	RecMoreRecent   = "Consider adding more recent sources"
	RecMoreDomains  = "Consider adding sources from different domains"
)

// DefaultRecencyWindow is how old a source may be and still count as recent.
const DefaultRecencyWindow = 30 * 24 * time.Hour

var publishedLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
}

// QualityReport rates a source list.
type QualityReport struct {
	OverallQuality  float64  `json:"overall_quality"`
	CredibleSources int      `json:"credible_sources"`
	RecentSources   int      `json:"recent_sources"`
	DiverseSources  int      `json:"diverse_sources"`
	Recommendations []string `json:"recommendations"`
}

// Validator scores sources on credibility, recency and domain diversity.
type Validator struct {
	Credible []string
	Window   time.Duration
	Now      func() time.Time
}

func NewValidator(credible []string, window time.Duration) *Validator {
	if window <= 0 {
		window = DefaultRecencyWindow
	}
	return &Validator{Credible: credible, Window: window, Now: time.Now}
}

// Validate scores sources as 0.4 credibility + 0.3 recency + 0.3
// diversity, where diversity saturates at three domains.
func (v *Validator) Validate(sources []article.Source) QualityReport {
	r := QualityReport{Recommendations: []string{}}
	if len(sources) == 0 {
		r.Recommendations = append(r.Recommendations, RecNoSources)
		return r
	}

	domains := map[string]struct{}{}
	for _, s := range sources {
		domain := news.Host(s.URL)
		if domain == "" {
			domain = news.Host(s.Source)
		}
		if domain != "" {
			domains[domain] = struct{}{}
		}
		if news.MatchesDomain(domain, v.Credible) {
			r.CredibleSources++
		}
		if v.IsRecent(s.Published) {
			r.RecentSources++
		}
	}
	r.DiverseSources = len(domains)

	total := float64(len(sources))
	diversity := float64(r.DiverseSources) / 3
	if diversity > 1 {
		diversity = 1
	}
	r.OverallQuality = article.Clamp(
		float64(r.CredibleSources)/total*0.4 +
			float64(r.RecentSources)/total*0.3 +
			diversity*0.3)

	if r.OverallQuality < 0.6 {
		r.Recommendations = append(r.Recommendations, RecMoreCredible)
	}
	if float64(r.RecentSources) < total*0.5 {
		r.Recommendations = append(r.Recommendations, RecMoreRecent)
	}
	if r.DiverseSources < 2 {
		r.Recommendations = append(r.Recommendations, RecMoreDomains)
	}
	return r
}

// IsRecent reports whether published falls inside the recency window.
// Unparsable or empty dates are not recent.
func (v *Validator) IsRecent(published string) bool {
	t, ok := ParsePublished(published)
	if !ok {
		return false
	}
	return t.After(v.Now().Add(-v.Window))
}

// ParsePublished reads the date formats feeds commonly use, falling back
// to a leading YYYY-MM-DD.
func ParsePublished(published string) (time.Time, bool) {
	published = strings.TrimSpace(published)
	if published == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, published); err == nil {
			return t, true
		}
	}
	if len(published) >= 10 {
		if t, err := time.Parse("2006-01-02", published[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
