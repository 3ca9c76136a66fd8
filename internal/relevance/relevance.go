// Package relevance scores articles against a free-text site description
// and picks the feed categories worth pulling for it.
package relevance

import (
	"sort"
	"strings"

	"github.com/deusflow/contentcore/internal/article"
	"github.com/deusflow/contentcore/internal/news"
	"github.com/deusflow/contentcore/internal/rss"
)

// Fixed scores used by the category boosts.
const (
	SustainabilityMatch    = 0.9
	SustainabilityMismatch = 0.1
	CategoryBoost          = 0.8
)

// Signal weights.
const (
	keywordWeight = 2.0
	tokenWeight   = 1.0
	topicWeight   = 1.0
	boostWeight   = 1.0
)

// Description vocabularies that select feed categories and boosts.
var (
	// matched as whole words
	sustainabilityTerms = []string{
		"sustainability", "sustainable", "green living", "green", "eco-friendly", "eco",
		"environment", "environmental", "climate", "zero waste", "renewable", "renewables",
	}
	aiTerms       = []string{"ai", "artificial intelligence", "machine learning", "deep learning", "llm"}
	businessTerms = []string{"business", "startup", "entrepreneur", "funding", "investment"}
)

// Thresholds are the minimum relevance an article needs to pass Filter.
type Thresholds struct {
	Sustainability float64
	Default        float64
}

// DefaultThresholds: stricter for sustainability sites.
var DefaultThresholds = Thresholds{Sustainability: 0.3, Default: 0.1}

// Profile is a site description prepared for scoring.
type Profile struct {
	Description    string
	Keywords       []string
	Words          map[string]struct{}
	Topics         []string
	Sustainability bool
	AI             bool
	Business       bool
}

// NewProfile analyses a site description once so it can score many
// articles.
func NewProfile(description string) Profile {
	p := Profile{
		Description:    description,
		Keywords:       news.Keywords(description, 10),
		Words:          map[string]struct{}{},
		Topics:         news.DetectTopics(description),
		Sustainability: news.ContainsAnyWord(description, sustainabilityTerms),
		AI:             news.ContainsAny(description, aiTerms),
		Business:       news.ContainsAny(description, businessTerms),
	}
	for _, w := range news.Words(description) {
		if !news.IsStopWord(w) {
			p.Words[w] = struct{}{}
		}
	}
	return p
}

// Categories returns the feed categories to pull for the description: its
// bucket first, then general.
func (p Profile) Categories() []string {
	var primary string
	switch {
	case p.Sustainability:
		primary = rss.CategorySustainability
	case p.AI:
		primary = rss.CategoryAI
	case p.Business:
		primary = rss.CategoryBusiness
	default:
		return []string{rss.CategoryGeneral}
	}
	return []string{primary, rss.CategoryGeneral}
}

// Threshold is the minimum relevance for this description.
func (p Profile) Threshold(t Thresholds) float64 {
	if p.Sustainability {
		return t.Sustainability
	}
	return t.Default
}

// Score rates one article against a site description.
func Score(a article.Enriched, description string) float64 {
	return NewProfile(description).Score(a)
}

// Score averages the signals that apply to this description. A
// sustainability description overrides them with a fixed match or
// mismatch score.
func (p Profile) Score(a article.Enriched) float64 {
	text := strings.ToLower(a.Title + " " + a.Content + " " + a.Description)

	if p.Sustainability {
		if news.ContainsAny(text, news.SustainabilityKeywords) {
			return SustainabilityMatch
		}
		return SustainabilityMismatch
	}

	var sum, weight float64
	add := func(v, w float64) {
		sum += v * w
		weight += w
	}

	articleWords := map[string]struct{}{}
	for _, w := range news.Words(text) {
		articleWords[w] = struct{}{}
	}

	if len(p.Keywords) > 0 {
		hit := 0
		for _, k := range p.Keywords {
			if _, ok := articleWords[k]; ok {
				hit++
			}
		}
		add(float64(hit)/float64(len(p.Keywords)), keywordWeight)
	}

	if len(p.Words) > 0 {
		common := 0
		for w := range p.Words {
			if _, ok := articleWords[w]; ok {
				common++
			}
		}
		add(float64(common)/float64(len(p.Words)), tokenWeight)
	}

	if len(p.Topics) > 0 {
		add(overlap(a.Topics, p.Topics), topicWeight)
	}

	if p.AI && hasTopic(a.Topics, news.TopicAI) {
		add(CategoryBoost, boostWeight)
	}
	if p.Business && hasTopic(a.Topics, news.TopicBusiness) {
		add(CategoryBoost, boostWeight)
	}

	if weight == 0 {
		return 0
	}
	return article.Clamp(sum / weight)
}

// Rank scores copies of the articles and orders them by relevance, then
// quality. The input slice is not modified.
func Rank(articles []article.Enriched, description string) []article.Ranked {
	p := NewProfile(description)
	out := make([]article.Ranked, 0, len(articles))
	for _, a := range articles {
		out = append(out, article.Ranked{Enriched: a, RelevanceScore: p.Score(a)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RelevanceScore != out[j].RelevanceScore {
			return out[i].RelevanceScore > out[j].RelevanceScore
		}
		return out[i].QualityScore > out[j].QualityScore
	})
	return out
}

// Filter keeps ranked articles above the description's threshold, in
// order. When fewer than limit pass, the best of the rest fill up to
// limit.
func Filter(ranked []article.Ranked, p Profile, t Thresholds, limit int) []article.Ranked {
	if limit <= 0 {
		return []article.Ranked{}
	}
	min := p.Threshold(t)
	passed := make([]article.Ranked, 0, limit)
	used := make([]bool, len(ranked))
	for i, r := range ranked {
		if len(passed) == limit {
			break
		}
		if r.RelevanceScore > min {
			passed = append(passed, r)
			used[i] = true
		}
	}
	for i, r := range ranked {
		if len(passed) >= limit {
			break
		}
		if !used[i] {
			passed = append(passed, r)
		}
	}
	return passed
}

func overlap(have, want []string) float64 {
	if len(want) == 0 {
		return 0
	}
	n := 0
	for _, w := range want {
		if hasTopic(have, w) {
			n++
		}
	}
	return float64(n) / float64(len(want))
}

func hasTopic(topics []string, tag string) bool {
	for _, t := range topics {
		if t == tag {
			return true
		}
	}
	return false
}
