// Package article holds the records that flow through the ingestion pipeline:
// Raw (as fetched), Enriched (analysed), Ranked (scored against one site
// description) and Source (the view handed to the originality checks).
package article

import (
	"github.com/go-playground/validator/v10"
)

// Sentiment of an article body.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Raw is a normalised feed entry. Content is empty as fetched; it holds the
// extracted page text after a full-text pass, and enrichment copies Body
// into it.
type Raw struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Category    string `json:"category" validate:"required"`
	Published   string `json:"published"`
	Content     string `json:"content,omitempty"`
}

// Enriched is a Raw article plus the derived analysis.
type Enriched struct {
	Raw

	Summary      string    `json:"summary"`
	Keywords     []string  `json:"keywords"`
	Sentiment    Sentiment `json:"sentiment" validate:"oneof=positive negative neutral"`
	QualityScore float64   `json:"quality_score" validate:"gte=0,lte=1"`
	WordCount    int       `json:"word_count" validate:"gte=0"`
	ReadingTime  int       `json:"reading_time" validate:"gte=1"`
	Topics       []string  `json:"topics"`
	Entities     []string  `json:"entities" validate:"max=10"`
	HashID       string    `json:"hash_id"`

	// Degraded is set when enrichment failed and the record only carries
	// the description with neutral defaults.
	Degraded bool `json:"degraded,omitempty"`
}

// Ranked is an Enriched article scored against one site description.
type Ranked struct {
	Enriched

	RelevanceScore float64 `json:"relevance_score" validate:"gte=0,lte=1"`
}

// Source is the subset of an article a generator cites and the
// originality checks compare against.
type Source struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	Published   string `json:"published,omitempty"`
}

// Text returns the body used for comparisons: content, else description.
func (s Source) Text() string {
	if s.Content != "" {
		return s.Content
	}
	return s.Description
}

// Body returns the text enrichment works on: content, else description.
func (r Raw) Body() string {
	if r.Content != "" {
		return r.Content
	}
	return r.Description
}

// AsSource converts an enriched article into a citable source.
func (e Enriched) AsSource() Source {
	return Source{
		Title:       e.Title,
		URL:         e.URL,
		Source:      e.Source,
		Description: e.Description,
		Content:     e.Content,
		Published:   e.Published,
	}
}

// Sources converts a ranked list into the source list handed to a generator.
func Sources(ranked []Ranked) []Source {
	out := make([]Source, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.AsSource())
	}
	return out
}

var validate = validator.New()

// Validate checks the required fields of a fetched record.
func (r Raw) Validate() error {
	return validate.Struct(r)
}

// Validate checks score bounds and enumerations of an enriched record.
func (e Enriched) Validate() error {
	return validate.Struct(e)
}

// Validate checks a ranked record, including its relevance bounds.
func (r Ranked) Validate() error {
	return validate.Struct(r)
}

// Clamp bounds a score to [0,1].
func Clamp(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
