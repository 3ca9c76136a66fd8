// Package plagiarism checks generated content against the sources it was
// written from, rates the sources themselves and renders attribution.
package plagiarism

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/deusflow/contentcore/internal/article"
	"github.com/deusflow/contentcore/internal/logger"
	"github.com/deusflow/contentcore/internal/metrics"
)

// DefaultThreshold is the similarity above which a source counts as copied.
const DefaultThreshold = 0.8

// Recommendation texts.
const (
	RecHighSimilarity     = "High similarity detected - consider rewriting to be more original"
	RecModerateSimilarity = "Moderate similarity detected - review for potential copying"
	RecReviewSections     = "Review sections with high similarity to sources"
	RecOriginal           = "Content appears to be original with proper attribution"
	RecManualReview       = "Error occurred during analysis - manual review recommended"
)

const moderateSimilarity = 0.6

// Reporting verbs that hint at lifted material.
var suspiciousPatterns = []string{
	"according to", "as reported by", "said", "announced", "released", "confirmed", "declared",
}

var suspiciousRes = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(suspiciousPatterns))
	for _, p := range suspiciousPatterns {
		out = append(out, regexp.MustCompile(`\b`+regexp.QuoteMeta(p)+`\b`))
	}
	return out
}()

// SuspiciousSection is a source the content is too similar to.
type SuspiciousSection struct {
	Source     string  `json:"source"`
	SourceName string  `json:"source_name"`
	Similarity float64 `json:"similarity"`
	URL        string  `json:"url"`
}

// Attribution tells whether the content credits one source.
type Attribution struct {
	Source             string   `json:"source"`
	URL                string   `json:"url"`
	TitleMentioned     bool     `json:"title_mentioned"`
	SourceMentioned    bool     `json:"source_mentioned"`
	SuspiciousPatterns []string `json:"suspicious_patterns"`
	NeedsAttribution   bool     `json:"needs_attribution"`
}

// Report is the originality verdict for one piece of content.
type Report struct {
	IsOriginal         bool                `json:"is_original"`
	SimilarityScore    float64             `json:"similarity_score"`
	SuspiciousSections []SuspiciousSection `json:"suspicious_sections"`
	SourceAttribution  []Attribution       `json:"source_attribution"`
	ConfidenceScore    float64             `json:"confidence_score"`
	Recommendations    []string            `json:"recommendations"`

	// Degraded is set when the analysis failed and the report only asks
	// for manual review.
	Degraded bool `json:"degraded,omitempty"`
}

// MissingAttributions counts sources the content does not credit.
func (r Report) MissingAttributions() int {
	n := 0
	for _, a := range r.SourceAttribution {
		if a.NeedsAttribution {
			n++
		}
	}
	return n
}

type Analyzer struct {
	threshold float64
	log       *slog.Logger
}

// NewAnalyzer returns an Analyzer flagging sources above threshold.
// Thresholds outside (0,1] fall back to DefaultThreshold.
func NewAnalyzer(threshold float64, log *slog.Logger) *Analyzer {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if log == nil {
		log = logger.Logger
	}
	return &Analyzer{threshold: threshold, log: log}
}

// Analyze compares content with every source. It never fails; a failed
// analysis yields a degraded report that is not original.
func (a *Analyzer) Analyze(content string, sources []article.Source) Report {
	metrics.Global.IncrementAnalysesRun()

	report, err := a.analyze(content, sources)
	if err != nil {
		f := article.NewFailure(article.AnalysisFailure, "plagiarism", err)
		a.log.Error("plagiarism analysis failed", "sources", len(sources), "error", f)
		metrics.Global.IncrementAnalysesDegraded()
		return degradedReport()
	}
	return report
}

func degradedReport() Report {
	return Report{
		IsOriginal:         false,
		SuspiciousSections: []SuspiciousSection{},
		SourceAttribution:  []Attribution{},
		Recommendations:    []string{RecManualReview},
		Degraded:           true,
	}
}

func (a *Analyzer) analyze(content string, sources []article.Source) (r Report, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = eris.Errorf("panic during analysis: %v", p)
		}
	}()

	r = Report{
		SuspiciousSections: []SuspiciousSection{},
		SourceAttribution:  []Attribution{},
	}

	for _, s := range sources {
		text := s.Text()
		if text == "" {
			continue
		}
		sim := article.Clamp(Similarity(content, text))
		if sim > r.SimilarityScore {
			r.SimilarityScore = sim
		}
		if sim > a.threshold {
			r.SuspiciousSections = append(r.SuspiciousSections, SuspiciousSection{
				Source:     orDefault(s.Title, "Unknown"),
				SourceName: orDefault(s.Source, "Unknown"),
				Similarity: sim,
				URL:        s.URL,
			})
		}
	}

	r.SourceAttribution = checkAttribution(content, sources)
	r.IsOriginal = r.SimilarityScore < a.threshold
	r.ConfidenceScore = confidence(r)
	r.Recommendations = recommendations(r, a.threshold)
	return r, nil
}

// checkAttribution looks for each source's title or name in the content.
// Reporting-verb patterns are scanned once for the whole content.
func checkAttribution(content string, sources []article.Source) []Attribution {
	lower := strings.ToLower(PlainText(content))

	patterns := []string{}
	for i, re := range suspiciousRes {
		if re.MatchString(lower) {
			patterns = append(patterns, suspiciousPatterns[i])
		}
	}

	out := make([]Attribution, 0, len(sources))
	for _, s := range sources {
		title := strings.ToLower(strings.TrimSpace(s.Title))
		name := strings.ToLower(strings.TrimSpace(s.Source))
		titleHit := title != "" && strings.Contains(lower, title)
		nameHit := name != "" && strings.Contains(lower, name)
		out = append(out, Attribution{
			Source:             orDefault(s.Title, "Unknown"),
			URL:                s.URL,
			TitleMentioned:     titleHit,
			SourceMentioned:    nameHit,
			SuspiciousPatterns: append([]string(nil), patterns...),
			NeedsAttribution:   !titleHit && !nameHit,
		})
	}
	return out
}

func confidence(r Report) float64 {
	c := 1.0
	if r.SimilarityScore > 0.5 {
		c -= 0.3
	}
	if r.MissingAttributions() > 0 {
		c -= 0.2
	}
	if len(r.SuspiciousSections) > 0 {
		c -= 0.2
	}
	return article.Clamp(c)
}

func recommendations(r Report, threshold float64) []string {
	var recs []string
	switch {
	case r.SimilarityScore > threshold:
		recs = append(recs, RecHighSimilarity)
	case r.SimilarityScore > moderateSimilarity:
		recs = append(recs, RecModerateSimilarity)
	}
	if n := r.MissingAttributions(); n > 0 {
		recs = append(recs, fmt.Sprintf("Add attribution for %d source(s)", n))
	}
	if len(r.SuspiciousSections) > 0 {
		recs = append(recs, RecReviewSections)
	}
	if len(recs) == 0 {
		recs = append(recs, RecOriginal)
	}
	return recs
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
