package app

import (
	"github.com/deusflow/contentcore/internal/article"
	"github.com/deusflow/contentcore/internal/plagiarism"
)

// AnalyzePlagiarism compares generated content with the exact sources it
// was written from. It never fails; see plagiarism.Report.Degraded.
func (s *Service) AnalyzePlagiarism(content string, sources []article.Source) plagiarism.Report {
	return s.analyzer.Analyze(content, sources)
}

// ValidateSources scores a source list for credibility, recency and
// diversity.
func (s *Service) ValidateSources(sources []article.Source) plagiarism.QualityReport {
	return s.validator.Validate(sources)
}

func (s *Service) BuildAttribution(sources []article.Source) string {
	return plagiarism.BuildAttribution(sources)
}

func (s *Service) EnhanceWithAttribution(content string, sources []article.Source) string {
	return plagiarism.EnhanceWithAttribution(content, sources)
}

func (s *Service) SourceSummary(sources []article.Source) string {
	return plagiarism.SourceSummary(sources)
}
