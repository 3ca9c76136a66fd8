package plagiarism

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deusflow/contentcore/internal/article"
)

func TestBuildAttribution_Deterministic(t *testing.T) {
	first := BuildAttribution(sampleSources)
	second := BuildAttribution(sampleSources)
	assert.Equal(t, first, second)

	assert.True(t, strings.HasPrefix(first, `<div class="sources-section">`))
	assert.Contains(t, first, "<h2>Sources and Further Reading</h2>")
	assert.Contains(t, first,
		`<li class="source-item"><a href="https://techcrunch.com/ai-healthcare-breakthrough" target="_blank" rel="noopener noreferrer" class="source-link">AI Breakthrough in Healthcare</a><span class="source-meta"> - TechCrunch - 2024-01-15</span></li>`)
	assert.Contains(t, first, `class="attribution-note"`)
}

func TestBuildAttribution_PreservesOrder(t *testing.T) {
	out := BuildAttribution(sampleSources)
	assert.Less(t, strings.Index(out, "AI Breakthrough"), strings.Index(out, "Machine Learning in Software"))

	reversed := []article.Source{sampleSources[1], sampleSources[0]}
	assert.NotEqual(t, out, BuildAttribution(reversed))
}

func TestBuildAttribution_DefaultsAndEscaping(t *testing.T) {
	out := BuildAttribution([]article.Source{
		{Title: `<script>alert("x")</script>`, Published: "2024-03-09T10:00:00Z"},
		{},
	})
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `href="#"`)
	assert.Contains(t, out, "Unknown Source")
	assert.Contains(t, out, "<span class=\"source-meta\"> - Unknown - 2024-03-09</span>")
	assert.Contains(t, out, "<span class=\"source-meta\"> - Unknown</span>")
}

func TestBuildAttribution_Empty(t *testing.T) {
	assert.Equal(t, "", BuildAttribution(nil))
}

func TestEnhanceWithAttribution(t *testing.T) {
	assert.Equal(t, "body", EnhanceWithAttribution("body", nil))

	out := EnhanceWithAttribution("body", sampleSources)
	assert.True(t, strings.HasPrefix(out, "body\n\n<div class=\"sources-section\">"))
}

func TestSourceSummary(t *testing.T) {
	assert.Equal(t, "No sources were used in the creation of this content.", SourceSummary(nil))

	want := "This content was informed by 2 source(s):\n" +
		"1. AI Breakthrough in Healthcare (TechCrunch)\n" +
		"   URL: https://techcrunch.com/ai-healthcare-breakthrough\n" +
		"2. Machine Learning in Software Development (Wired)\n" +
		"   URL: https://wired.com/ml-software-development"
	assert.Equal(t, want, SourceSummary(sampleSources))

	assert.Equal(t, "This content was informed by 1 source(s):\n1. Unknown (Unknown)",
		SourceSummary([]article.Source{{}}))
}
