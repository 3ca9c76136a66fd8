package plagiarism

import (
	"fmt"
	"html"
	"strings"

	"github.com/deusflow/contentcore/internal/article"
)

const (
	attributionIntro = "This article was informed by the following sources. " +
		"We encourage readers to explore these sources for additional information and context."
	attributionNote = "Note: This article provides original analysis and insights based on the information " +
		"from the sources listed above. We strive to create unique, valuable content while properly " +
		"attributing our sources."
	noSourcesSummary = "No sources were used in the creation of this content."
)

// BuildAttribution renders the "Sources and Further Reading" block, one
// list item per source in the given order. The output depends only on
// its input. No sources render as an empty string.
func BuildAttribution(sources []article.Source) string {
	if len(sources) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<div class="sources-section">` + "\n")
	b.WriteString("<h2>Sources and Further Reading</h2>\n")
	b.WriteString("<p>" + attributionIntro + "</p>\n")
	b.WriteString(`<ul class="sources-list">` + "\n")

	for _, s := range sources {
		title := orDefault(s.Title, "Unknown Source")
		link := orDefault(s.URL, "#")
		meta := " - " + orDefault(s.Source, "Unknown")
		if d := datePart(s.Published); d != "" {
			meta += " - " + d
		}
		fmt.Fprintf(&b,
			`<li class="source-item"><a href="%s" target="_blank" rel="noopener noreferrer" class="source-link">%s</a><span class="source-meta">%s</span></li>`+"\n",
			html.EscapeString(link), html.EscapeString(title), html.EscapeString(meta))
	}

	b.WriteString("</ul>\n")
	b.WriteString(`<p class="attribution-note"><em>` + attributionNote + "</em></p>\n")
	b.WriteString("</div>")
	return b.String()
}

// EnhanceWithAttribution appends the attribution block to content.
func EnhanceWithAttribution(content string, sources []article.Source) string {
	if len(sources) == 0 {
		return content
	}
	return content + "\n\n" + BuildAttribution(sources)
}

// SourceSummary lists the sources as numbered plain text.
func SourceSummary(sources []article.Source) string {
	if len(sources) == 0 {
		return noSourcesSummary
	}
	lines := []string{fmt.Sprintf("This content was informed by %d source(s):", len(sources))}
	for i, s := range sources {
		lines = append(lines, fmt.Sprintf("%d. %s (%s)", i+1, orDefault(s.Title, "Unknown"), orDefault(s.Source, "Unknown")))
		if s.URL != "" {
			lines = append(lines, "   URL: "+s.URL)
		}
	}
	return strings.Join(lines, "\n")
}

func datePart(published string) string {
	p := []rune(strings.TrimSpace(published))
	if len(p) > 10 {
		p = p[:10]
	}
	return string(p)
}
