package news

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	maxSummaryLen    = 300
	teaserLen        = 200
	minSentenceLen   = 20
	scoredSentences  = 10
	summarySentences = 3
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Summarize picks the three highest scoring of the first ten meaningful
// sentences. Longer sentences and sentences naming a topic tag score
// higher. Content without a meaningful sentence is cut to a teaser.
func Summarize(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}

	var sentences []string
	for _, s := range sentenceSplit.Split(content, -1) {
		s = strings.TrimSpace(s)
		if len(s) > minSentenceLen {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return Truncate(content, teaserLen)
	}
	if len(sentences) > scoredSentences {
		sentences = sentences[:scoredSentences]
	}

	type scored struct {
		text  string
		score float64
	}
	ranked := make([]scored, 0, len(sentences))
	for _, s := range sentences {
		score := float64(len(s)) * 0.1
		lower := strings.ToLower(s)
		for _, t := range TopicKeywords {
			if strings.Contains(lower, t.Tag) {
				score += 10
			}
		}
		ranked = append(ranked, scored{s, score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > summarySentences {
		ranked = ranked[:summarySentences]
	}

	parts := make([]string, 0, len(ranked))
	for _, r := range ranked {
		parts = append(parts, r.text)
	}
	summary := strings.Join(parts, ". ") + "."

	if len(summary) > maxSummaryLen {
		n := maxSummaryLen
		for n > 0 && !utf8.RuneStart(summary[n]) {
			n--
		}
		cut := summary[:n]
		if i := strings.LastIndex(cut, "."); i >= 0 {
			cut = cut[:i]
		}
		summary = cut + "."
	}
	return summary
}

// Truncate cuts s to n runes and appends "..." when it was longer.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
