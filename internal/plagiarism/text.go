package plagiarism

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pmezard/go-difflib/difflib"
)

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)

const blockElements = "p,div,li,br,h1,h2,h3,h4,h5,h6,td,th,blockquote,section,article"

// PlainText renders markup as whitespace-separated text. Strings without
// tags are returned unchanged.
func PlainText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script,style").Remove()
	doc.Find(blockElements).AppendHtml(" ")
	return doc.Text()
}

// Normalize lowercases text, drops punctuation and collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(PlainText(s))
	s = punctuation.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// Similarity is the sequence-match ratio of the two texts' normalised
// words, in [0,1]. Either text being empty gives 0.
func Similarity(a, b string) float64 {
	wa := strings.Fields(Normalize(a))
	wb := strings.Fields(Normalize(b))
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	m := difflib.NewMatcherWithJunk(wa, wb, false, nil)
	return m.Ratio()
}
