package news

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deusflow/contentcore/internal/article"
)

func enriched(title, hash string) article.Enriched {
	return article.Enriched{Raw: article.Raw{Title: title, Category: "tech"}, HashID: hash}
}

func TestDeduplicate(t *testing.T) {
	in := []article.Enriched{
		enriched("One", "h1"),
		enriched("Other", "h1"),
		enriched("Two", ""),
		enriched("two", ""),
		enriched("Three", "h2"),
		enriched("one", ""),
	}

	out := Deduplicate(in)

	var titles []string
	for _, a := range out {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"One", "Two", "Three"}, titles)
}

func TestDeduplicate_EqualHashesCollapse(t *testing.T) {
	e := NewEnricher(nil, nil)
	raw := article.Raw{Title: "Same story", URL: "https://a.example/x", Category: "ai"}
	a, b := e.Enrich(raw), e.Enrich(raw)

	out := Deduplicate([]article.Enriched{a, b})
	assert.Len(t, out, 1)
	assert.Empty(t, Deduplicate(nil))
}

func TestHashID_URLCaseMatters(t *testing.T) {
	assert.Equal(t, HashID("Same Story", "https://a.example/Post"), HashID("same story", "https://a.example/Post"))
	assert.NotEqual(t, HashID("Same story", "https://a.example/Post"), HashID("Same story", "https://a.example/post"))

	e := NewEnricher(nil, nil)
	upper := e.Enrich(article.Raw{Title: "Same story", URL: "https://a.example/Post", Category: "ai"})
	lower := e.Enrich(article.Raw{Title: "Same story", URL: "https://a.example/post", Category: "ai"})
	assert.Len(t, Deduplicate([]article.Enriched{upper, lower}), 2)
}
