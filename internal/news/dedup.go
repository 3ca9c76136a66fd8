package news

import (
	"strings"

	"github.com/deusflow/contentcore/internal/article"
	"github.com/deusflow/contentcore/internal/metrics"
)

// Deduplicate keeps the first article for each hash id. Articles without a
// hash id are compared by case-insensitive title against everything kept
// so far.
func Deduplicate(articles []article.Enriched) []article.Enriched {
	seenHash := map[string]struct{}{}
	seenTitle := map[string]struct{}{}
	out := make([]article.Enriched, 0, len(articles))

	for _, a := range articles {
		title := strings.ToLower(strings.TrimSpace(a.Title))

		if a.HashID == "" {
			if _, dup := seenTitle[title]; dup {
				continue
			}
		} else {
			if _, dup := seenHash[a.HashID]; dup {
				continue
			}
			seenHash[a.HashID] = struct{}{}
		}
		seenTitle[title] = struct{}{}
		out = append(out, a)
	}

	if filtered := len(articles) - len(out); filtered > 0 {
		metrics.Global.AddDuplicatesFiltered(filtered)
	}
	return out
}
