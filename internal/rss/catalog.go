package rss

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/contentcore/internal/logger"
)

// Feed categories. Unknown keys resolve to CategoryGeneral.
const (
	CategoryAI             = "ai"
	CategoryTech           = "tech"
	CategoryBusiness       = "business"
	CategorySustainability = "sustainability"
	CategoryGeneral        = "general"
)

// Categories lists every category in catalog order.
var Categories = []string{CategoryAI, CategoryTech, CategoryBusiness, CategorySustainability, CategoryGeneral}

// Catalog is the YAML feed catalog:
//
//	credible_domains: [techcrunch.com, ...]
//	feeds:
//	  ai:
//	    - https://...
type Catalog struct {
	CredibleDomains []string            `yaml:"credible_domains"`
	Feeds           map[string][]string `yaml:"feeds"`
}

// Endpoint is one feed URL and the category its entries are filed under.
type Endpoint struct {
	URL      string
	Category string
}

// DefaultCatalog is used when no catalog file is available.
func DefaultCatalog() Catalog {
	return Catalog{
		Feeds: map[string][]string{
			CategoryAI: {
				"https://feeds.feedburner.com/TechCrunch/artificial-intelligence",
				"https://www.artificialintelligence-news.com/feed/",
				"https://www.sciencedaily.com/rss/computers_math/artificial_intelligence.xml",
				"https://feeds.feedburner.com/VentureBeat/artificial-intelligence",
				"https://www.zdnet.com/news/artificial-intelligence/rss.xml",
			},
			CategoryTech: {
				"https://feeds.feedburner.com/TechCrunch/",
				"https://www.wired.com/feed/rss",
				"https://feeds.arstechnica.com/arstechnica/index",
				"https://www.theverge.com/rss/index.xml",
				"https://feeds.feedburner.com/venturebeat/SZYF",
			},
			CategoryBusiness: {
				"https://feeds.feedburner.com/TechCrunch/business",
				"https://www.entrepreneur.com/feed",
				"https://feeds.harvardbusiness.org/harvardbusiness",
				"https://feeds.feedburner.com/venturebeat/business",
				"https://www.inc.com/rss.xml",
			},
			CategorySustainability: {
				"https://www.treehugger.com/feeds/all",
				"https://grist.org/feed/",
				"https://www.greenbiz.com/feeds/news",
				"https://www.sciencedaily.com/rss/earth_climate/sustainability.xml",
			},
			CategoryGeneral: {
				"https://feeds.feedburner.com/TechCrunch/",
				"https://www.wired.com/feed/rss",
				"https://feeds.arstechnica.com/arstechnica/index",
			},
		},
	}
}

// LoadCatalog reads the feed catalog from a YAML file.
func LoadCatalog(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, eris.Wrapf(err, "open feed catalog %s", path)
	}
	defer f.Close()

	var cat Catalog
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cat); err != nil {
		return Catalog{}, eris.Wrapf(err, "decode feed catalog %s", path)
	}

	normalized := make(map[string][]string, len(cat.Feeds))
	for k, urls := range cat.Feeds {
		normalized[strings.ToLower(strings.TrimSpace(k))] = urls
	}
	cat.Feeds = normalized
	return cat, nil
}

// LoadCatalogOrDefault falls back to DefaultCatalog when the file is
// missing or unreadable.
func LoadCatalogOrDefault(path string) Catalog {
	cat, err := LoadCatalog(path)
	if err != nil {
		logger.Warn("feed catalog unavailable, using built-in feeds", "path", path, "error", err)
		return DefaultCatalog()
	}
	if len(cat.Feeds) == 0 {
		def := DefaultCatalog()
		def.CredibleDomains = cat.CredibleDomains
		return def
	}
	return cat
}

// NormalizeCategory lowercases a category key and maps unknown keys to
// CategoryGeneral.
func NormalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryGeneral
}

// Endpoints returns the endpoints of a category; max <= 0 means all.
func (c Catalog) Endpoints(category string, max int) []Endpoint {
	category = NormalizeCategory(category)
	urls := c.Feeds[category]
	if max > 0 && len(urls) > max {
		urls = urls[:max]
	}
	out := make([]Endpoint, 0, len(urls))
	for _, u := range urls {
		out = append(out, Endpoint{URL: u, Category: category})
	}
	return out
}
