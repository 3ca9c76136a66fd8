package news

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Topic tags.
const (
	TopicAI             = "ai"
	TopicTech           = "tech"
	TopicBusiness       = "business"
	TopicCybersecurity  = "cybersecurity"
	TopicCloud          = "cloud"
	TopicMobile         = "mobile"
	TopicSustainability = "sustainability"
)

// TopicKeywords maps each topic tag to the keywords that select it. Order
// is the order tags are reported in.
var TopicKeywords = []struct {
	Tag      string
	Keywords []string
}{
	{TopicAI, []string{"artificial intelligence", "machine learning", "deep learning", "neural networks", "AI", "ML", "GPT", "LLM"}},
	{TopicTech, []string{"technology", "software", "hardware", "programming", "development", "startup", "innovation"}},
	{TopicBusiness, []string{"business", "startup", "entrepreneur", "funding", "investment", "market", "revenue"}},
	{TopicCybersecurity, []string{"security", "cybersecurity", "hacking", "privacy", "encryption", "breach"}},
	{TopicCloud, []string{"cloud", "AWS", "Azure", "Google Cloud", "infrastructure", "SaaS"}},
	{TopicMobile, []string{"mobile", "iOS", "Android", "app", "smartphone", "tablet"}},
	{TopicSustainability, SustainabilityKeywords},
}

// SustainabilityKeywords is the green-living lexicon shared by topic
// detection and the relevance boosts.
var SustainabilityKeywords = []string{
	"sustainability", "sustainable", "eco-friendly", "green living", "climate",
	"renewable", "recycling", "zero waste", "carbon footprint", "emissions",
	"environmental", "solar energy", "composting",
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {},
	"did": {}, "will": {}, "would": {}, "could": {}, "should": {}, "may": {}, "might": {},
	"must": {}, "can": {}, "this": {}, "that": {}, "these": {}, "those": {},
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Words splits lowercased text into word tokens.
func Words(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// Keywords returns up to max keywords of text ranked by frequency. Stop
// words and words of three letters or fewer are dropped; ties keep the
// order words were first seen in.
func Keywords(text string, max int) []string {
	counts := map[string]int{}
	order := []string{}
	for _, w := range Words(text) {
		if len([]rune(w)) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > max {
		order = order[:max]
	}
	return order
}

// DetectTopics returns the topic tags whose keywords appear in text.
func DetectTopics(text string) []string {
	topics := []string{}
	for _, t := range TopicKeywords {
		if ContainsAny(text, t.Keywords) {
			topics = append(topics, t.Tag)
		}
	}
	return topics
}

var boundaryCache sync.Map // keyword -> *regexp.Regexp

// ContainsAny reports whether text contains one of keywords. Phrases and
// long words match as substrings; words of three letters or fewer must
// match as whole words so "ai" does not hit "said".
func ContainsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)

	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}

		if strings.Contains(k, " ") || len(k) > 3 {
			if strings.Contains(text, k) {
				return true
			}
			continue
		}

		if boundaryRegexp(k).MatchString(text) {
			return true
		}
	}
	return false
}

// ContainsAnyWord is ContainsAny with every keyword, phrases included,
// matched on word boundaries, so "green" does not hit "evergreen".
func ContainsAnyWord(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && boundaryRegexp(k).MatchString(text) {
			return true
		}
	}
	return false
}

func boundaryRegexp(k string) *regexp.Regexp {
	if re, ok := boundaryCache.Load(k); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
	boundaryCache.Store(k, re)
	return re
}

// IsStopWord reports whether w is in the stop-word list.
func IsStopWord(w string) bool {
	_, ok := stopWords[strings.ToLower(w)]
	return ok
}
