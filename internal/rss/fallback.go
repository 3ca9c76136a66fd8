package rss

import "github.com/deusflow/contentcore/internal/article"

type mockTopic struct {
	title, description, source string
}

var mockTopics = map[string][]mockTopic{
	CategoryAI: {
		{"Artificial Intelligence in Healthcare", "How AI is revolutionizing medical diagnosis and treatment", "Tech Trends"},
		{"Machine Learning for Business", "Practical applications of ML in modern business operations", "Business Tech"},
		{"Natural Language Processing Advances", "Latest developments in NLP and language models", "AI Research"},
		{"Computer Vision Applications", "Real-world applications of computer vision technology", "Computer Science"},
		{"AI Ethics and Responsibility", "Important considerations for ethical AI development", "Tech Ethics"},
	},
	CategoryTech: {
		{"Cloud Computing Trends", "Latest developments in cloud infrastructure and services", "Tech News"},
		{"Cybersecurity Best Practices", "Essential security measures for modern applications", "Security Weekly"},
		{"DevOps Automation", "Streamlining development and deployment processes", "DevOps Daily"},
		{"Mobile App Development", "Trends in mobile application development and design", "Mobile Tech"},
		{"Data Science Applications", "Real-world applications of data science and analytics", "Data Insights"},
	},
	CategoryBusiness: {
		{"Startup Funding Outlook", "Where venture investment is flowing this quarter", "Business Weekly"},
		{"Digital Transformation", "How businesses are adapting to digital-first strategies", "Business Weekly"},
		{"Remote Work Technology", "Tools and strategies for effective remote collaboration", "Work Tech"},
	},
	CategorySustainability: {
		{"Sustainable Home Energy", "Practical steps toward renewable power at home", "Green Tech"},
		{"Zero Waste Living", "Everyday habits that cut household waste and recycling costs", "Green Living"},
		{"Sustainable Technology", "Green tech solutions for environmental challenges", "Green Tech"},
	},
	CategoryGeneral: {
		{"Digital Transformation", "How businesses are adapting to digital-first strategies", "Business Weekly"},
		{"Remote Work Technology", "Tools and strategies for effective remote collaboration", "Work Tech"},
		{"Sustainable Technology", "Green tech solutions for environmental challenges", "Green Tech"},
		{"Blockchain Applications", "Beyond cryptocurrency: practical blockchain use cases", "Crypto News"},
		{"Internet of Things (IoT)", "Connected devices and smart technology integration", "IoT Daily"},
	},
}

// Fallback returns the fixed placeholder topics of a category, at most
// limit of them (all when limit <= 0).
func (f *Fetcher) Fallback(category string, limit int) []article.Raw {
	category = NormalizeCategory(category)
	topics := mockTopics[category]
	if limit > 0 && len(topics) > limit {
		topics = topics[:limit]
	}
	out := make([]article.Raw, 0, len(topics))
	for _, t := range topics {
		out = append(out, article.Raw{
			Title:       t.title,
			Description: t.description,
			Source:      t.source,
			Category:    category,
		})
	}
	return out
}
