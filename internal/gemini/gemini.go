// Package gemini asks a Gemini model for a short editorial summary of an
// article. It is optional: callers fall back to the extractive summary.
package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/rotisserie/eris"
	"google.golang.org/api/option"

	"github.com/deusflow/contentcore/internal/logger"
	"github.com/deusflow/contentcore/internal/ratelimit"
)

const (
	DefaultModel    = "gemini-1.5-flash"
	maxPromptChars  = 6000
	maxSummaryChars = 1500
)

// Summarizer produces an abstractive summary.
type Summarizer interface {
	Summarize(ctx context.Context, title, content string) (string, error)
}

type Client struct {
	client *genai.Client
	model  string
	budget *ratelimit.RequestBudget
	// generate is swapped in tests.
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewClient connects to the Gemini API. A nil budget means unlimited.
func NewClient(ctx context.Context, apiKey, model string, budget *ratelimit.RequestBudget) (*Client, error) {
	if apiKey == "" {
		return nil, eris.New("gemini api key is empty")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, eris.Wrap(err, "failed to create Gemini client")
	}

	c := &Client{client: client, model: model, budget: budget}
	c.generate = c.generateContent
	return c, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Summarize returns a plain-English summary of at most 1500 characters.
func (c *Client) Summarize(ctx context.Context, title, content string) (string, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(content) == "" {
		return "", eris.New("nothing to summarize")
	}
	if c.budget != nil {
		if err := c.budget.Use(); err != nil {
			return "", eris.Wrap(err, "gemini summary skipped")
		}
	}

	response, err := c.generate(ctx, buildPrompt(title, content))
	if err != nil {
		return "", err
	}
	summary, err := parseSummary(response)
	if err != nil {
		logger.Warn("unparseable gemini response", "title", title, "error", err)
		return "", err
	}
	return summary, nil
}

func (c *Client) generateContent(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", eris.Wrap(err, "failed to generate content")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", eris.New("no response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

// sanitize collapses whitespace and caps the prompt body, preferring to
// cut at a sentence end.
func sanitize(content string) string {
	content = strings.ReplaceAll(content, "\r", "")
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= maxPromptChars {
		return content
	}
	trimmed := string([]rune(content)[:maxPromptChars])
	if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed + "\n[TRUNCATED]"
}

func buildPrompt(title, content string) string {
	return fmt.Sprintf(`Summarize the following news article for a content editor.

ARTICLE:
Title: %s
Content: %s

REQUIREMENTS:
- At most %d characters, in English.
- Keep brand and organization names as written.
- State facts only, no opening phrases like "This article is about".

Answer strictly in this format:

SUMMARY: <summary>
`, strings.TrimSpace(title), sanitize(content), maxSummaryChars)
}

var summaryLabel = regexp.MustCompile(`(?i)^\**\s*summary\s*\**\s*:\s*\**\s*`)

// parseSummary reads the SUMMARY section, including continuation lines.
// Responses without the label are accepted as-is.
func parseSummary(response string) (string, error) {
	var b strings.Builder
	found := false
	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if summaryLabel.MatchString(line) {
			found = true
			line = strings.TrimSpace(summaryLabel.ReplaceAllString(line, ""))
		} else if !found {
			continue
		}
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(line)
	}

	summary := b.String()
	if !found {
		summary = strings.Join(strings.Fields(response), " ")
	}
	if summary == "" {
		return "", eris.New("could not parse Gemini response: empty summary")
	}
	if utf8.RuneCountInString(summary) > maxSummaryChars {
		summary = string([]rune(summary)[:maxSummaryChars-3]) + "..."
	}
	return summary, nil
}
