package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lysyi3m/news-curator/app/article"
)

const (
	maxSourceRunes   = 6000
	maxFallbackRunes = 500
	themeArticles    = 5
)

func articlePrompt(a *article.Article, content string, options Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a senior technology analyst writing for %q, a professional newsletter for AI professionals, executives and policymakers.\n\n", options.NewsletterName)
	fmt.Fprintf(&b, "Article Title: %s\n", a.Title)
	fmt.Fprintf(&b, "Source: %s\n", a.Source)
	fmt.Fprintf(&b, "Category: %s\n", a.Category)
	fmt.Fprintf(&b, "Content: %s\n\n", truncateRunes(content, maxSourceRunes))

	fmt.Fprintf(&b, "Write a summary of approximately %d words covering the core development, key details and why it matters. ", options.MaxSummaryLength)
	b.WriteString("Use a professional, analytical tone and clear prose without bullet points.\n")

	if options.IncludeCommentary {
		b.WriteString("Also add a commentary of 2-3 sentences on what readers should watch for.\n")
	}

	b.WriteString("\nRespond with a JSON object with fields \"summary\" and \"commentary\" (strings).")
	return b.String()
}

func themePrompt(articles []*article.Article, options Options) string {
	var b strings.Builder

	b.WriteString("Based on these top AI news articles this week, write a short \"Theme of the Week\" that connects them:\n\n")
	for i, a := range articles {
		if i == themeArticles {
			break
		}
		fmt.Fprintf(&b, "- %s (%s)\n", a.Title, a.Category)
	}

	fmt.Fprintf(&b, "\nWrite approximately %d words for an audience of AI professionals and policymakers. ", options.ThemeLength)
	b.WriteString("Respond with a JSON object with fields \"title\" and \"content\" (strings).")
	return b.String()
}

// stripCodeFences removes a surrounding ```json block if the model added one.
func stripCodeFences(input string) string {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimPrefix(trimmed, "json")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx != -1 {
		trimmed = strings.TrimSpace(trimmed[:idx])
	}
	return trimmed
}

func parseEnrichment(response string) (summary, commentary string, err error) {
	var payload struct {
		Summary    string `json:"summary"`
		Commentary string `json:"commentary"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(response)), &payload); err != nil {
		return "", "", fmt.Errorf("failed to parse enrichment: %w", err)
	}
	return strings.TrimSpace(payload.Summary), strings.TrimSpace(payload.Commentary), nil
}

func parseTheme(response string) (*Theme, error) {
	var theme Theme
	if err := json.Unmarshal([]byte(stripCodeFences(response)), &theme); err != nil {
		return nil, fmt.Errorf("failed to parse theme: %w", err)
	}

	theme.Title = strings.TrimSpace(theme.Title)
	theme.Content = strings.TrimSpace(theme.Content)
	if theme.Content == "" {
		return nil, fmt.Errorf("theme content is empty")
	}
	return &theme, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
