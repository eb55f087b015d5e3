package summarizer

import "context"

// TextGenerator produces a completion for a single prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ContentFetcher returns the readable text behind an article URL.
type ContentFetcher interface {
	Extract(ctx context.Context, url string) (string, error)
}

type Options struct {
	NewsletterName    string
	IncludeCommentary bool
	MaxSummaryLength  int // approximate words
	Concurrency       int
	ThemeLength       int // approximate words
}

type Theme struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
