package summarizer

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/news-curator/app/article"
)

// Summarizer enriches newsletter articles with AI written summaries and
// commentary. Without a generator every operation is a no-op.
type Summarizer struct {
	generator TextGenerator
	fetcher   ContentFetcher
	options   Options
}

// NewSummarizer accepts a nil generator (AI disabled) and a nil fetcher
// (feed summaries are used as model input).
func NewSummarizer(generator TextGenerator, fetcher ContentFetcher, options Options) *Summarizer {
	if options.Concurrency < 1 {
		options.Concurrency = 1
	}
	if options.MaxSummaryLength <= 0 {
		options.MaxSummaryLength = 150
	}
	if options.ThemeLength <= 0 {
		options.ThemeLength = 150
	}

	return &Summarizer{
		generator: generator,
		fetcher:   fetcher,
		options:   options,
	}
}

func (s *Summarizer) Enabled() bool {
	return s.generator != nil
}

// Enrich fills AISummary and AICommentary in place and returns how many
// articles were enriched. A failed article keeps its feed summary.
func (s *Summarizer) Enrich(ctx context.Context, articles []*article.Article) int {
	if !s.Enabled() || len(articles) == 0 {
		return 0
	}

	var enriched atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(s.options.Concurrency)

	for _, a := range articles {
		if a == nil {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if s.enrichArticle(ctx, a) {
				enriched.Add(1)
			}
			return nil
		})
	}

	g.Wait()

	slog.Info("Articles enriched",
		"enriched", enriched.Load(),
		"total", len(articles))

	return int(enriched.Load())
}

func (s *Summarizer) enrichArticle(ctx context.Context, a *article.Article) bool {
	content := a.Summary
	if s.fetcher != nil && a.URL != "" {
		text, err := s.fetcher.Extract(ctx, a.URL)
		if err != nil {
			slog.Debug("Full text unavailable, using feed summary", "url", a.URL, "error", err)
		} else if text != "" {
			content = text
		}
	}

	response, err := s.generator.Generate(ctx, articlePrompt(a, content, s.options))
	if err != nil {
		slog.Warn("Failed to summarize article", "id", a.ID, "title", a.Title, "error", err)
		return false
	}

	summary, commentary, err := parseEnrichment(response)
	if err != nil {
		// Plain text answers are still usable as a summary.
		slog.Debug("Summary response was not JSON", "id", a.ID, "error", err)
		summary = truncateRunes(strings.TrimSpace(response), maxFallbackRunes)
		commentary = ""
	}
	if summary == "" {
		return false
	}

	a.AISummary = summary
	if s.options.IncludeCommentary {
		a.AICommentary = commentary
	}
	return true
}

// ThemeOfWeek asks the model for a short piece connecting the top articles.
// Returns nil, nil when AI is disabled or there is nothing to connect.
func (s *Summarizer) ThemeOfWeek(ctx context.Context, articles []*article.Article) (*Theme, error) {
	if !s.Enabled() {
		return nil, nil
	}

	present := make([]*article.Article, 0, len(articles))
	for _, a := range articles {
		if a != nil {
			present = append(present, a)
		}
	}
	if len(present) == 0 {
		return nil, nil
	}

	response, err := s.generator.Generate(ctx, themePrompt(present, s.options))
	if err != nil {
		return nil, err
	}

	return parseTheme(response)
}
