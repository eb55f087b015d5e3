package newsletter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-curator/app/database"
	"github.com/lysyi3m/news-curator/app/review"
	"github.com/lysyi3m/news-curator/app/summarizer"
)

var ErrNothingSelected = errors.New("no articles selected")

// Service turns a reviewed week into a rendered and stored newsletter.
type Service struct {
	reviews     database.ReviewStore
	newsletters database.NewsletterStore
	summarizer  *summarizer.Summarizer
	renderer    *Renderer
	options     Options
}

func NewService(reviews database.ReviewStore, newsletters database.NewsletterStore, summarizer *summarizer.Summarizer, renderer *Renderer, options Options) *Service {
	return &Service{
		reviews:     reviews,
		newsletters: newsletters,
		summarizer:  summarizer,
		renderer:    renderer,
		options:     options,
	}
}

// Generate loads the review for date, enriches its selected articles and
// stores the rendered issue. The review must exist and have a selection.
func (s *Service) Generate(ctx context.Context, date string) (*database.Newsletter, error) {
	issueDate, err := time.Parse(review.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid newsletter date %q: %w", date, err)
	}

	record, err := s.reviews.GetReview(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("review %s: %w", date, database.ErrNotFound)
	}

	selected := record.Selected()
	if len(selected) == 0 {
		return nil, fmt.Errorf("review %s: %w", date, ErrNothingSelected)
	}
	if s.options.MaxArticles > 0 && len(selected) > s.options.MaxArticles {
		selected = selected[:s.options.MaxArticles]
	}

	issue := Issue{
		Name:        s.options.Name,
		Tagline:     s.options.Tagline,
		Date:        issueDate,
		GeneratedAt: time.Now(),
	}

	if s.summarizer != nil && s.summarizer.Enabled() {
		s.summarizer.Enrich(ctx, selected)

		if s.options.ThemeEnabled {
			theme, err := s.summarizer.ThemeOfWeek(ctx, selected)
			if err != nil {
				slog.Warn("Failed to generate theme of the week", "date", date, "error", err)
			}
			issue.Theme = theme
		}

		if err := s.reviews.UpdateEnrichment(ctx, date, selected); err != nil {
			slog.Warn("Failed to store enrichment", "date", date, "error", err)
		}
	}

	issue.Sections = Sections(selected)

	content, err := s.renderer.Render(issue)
	if err != nil {
		return nil, err
	}

	newsletter := database.Newsletter{
		Date:         date,
		HTML:         content,
		ArticleCount: issue.ArticleCount(),
		CreatedAt:    issue.GeneratedAt,
	}
	if err := s.newsletters.SaveNewsletter(ctx, newsletter); err != nil {
		return nil, fmt.Errorf("failed to save newsletter: %w", err)
	}

	slog.Info("Newsletter generated",
		"date", date,
		"articles", newsletter.ArticleCount,
		"theme", issue.Theme != nil)

	return &newsletter, nil
}
