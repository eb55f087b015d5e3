package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-curator/app/database"
	"github.com/lysyi3m/news-curator/app/newsletter"
)

type GenerateNewsletterTask struct {
	Task
	service *newsletter.Service

	result *database.Newsletter
}

func NewGenerateNewsletterTask(date string, service *newsletter.Service) *GenerateNewsletterTask {
	return &GenerateNewsletterTask{
		Task:    NewTask(TaskTypeGenerateNewsletter, date),
		service: service,
	}
}

func (t *GenerateNewsletterTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.service.Generate(ctx, t.Target)
	if err != nil {
		// Nothing to build from; a retry would fail the same way.
		if errors.Is(err, database.ErrNotFound) || errors.Is(err, newsletter.ErrNothingSelected) {
			t.DisableRetry()
		}
		return fmt.Errorf("failed to generate newsletter: %w", err)
	}
	t.result = result

	slog.Info("Task completed",
		"type", "GenerateNewsletter",
		"date", t.Target,
		"duration", t.GetDuration(),
		"articles", result.ArticleCount)

	return nil
}

func (t *GenerateNewsletterTask) Newsletter() *database.Newsletter {
	return t.result
}
