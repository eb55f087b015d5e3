package api

import (
	"context"

	"github.com/lysyi3m/news-curator/app/database"
	"github.com/lysyi3m/news-curator/app/feed"
	"github.com/lysyi3m/news-curator/app/newsletter"
	"github.com/lysyi3m/news-curator/app/personalization"
	"github.com/lysyi3m/news-curator/app/tasks"
)

type ArchiveInterface interface {
	Run(newsletters []database.Newsletter) (string, error)
}

var _ ArchiveInterface = (*newsletter.Archive)(nil)

// TaskRunner queues background work and runs on-demand tasks inline.
type TaskRunner interface {
	tasks.TaskSchedulerInterface
	Submit(ctx context.Context, task tasks.TaskInterface) error
}

var _ TaskRunner = (*tasks.Scheduler)(nil)

type Handler struct {
	configCache          *feed.ConfigCache
	feedRepo             database.FeedStore
	reviewRepo           database.ReviewStore
	newsletterRepo       database.NewsletterStore
	profiles             *personalization.ProfileCache
	engine               *personalization.Engine
	archive              ArchiveInterface
	factory              *tasks.Factory
	scheduler            TaskRunner
	autoSuggestThreshold float64
	version              string
}

type selectionsRequest struct {
	ArticleIDs []string `json:"article_ids"`
}

type predictionResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Source       string  `json:"source"`
	Category     string  `json:"category"`
	Likelihood   float64 `json:"likelihood"`
	BoostedScore float64 `json:"boosted_score"`
}

func toPredictionResponses(predictions []personalization.Prediction) []predictionResponse {
	responses := make([]predictionResponse, 0, len(predictions))
	for _, p := range predictions {
		responses = append(responses, predictionResponse{
			ID:           p.Article.ID,
			Title:        p.Article.Title,
			Source:       p.Article.Source,
			Category:     p.Article.Category,
			Likelihood:   p.Likelihood,
			BoostedScore: p.BoostedScore,
		})
	}
	return responses
}
