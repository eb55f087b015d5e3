package tasks

import (
	"time"

	"github.com/lysyi3m/news-curator/app/curation"
	"github.com/lysyi3m/news-curator/app/database"
	"github.com/lysyi3m/news-curator/app/feed"
	"github.com/lysyi3m/news-curator/app/newsletter"
	"github.com/lysyi3m/news-curator/app/personalization"
	"github.com/lysyi3m/news-curator/app/review"
	"github.com/lysyi3m/news-curator/app/scoring"
)

// Factory builds tasks wired to the shared services. The scheduler uses it
// for cron and startup work, the API for on-demand runs.
type Factory struct {
	configCache *feed.ConfigCache
	collector   *feed.Collector
	curator     *curation.Curator
	profiles    *personalization.ProfileCache
	reviewRepo  database.ReviewStore
	feedRepo    database.FeedStore
	newsletters *newsletter.Service
	topics      []scoring.Topic
}

func NewFactory(configCache *feed.ConfigCache, collector *feed.Collector, curator *curation.Curator,
	profiles *personalization.ProfileCache, reviewRepo database.ReviewStore, feedRepo database.FeedStore,
	newsletters *newsletter.Service, topics []scoring.Topic) *Factory {
	return &Factory{
		configCache: configCache,
		collector:   collector,
		curator:     curator,
		profiles:    profiles,
		reviewRepo:  reviewRepo,
		feedRepo:    feedRepo,
		newsletters: newsletters,
		topics:      topics,
	}
}

func (f *Factory) NewCreateReviewTask(now time.Time) *CreateReviewTask {
	return NewCreateReviewTask(review.DateOf(now), now, f.configCache, f.collector, f.curator,
		f.profiles, f.reviewRepo, f.feedRepo, f.topics)
}

func (f *Factory) NewRebuildProfileTask() *RebuildProfileTask {
	return NewRebuildProfileTask(f.profiles, f.reviewRepo)
}

func (f *Factory) NewGenerateNewsletterTask(date string) *GenerateNewsletterTask {
	return NewGenerateNewsletterTask(date, f.newsletters)
}

func (f *Factory) NewSyncFeedConfigTasks() []*SyncFeedConfigTask {
	configs := f.configCache.GetEnabledConfigs()

	syncTasks := make([]*SyncFeedConfigTask, 0, len(configs))
	for _, feedConfig := range configs {
		syncTasks = append(syncTasks, NewSyncFeedConfigTask(feedConfig.Name, feedConfig, f.feedRepo))
	}
	return syncTasks
}
