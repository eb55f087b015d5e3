package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-curator/app/database"
	"github.com/lysyi3m/news-curator/app/feed"
)

type SyncFeedConfigTask struct {
	Task
	FeedConfig *feed.Config
	feedRepo   database.FeedStore
}

func NewSyncFeedConfigTask(feedName string, feedConfig *feed.Config, feedRepo database.FeedStore) *SyncFeedConfigTask {
	return &SyncFeedConfigTask{
		Task:       NewTask(TaskTypeSyncFeedConfig, feedName),
		FeedConfig: feedConfig,
		feedRepo:   feedRepo,
	}
}

func (t *SyncFeedConfigTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	urlChanged, err := t.feedRepo.UpsertFeed(
		t.FeedConfig.Name,
		t.FeedConfig.URL,
		string(t.FeedConfig.Kind))
	if err != nil {
		return fmt.Errorf("failed to sync feed config to database: %w", err)
	}

	if urlChanged {
		slog.Info("Feed URL updated", "feed", t.Target, "url", t.FeedConfig.URL)
	}

	slog.Debug("Task completed",
		"type", "SyncFeedConfig",
		"feed", t.Target,
		"kind", t.FeedConfig.Kind,
		"duration", t.GetDuration())

	return nil
}
