package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-curator/app/curation"
	"github.com/lysyi3m/news-curator/app/database"
	"github.com/lysyi3m/news-curator/app/feed"
	"github.com/lysyi3m/news-curator/app/personalization"
	"github.com/lysyi3m/news-curator/app/review"
	"github.com/lysyi3m/news-curator/app/scoring"
)

// CreateReviewTask collects every enabled feed, ranks the articles and
// stores them as the review for the task's date.
type CreateReviewTask struct {
	Task
	now         time.Time
	configCache *feed.ConfigCache
	collector   *feed.Collector
	curator     *curation.Curator
	profiles    *personalization.ProfileCache
	reviewRepo  database.ReviewStore
	feedRepo    database.FeedStore
	topics      []scoring.Topic

	record *review.Record
}

func NewCreateReviewTask(date string, now time.Time, configCache *feed.ConfigCache, collector *feed.Collector,
	curator *curation.Curator, profiles *personalization.ProfileCache, reviewRepo database.ReviewStore,
	feedRepo database.FeedStore, topics []scoring.Topic) *CreateReviewTask {
	return &CreateReviewTask{
		Task:        NewTask(TaskTypeCreateReview, date),
		now:         now,
		configCache: configCache,
		collector:   collector,
		curator:     curator,
		profiles:    profiles,
		reviewRepo:  reviewRepo,
		feedRepo:    feedRepo,
		topics:      topics,
	}
}

func (t *CreateReviewTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	configs := t.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		slog.Warn("No enabled feeds, review will be empty", "date", t.Target)
	}

	articles, results := t.collector.Collect(ctx, configs, t.now)
	failed := t.recordFetches(results)

	selection := t.curator.FetchAndScore(articles, t.topics, t.profiles.Get(), t.now)
	record := selection.Record(t.Target, t.now)

	existing, err := t.reviewRepo.GetReview(ctx, t.Target)
	if err != nil {
		return fmt.Errorf("failed to load existing review: %w", err)
	}
	carried := 0
	if existing != nil {
		carried = carrySelections(*existing, record)
	}

	if err := t.reviewRepo.SaveReview(ctx, record); err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}
	t.record = &record

	slog.Info("Task completed",
		"type", "CreateReview",
		"date", t.Target,
		"duration", t.GetDuration(),
		"feeds", len(configs),
		"failed_feeds", failed,
		"articles", len(record.Articles),
		"groups", len(selection.Groups),
		"personalized", selection.Personalized,
		"carried_selections", carried)

	return nil
}

// Record returns the stored review after a successful Execute.
func (t *CreateReviewTask) Record() *review.Record {
	return t.record
}

func (t *CreateReviewTask) recordFetches(results []feed.Result) int {
	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}

		err := t.feedRepo.UpdateFeedFetch(result.Feed, t.now, result.Kept, result.Err)
		if errors.Is(err, database.ErrNotFound) {
			slog.Debug("Feed not synced yet, skipping fetch stats", "feed", result.Feed)
		} else if err != nil {
			slog.Warn("Failed to record feed fetch", "feed", result.Feed, "error", err)
		}
	}
	return failed
}

// carrySelections keeps the reviewer's picks when a review is rebuilt for
// the same date. Returns how many selections were carried over.
func carrySelections(previous review.Record, next review.Record) int {
	selected := make(map[string]bool)
	for _, a := range previous.Selected() {
		selected[a.ID] = true
	}
	if len(selected) == 0 {
		return 0
	}

	carried := 0
	for _, a := range next.Articles {
		if selected[a.ID] {
			a.Selected = true
			carried++
		}
	}
	return carried
}
