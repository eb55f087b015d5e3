package database

import (
	"context"
	"time"

	"github.com/lysyi3m/news-curator/app/article"
	"github.com/lysyi3m/news-curator/app/review"
)

type ReviewStore interface {
	SaveReview(ctx context.Context, record review.Record) error
	GetReview(ctx context.Context, date string) (*review.Record, error)
	ListRecords(ctx context.Context) ([]review.Record, error)
	ListSummaries(ctx context.Context) ([]review.Summary, error)
	UpdateSelections(ctx context.Context, date string, ids []string) (int, error)
	UpdateEnrichment(ctx context.Context, date string, articles []*article.Article) error
	DeleteReview(ctx context.Context, date string) (bool, error)
}

type NewsletterStore interface {
	SaveNewsletter(ctx context.Context, newsletter Newsletter) error
	GetNewsletter(ctx context.Context, date string) (*Newsletter, error)
	ListNewsletters(ctx context.Context, limit int) ([]Newsletter, error)
}

type FeedStore interface {
	GetFeed(feedName string) (*Feed, error)
	GetFeeds() ([]Feed, error)
	GetFeedCount() (int, error)

	UpsertFeed(feedName, feedURL, kind string) (bool, error)
	UpdateFeedFetch(feedName string, fetchedAt time.Time, itemCount int, fetchErr error) error
}
