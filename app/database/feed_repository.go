package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// FeedRepository tracks configured feeds and their last fetch outcome
type FeedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// UpsertFeed inserts a feed or updates its URL and kind. It reports whether
// an existing feed's URL changed.
func (r *FeedRepository) UpsertFeed(feedName, feedURL, kind string) (bool, error) {
	var previousURL string
	err := r.db.QueryRow(`SELECT feed_url FROM feeds WHERE name = ?`, feedName).Scan(&previousURL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to look up feed: %w", err)
	}
	urlChanged := err == nil && previousURL != feedURL

	now := formatTime(time.Now())

	_, err = r.db.Exec(`
		INSERT INTO feeds (name, feed_url, kind, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			feed_url = excluded.feed_url,
			kind = excluded.kind,
			updated_at = excluded.updated_at
	`, feedName, feedURL, kind, now, now)
	if err != nil {
		return false, fmt.Errorf("failed to upsert feed: %w", err)
	}

	return urlChanged, nil
}

func (r *FeedRepository) UpdateFeedFetch(feedName string, fetchedAt time.Time, itemCount int, fetchErr error) error {
	lastError := ""
	if fetchErr != nil {
		lastError = fetchErr.Error()
	}

	result, err := r.db.Exec(`
		UPDATE feeds
		SET last_fetched_at = ?, item_count = ?, last_error = ?, updated_at = ?
		WHERE name = ?
	`, formatTime(fetchedAt), itemCount, lastError, formatTime(time.Now()), feedName)
	if err != nil {
		return fmt.Errorf("failed to update feed fetch: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("feed %s: %w", feedName, ErrNotFound)
	}

	return nil
}

func (r *FeedRepository) GetFeed(feedName string) (*Feed, error) {
	row := r.db.QueryRow(`
		SELECT name, feed_url, kind, last_fetched_at, last_error, item_count, created_at, updated_at
		FROM feeds WHERE name = ?
	`, feedName)

	feed, err := scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return feed, nil
}

func (r *FeedRepository) GetFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT name, feed_url, kind, last_fetched_at, last_error, item_count, created_at, updated_at
		FROM feeds ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	return feeds, rows.Err()
}

func (r *FeedRepository) GetFeedCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count feeds: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeed(s scanner) (*Feed, error) {
	var feed Feed
	var lastFetched sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&feed.Name, &feed.FeedURL, &feed.Kind, &lastFetched, &feed.LastError, &feed.ItemCount, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	feed.LastFetchedAt = parseNullTime(lastFetched)
	feed.CreatedAt = parseTime(createdAt)
	feed.UpdatedAt = parseTime(updatedAt)

	return &feed, nil
}
