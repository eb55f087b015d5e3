package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lysyi3m/news-curator/app/article"
	"github.com/lysyi3m/news-curator/app/review"
)

var (
	_ ReviewStore         = (*ReviewRepository)(nil)
	_ NewsletterStore     = (*NewsletterRepository)(nil)
	_ FeedStore           = (*FeedRepository)(nil)
	_ review.RecordSource = (*ReviewRepository)(nil)
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "curator.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func testArticle(id, category string, score float64, selected bool) *article.Article {
	return &article.Article{
		ID:          id,
		Title:       "Title " + id,
		URL:         "https://example.com/" + id,
		Source:      "Example",
		Summary:     "Summary " + id,
		PublishedAt: time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC),
		Category:    category,
		Priority:    article.PriorityHigh,
		Score:       score,
		Selected:    selected,
	}
}

func TestOpen_RunsMigrations(t *testing.T) {
	db := openTestDB(t)

	version, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected migrations to be idempotent, got %v", err)
	}
	if version != 1 {
		t.Errorf("Expected version 1, got %d", version)
	}
}

func TestReviewRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository(openTestDB(t))

	createdAt := time.Date(2025, 1, 9, 6, 0, 0, 0, time.UTC)
	record := review.NewRecord("2025-01-09", []*article.Article{
		testArticle("b", "AI Policy", 5, true),
		testArticle("a", "AI Research", 3.5, false),
	}, createdAt)

	if err := repo.SaveReview(ctx, record); err != nil {
		t.Fatalf("Failed to save review: %v", err)
	}

	got, err := repo.GetReview(ctx, "2025-01-09")
	if err != nil {
		t.Fatalf("Failed to get review: %v", err)
	}
	if got == nil {
		t.Fatal("Expected review, got nil")
	}

	if !got.CreatedAt.Equal(createdAt) {
		t.Errorf("Expected created_at %v, got %v", createdAt, got.CreatedAt)
	}
	if len(got.Articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(got.Articles))
	}

	first := got.Articles[0]
	if first.ID != "b" {
		t.Errorf("Expected stored order to be kept, got %s first", first.ID)
	}
	if first.Priority != article.PriorityHigh {
		t.Errorf("Expected priority high, got %s", first.Priority)
	}
	if first.Score != 5 {
		t.Errorf("Expected score 5, got %f", first.Score)
	}
	if !first.Selected {
		t.Error("Expected first article to be selected")
	}
	if !first.PublishedAt.Equal(time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected published_at: %v", first.PublishedAt)
	}
	if got.Articles[1].Selected {
		t.Error("Expected second article to be unselected")
	}
}

func TestReviewRepository_GetMissing(t *testing.T) {
	repo := NewReviewRepository(openTestDB(t))

	got, err := repo.GetReview(context.Background(), "2025-01-09")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil review, got %+v", got)
	}
}

func TestReviewRepository_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository(openTestDB(t))

	first := review.NewRecord("2025-01-09", []*article.Article{
		testArticle("a", "AI Policy", 1, false),
		testArticle("b", "AI Policy", 1, false),
	}, time.Now())
	second := review.NewRecord("2025-01-09", []*article.Article{
		testArticle("c", "Hardware", 2, false),
	}, time.Now())

	if err := repo.SaveReview(ctx, first); err != nil {
		t.Fatalf("Failed to save review: %v", err)
	}
	if err := repo.SaveReview(ctx, second); err != nil {
		t.Fatalf("Failed to save review: %v", err)
	}

	got, err := repo.GetReview(ctx, "2025-01-09")
	if err != nil {
		t.Fatalf("Failed to get review: %v", err)
	}
	if len(got.Articles) != 1 || got.Articles[0].ID != "c" {
		t.Errorf("Expected only article c, got %+v", got.Articles)
	}
}

func TestReviewRepository_SaveInvalidDate(t *testing.T) {
	repo := NewReviewRepository(openTestDB(t))

	err := repo.SaveReview(context.Background(), review.NewRecord("09/01/2025", nil, time.Now()))
	if err == nil {
		t.Error("Expected error for invalid date")
	}
}

func TestReviewRepository_UpdateSelections(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository(openTestDB(t))

	record := review.NewRecord("2025-01-09", []*article.Article{
		testArticle("a", "AI Policy", 1, true),
		testArticle("b", "AI Policy", 1, false),
		testArticle("c", "AI Policy", 1, false),
	}, time.Now())
	if err := repo.SaveReview(ctx, record); err != nil {
		t.Fatalf("Failed to save review: %v", err)
	}

	count, err := repo.UpdateSelections(ctx, "2025-01-09", []string{"b", "c", "missing", "c"})
	if err != nil {
		t.Fatalf("Failed to update selections: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 selected, got %d", count)
	}

	got, err := repo.GetReview(ctx, "2025-01-09")
	if err != nil {
		t.Fatalf("Failed to get review: %v", err)
	}

	expected := map[string]bool{"a": false, "b": true, "c": true}
	for _, a := range got.Articles {
		if a.Selected != expected[a.ID] {
			t.Errorf("Expected %s selected=%v, got %v", a.ID, expected[a.ID], a.Selected)
		}
	}
}

func TestReviewRepository_UpdateSelectionsMissingReview(t *testing.T) {
	repo := NewReviewRepository(openTestDB(t))

	_, err := repo.UpdateSelections(context.Background(), "2025-01-09", []string{"a"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestReviewRepository_ListRecordsAndSummaries(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository(openTestDB(t))

	for _, date := range []string{"2025-01-16", "2025-01-09"} {
		record := review.NewRecord(date, []*article.Article{
			testArticle("a", "AI Policy", 1, true),
			testArticle("b", "Hardware", 1, false),
		}, time.Now())
		if err := repo.SaveReview(ctx, record); err != nil {
			t.Fatalf("Failed to save review: %v", err)
		}
	}

	records, err := repo.ListRecords(ctx)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Date != "2025-01-09" {
		t.Errorf("Expected oldest record first, got %s", records[0].Date)
	}
	if len(records[1].Articles) != 2 {
		t.Errorf("Expected 2 articles, got %d", len(records[1].Articles))
	}

	summaries, err := repo.ListSummaries(ctx)
	if err != nil {
		t.Fatalf("Failed to list summaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].Date != "2025-01-16" {
		t.Errorf("Expected newest summary first, got %s", summaries[0].Date)
	}
	if summaries[0].TotalArticles != 2 || summaries[0].Selected != 1 {
		t.Errorf("Unexpected summary counts: %+v", summaries[0])
	}
	if len(summaries[0].Categories) != 2 || summaries[0].Categories[0] != "AI Policy" {
		t.Errorf("Unexpected categories: %v", summaries[0].Categories)
	}
}

func TestReviewRepository_UpdateEnrichment(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository(openTestDB(t))

	record := review.NewRecord("2025-01-09", []*article.Article{
		testArticle("a", "AI Policy", 1, true),
	}, time.Now())
	if err := repo.SaveReview(ctx, record); err != nil {
		t.Fatalf("Failed to save review: %v", err)
	}

	enriched := testArticle("a", "AI Policy", 1, true)
	enriched.AISummary = "Short summary"
	enriched.AICommentary = "Why it matters"

	if err := repo.UpdateEnrichment(ctx, "2025-01-09", []*article.Article{enriched, nil}); err != nil {
		t.Fatalf("Failed to update enrichment: %v", err)
	}

	got, err := repo.GetReview(ctx, "2025-01-09")
	if err != nil {
		t.Fatalf("Failed to get review: %v", err)
	}
	if got.Articles[0].AISummary != "Short summary" {
		t.Errorf("Expected AI summary to be stored, got %q", got.Articles[0].AISummary)
	}
	if got.Articles[0].AICommentary != "Why it matters" {
		t.Errorf("Expected AI commentary to be stored, got %q", got.Articles[0].AICommentary)
	}
}

func TestReviewRepository_DeleteReview(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository(openTestDB(t))

	record := review.NewRecord("2025-01-09", []*article.Article{
		testArticle("a", "AI Policy", 1, false),
	}, time.Now())
	if err := repo.SaveReview(ctx, record); err != nil {
		t.Fatalf("Failed to save review: %v", err)
	}

	deleted, err := repo.DeleteReview(ctx, "2025-01-09")
	if err != nil {
		t.Fatalf("Failed to delete review: %v", err)
	}
	if !deleted {
		t.Error("Expected review to be deleted")
	}

	deleted, err = repo.DeleteReview(ctx, "2025-01-09")
	if err != nil {
		t.Fatalf("Failed to delete review: %v", err)
	}
	if deleted {
		t.Error("Expected second delete to report nothing removed")
	}

	var count int
	if err := repo.db.QueryRow("SELECT COUNT(*) FROM review_articles").Scan(&count); err != nil {
		t.Fatalf("Failed to count articles: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected articles to cascade, got %d rows", count)
	}
}

func TestNewsletterRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewNewsletterRepository(openTestDB(t))

	got, err := repo.GetNewsletter(ctx, "2025-01-09")
	if err != nil || got != nil {
		t.Fatalf("Expected nil, nil for missing newsletter, got %+v, %v", got, err)
	}

	for _, n := range []Newsletter{
		{Date: "2025-01-09", HTML: "<p>old</p>", ArticleCount: 3},
		{Date: "2025-01-16", HTML: "<p>new</p>", ArticleCount: 5},
		{Date: "2025-01-09", HTML: "<p>rerendered</p>", ArticleCount: 4},
	} {
		if err := repo.SaveNewsletter(ctx, n); err != nil {
			t.Fatalf("Failed to save newsletter: %v", err)
		}
	}

	got, err = repo.GetNewsletter(ctx, "2025-01-09")
	if err != nil {
		t.Fatalf("Failed to get newsletter: %v", err)
	}
	if got.HTML != "<p>rerendered</p>" || got.ArticleCount != 4 {
		t.Errorf("Expected re-render to replace issue, got %+v", got)
	}

	list, err := repo.ListNewsletters(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list newsletters: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 newsletters, got %d", len(list))
	}
	if list[0].Date != "2025-01-16" {
		t.Errorf("Expected newest first, got %s", list[0].Date)
	}

	list, err = repo.ListNewsletters(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to list newsletters: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected limit to apply, got %d", len(list))
	}
}

func TestFeedRepository(t *testing.T) {
	repo := NewFeedRepository(openTestDB(t))

	changed, err := repo.UpsertFeed("mit-ai", "https://example.com/mit.xml", "rss")
	if err != nil {
		t.Fatalf("Failed to upsert feed: %v", err)
	}
	if changed {
		t.Error("Expected new feed not to count as a URL change")
	}
	if _, err := repo.UpsertFeed("alerts", "https://example.com/alerts.xml", "google_alert"); err != nil {
		t.Fatalf("Failed to upsert feed: %v", err)
	}
	if changed, _ := repo.UpsertFeed("alerts", "https://example.com/alerts.xml", "google_alert"); changed {
		t.Error("Expected unchanged URL to report no change")
	}
	changed, err = repo.UpsertFeed("mit-ai", "https://example.com/mit-v2.xml", "rss")
	if err != nil {
		t.Fatalf("Failed to upsert feed: %v", err)
	}
	if !changed {
		t.Error("Expected URL change to be reported")
	}

	count, err := repo.GetFeedCount()
	if err != nil {
		t.Fatalf("Failed to count feeds: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 feeds, got %d", count)
	}

	feed, err := repo.GetFeed("mit-ai")
	if err != nil {
		t.Fatalf("Failed to get feed: %v", err)
	}
	if feed.FeedURL != "https://example.com/mit-v2.xml" {
		t.Errorf("Expected updated URL, got %s", feed.FeedURL)
	}
	if feed.LastFetchedAt != nil {
		t.Errorf("Expected feed never fetched, got %v", feed.LastFetchedAt)
	}

	fetchedAt := time.Date(2025, 1, 9, 6, 0, 0, 0, time.UTC)
	if err := repo.UpdateFeedFetch("mit-ai", fetchedAt, 12, errors.New("timeout")); err != nil {
		t.Fatalf("Failed to update fetch: %v", err)
	}

	feed, err = repo.GetFeed("mit-ai")
	if err != nil {
		t.Fatalf("Failed to get feed: %v", err)
	}
	if feed.LastFetchedAt == nil || !feed.LastFetchedAt.Equal(fetchedAt) {
		t.Errorf("Expected last fetched %v, got %v", fetchedAt, feed.LastFetchedAt)
	}
	if feed.ItemCount != 12 || feed.LastError != "timeout" {
		t.Errorf("Unexpected fetch stats: %+v", feed)
	}

	if err := repo.UpdateFeedFetch("unknown", fetchedAt, 0, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown feed, got %v", err)
	}

	missing, err := repo.GetFeed("unknown")
	if err != nil || missing != nil {
		t.Errorf("Expected nil, nil for unknown feed, got %+v, %v", missing, err)
	}

	feeds, err := repo.GetFeeds()
	if err != nil {
		t.Fatalf("Failed to list feeds: %v", err)
	}
	if len(feeds) != 2 || feeds[0].Name != "alerts" {
		t.Errorf("Expected feeds sorted by name, got %+v", feeds)
	}
}
