package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/lysyi3m/news-curator/app/article"
	"github.com/lysyi3m/news-curator/app/curation"
	"github.com/lysyi3m/news-curator/app/database"
	"github.com/lysyi3m/news-curator/app/feed"
	"github.com/lysyi3m/news-curator/app/newsletter"
	"github.com/lysyi3m/news-curator/app/personalization"
	"github.com/lysyi3m/news-curator/app/review"
	"github.com/lysyi3m/news-curator/app/scoring"
)

var testNow = time.Date(2025, 1, 9, 6, 0, 0, 0, time.UTC)

func rssFeed(items ...string) string {
	body := ""
	for _, item := range items {
		body += item
	}
	return `<?xml version="1.0"?><rss version="2.0"><channel><title>Feed</title>` + body + `</channel></rss>`
}

func rssItem(title, link string, published time.Time) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><description>About %s</description><pubDate>%s</pubDate></item>`,
		title, link, title, published.Format(time.RFC1123Z))
}

type testEnv struct {
	db          *database.DB
	reviewRepo  *database.ReviewRepository
	feedRepo    *database.FeedRepository
	profiles    *personalization.ProfileCache
	configCache *feed.ConfigCache
	factory     *Factory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/policy", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssFeed(
			rssItem("Canada AI regulation advances", "https://example.com/regulation", testNow.Add(-2*time.Hour)),
			rssItem("New GPU cluster announced", "https://example.com/gpu", testNow.Add(-5*time.Hour)),
		)))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	db, err := database.Open(filepath.Join(t.TempDir(), "curator.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	configCache := feed.NewConfigCache(t.TempDir())
	for _, feedConfig := range []*feed.Config{
		{Name: "policy", URL: server.URL + "/policy", Category: "AI Policy", Settings: feed.ConfigSettings{Enabled: true, Timeout: 5}},
		{Name: "broken", URL: server.URL + "/broken", Settings: feed.ConfigSettings{Enabled: true, Timeout: 5}},
	} {
		if err := configCache.Add(feedConfig); err != nil {
			t.Fatalf("Failed to add feed config: %v", err)
		}
	}

	reviewRepo := database.NewReviewRepository(db)
	feedRepo := database.NewFeedRepository(db)
	profiles := personalization.NewProfileCache(personalization.NewBuilder(personalization.DefaultConfig()))

	collector := feed.NewCollector(server.Client(), feed.NewParser(), feed.NewFilterer(nil), "test-agent", 7*24*time.Hour)
	curator := curation.NewCurator(
		scoring.NewScorer(scoring.DefaultConfig()),
		personalization.NewEngine(personalization.DefaultLikelihoodWeights()),
		curation.Options{Personalize: true, TopN: 50})

	renderer, err := newsletter.NewRenderer()
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}
	service := newsletter.NewService(reviewRepo, database.NewNewsletterRepository(db), nil, renderer, newsletter.Options{Name: "AI This Week"})

	topics := []scoring.Topic{
		scoring.NewTopic("Regulation", []string{"regulation"}, article.PriorityHigh, "AI Policy"),
	}

	return &testEnv{
		db:          db,
		reviewRepo:  reviewRepo,
		feedRepo:    feedRepo,
		profiles:    profiles,
		configCache: configCache,
		factory:     NewFactory(configCache, collector, curator, profiles, reviewRepo, feedRepo, service, topics),
	}
}

func TestNewTask(t *testing.T) {
	first := NewTask(TaskTypeCreateReview, "2025-01-09")
	second := NewTask(TaskTypeCreateReview, "2025-01-09")

	if first.ID == "" || first.ID == second.ID {
		t.Errorf("Expected unique task IDs, got %q and %q", first.ID, second.ID)
	}
	if first.GetTarget() != "2025-01-09" {
		t.Errorf("Expected target 2025-01-09, got %s", first.GetTarget())
	}
	if first.GetDuration() != 0 {
		t.Error("Expected zero duration before start")
	}

	if first.GetMaxRetries() != 2 {
		t.Errorf("Expected 2 retries for review creation, got %d", first.GetMaxRetries())
	}
	if profile := NewTask(TaskTypeRebuildProfile, "profile"); profile.GetMaxRetries() != DefaultMaxRetries {
		t.Errorf("Expected default retries for profile rebuild, got %d", profile.GetMaxRetries())
	}

	for i := 0; i < first.GetMaxRetries(); i++ {
		if !first.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i+1)
		}
		first.IncrementRetryCount()
	}
	if first.CanRetry() {
		t.Error("Expected no retries left")
	}
}

func TestCreateReviewTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, syncTask := range env.factory.NewSyncFeedConfigTasks() {
		if err := syncTask.Execute(ctx); err != nil {
			t.Fatalf("Failed to sync feed: %v", err)
		}
	}

	task := env.factory.NewCreateReviewTask(testNow)
	if task.GetTarget() != "2025-01-09" {
		t.Errorf("Expected review date 2025-01-09, got %s", task.GetTarget())
	}

	if err := task.Execute(ctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	record, err := env.reviewRepo.GetReview(ctx, "2025-01-09")
	if err != nil || record == nil {
		t.Fatalf("Expected stored review, got %v, %v", record, err)
	}
	if len(record.Articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(record.Articles))
	}
	if record.Articles[0].URL != "https://example.com/regulation" {
		t.Errorf("Expected topic match ranked first, got %s", record.Articles[0].URL)
	}
	if task.Record() == nil || len(task.Record().Articles) != 2 {
		t.Error("Expected task to expose the stored record")
	}

	policy, err := env.feedRepo.GetFeed("policy")
	if err != nil || policy == nil {
		t.Fatalf("Expected policy feed, got %v, %v", policy, err)
	}
	if policy.ItemCount != 2 || policy.LastError != "" || policy.LastFetchedAt == nil {
		t.Errorf("Unexpected fetch stats for policy: %+v", policy)
	}

	broken, err := env.feedRepo.GetFeed("broken")
	if err != nil || broken == nil {
		t.Fatalf("Expected broken feed, got %v, %v", broken, err)
	}
	if broken.LastError == "" {
		t.Error("Expected fetch error recorded for broken feed")
	}
}

func TestCreateReviewTask_CarriesSelections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.factory.NewCreateReviewTask(testNow).Execute(ctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	record, _ := env.reviewRepo.GetReview(ctx, "2025-01-09")
	selectedID := record.Articles[1].ID
	if _, err := env.reviewRepo.UpdateSelections(ctx, "2025-01-09", []string{selectedID}); err != nil {
		t.Fatalf("Failed to update selections: %v", err)
	}

	if err := env.factory.NewCreateReviewTask(testNow.Add(time.Hour)).Execute(ctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	record, _ = env.reviewRepo.GetReview(ctx, "2025-01-09")
	selected := record.Selected()
	if len(selected) != 1 || selected[0].ID != selectedID {
		t.Errorf("Expected selection of %s to survive rebuild, got %+v", selectedID, selected)
	}
}

type mockRecordSource struct {
	records []review.Record
	err     error
}

func (m *mockRecordSource) ListRecords(ctx context.Context) ([]review.Record, error) {
	return m.records, m.err
}

func TestRebuildProfileTask(t *testing.T) {
	profiles := personalization.NewProfileCache(personalization.NewBuilder(personalization.DefaultConfig()))

	failing := NewRebuildProfileTask(profiles, &mockRecordSource{err: errors.New("disk full")})
	if err := failing.Execute(context.Background()); err == nil {
		t.Error("Expected error from failing source")
	}
	if !profiles.Get().IsNeutral() {
		t.Error("Expected neutral profile to stay active after failure")
	}

	articles := []*article.Article{
		{ID: "1", Source: "GovCanada", Category: "AI Policy", Score: 3, Selected: true},
		{ID: "2", Source: "GovCanada", Category: "AI Policy", Score: 2, Selected: true},
		{ID: "3", Source: "Wired", Category: "Hardware", Score: 1},
		{ID: "4", Source: "Wired", Category: "Hardware", Score: 1},
	}
	source := &mockRecordSource{records: []review.Record{review.NewRecord("2025-01-02", articles, testNow)}}

	if err := NewRebuildProfileTask(profiles, source).Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if profiles.Get().IsNeutral() {
		t.Error("Expected learned profile after rebuild")
	}
}

func TestGenerateNewsletterTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	missing := env.factory.NewGenerateNewsletterTask("2025-01-09")
	err := missing.Execute(ctx)
	if !errors.Is(err, database.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if missing.CanRetry() {
		t.Error("Expected no retries for a missing review")
	}

	if err := env.factory.NewCreateReviewTask(testNow).Execute(ctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	record, _ := env.reviewRepo.GetReview(ctx, "2025-01-09")
	if _, err := env.reviewRepo.UpdateSelections(ctx, "2025-01-09", []string{record.Articles[0].ID}); err != nil {
		t.Fatalf("Failed to update selections: %v", err)
	}

	task := env.factory.NewGenerateNewsletterTask("2025-01-09")
	if err := task.Execute(ctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if task.Newsletter() == nil || task.Newsletter().ArticleCount != 1 {
		t.Errorf("Expected newsletter with 1 article, got %+v", task.Newsletter())
	}
}

type mockTask struct {
	Task
	done  chan struct{}
	fails int
	calls int
}

func (m *mockTask) Execute(ctx context.Context) error {
	m.calls++
	if m.calls <= m.fails {
		return errors.New("transient")
	}
	close(m.done)
	return nil
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewScheduler(&Factory{}, 1, "not a cron", "", time.UTC)
	if err == nil {
		t.Error("Expected error for invalid cron schedule")
	}
}

func TestScheduler_ExecutesAndRetries(t *testing.T) {
	env := newTestEnv(t)

	scheduler, err := NewScheduler(env.factory, 2, "0 6 * * 4", "0 3 * * *", time.UTC)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	task := &mockTask{Task: NewTask(TaskTypeRebuildProfile, "test"), done: make(chan struct{}), fails: 1}
	if err := scheduler.EnqueueTask(task); err != nil {
		t.Fatalf("Failed to enqueue task: %v", err)
	}

	select {
	case <-task.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected task to succeed after a retry")
	}

	if task.GetRetryCount() != 1 {
		t.Errorf("Expected 1 retry, got %d", task.GetRetryCount())
	}
}

func TestScheduler_Submit(t *testing.T) {
	env := newTestEnv(t)

	scheduler, err := NewScheduler(env.factory, 1, "", "", nil)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}

	task := env.factory.NewCreateReviewTask(testNow)
	if err := scheduler.Submit(context.Background(), task); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if task.Record() == nil {
		t.Error("Expected review record after Submit")
	}
}
