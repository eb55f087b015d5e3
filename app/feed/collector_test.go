package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var collectNow = time.Date(2024, 5, 16, 9, 0, 0, 0, time.UTC)

func rssItem(title, link string, published time.Time) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><description>About %s</description><pubDate>%s</pubDate></item>`,
		title, link, title, published.Format(time.RFC1123Z))
}

func rssFeed(items ...string) string {
	body := ""
	for _, item := range items {
		body += item
	}
	return `<?xml version="1.0"?><rss version="2.0"><channel><title>Feed</title>` + body + `</channel></rss>`
}

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/first", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssFeed(
			rssItem("Fresh policy news", "https://example.com/policy", collectNow.Add(-2*time.Hour)),
			rssItem("Old news", "https://example.com/old", collectNow.Add(-30*24*time.Hour)),
			rssItem("Sponsored post", "https://example.com/ad", collectNow.Add(-time.Hour)),
		)))
	})
	mux.HandleFunc("/second", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssFeed(
			rssItem("Policy news again", "https://example.com/policy", collectNow.Add(-time.Hour)),
			rssItem("Research result", "https://example.com/research", collectNow.Add(-3*time.Hour)),
		)))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestCollectorCollect(t *testing.T) {
	server := newFeedServer(t)
	collector := NewCollector(server.Client(), NewParser(), NewFilterer([]string{"sponsored"}), "test-agent", 7*24*time.Hour)

	configs := []*Config{
		{Name: "first", URL: server.URL + "/first", Kind: KindRSS, Priority: "high", Category: "AI Policy", Settings: ConfigSettings{Enabled: true, Timeout: 5}},
		{Name: "broken", URL: server.URL + "/broken", Kind: KindRSS, Settings: ConfigSettings{Enabled: true, Timeout: 5}},
		{Name: "second", URL: server.URL + "/second", Kind: KindRSS, Settings: ConfigSettings{Enabled: true, Timeout: 5}},
	}

	articles, results := collector.Collect(context.Background(), configs, collectNow)

	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(articles))
	}
	if articles[0].Title != "Fresh policy news" || articles[0].Source != "first" {
		t.Errorf("Expected first feed's article to win the duplicate, got %s from %s", articles[0].Title, articles[0].Source)
	}
	if articles[0].Category != "AI Policy" {
		t.Errorf("Expected feed category, got %q", articles[0].Category)
	}
	if articles[1].Title != "Research result" {
		t.Errorf("Expected research article second, got %s", articles[1].Title)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].Total != 3 || results[0].Filtered != 1 || results[0].Kept != 1 {
		t.Errorf("Unexpected first feed result: %+v", results[0])
	}
	if results[1].Err == nil {
		t.Error("Expected error for broken feed")
	}
	if results[2].Kept != 2 {
		t.Errorf("Expected second feed to keep 2 articles before dedupe, got %d", results[2].Kept)
	}
}

func TestCollectorMaxItems(t *testing.T) {
	server := newFeedServer(t)
	collector := NewCollector(server.Client(), NewParser(), NewFilterer(nil), "test-agent", 0)

	configs := []*Config{
		{Name: "first", URL: server.URL + "/first", Kind: KindRSS, Settings: ConfigSettings{Enabled: true, Timeout: 5, MaxItems: 2}},
	}

	articles, results := collector.Collect(context.Background(), configs, collectNow)

	if results[0].Total != 2 {
		t.Errorf("Expected max items to cap total at 2, got %d", results[0].Total)
	}
	if len(articles) != 2 {
		t.Errorf("Expected old articles kept when max age is disabled, got %d", len(articles))
	}
}

func TestCollectorNoFeeds(t *testing.T) {
	collector := NewCollector(http.DefaultClient, NewParser(), NewFilterer(nil), "test-agent", time.Hour)

	articles, results := collector.Collect(context.Background(), nil, collectNow)
	if len(articles) != 0 || len(results) != 0 {
		t.Errorf("Expected empty output, got %d articles and %d results", len(articles), len(results))
	}
}
