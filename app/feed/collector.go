package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/news-curator/app/article"
)

const maxConcurrentFetches = 8

// Collector fetches every enabled feed and turns the items into articles.
type Collector struct {
	httpClient *http.Client
	parser     *Parser
	filterer   *Filterer
	userAgent  string
	maxAge     time.Duration
}

func NewCollector(httpClient *http.Client, parser *Parser, filterer *Filterer, userAgent string, maxAge time.Duration) *Collector {
	return &Collector{
		httpClient: httpClient,
		parser:     parser,
		filterer:   filterer,
		userAgent:  userAgent,
		maxAge:     maxAge,
	}
}

// Collect fetches the feeds in parallel. A failing feed is logged and
// reported in its Result; the others are still used. Articles keep feed
// order then item order, and the first article seen for a URL wins.
func (c *Collector) Collect(ctx context.Context, configs []*Config, now time.Time) ([]*article.Article, []Result) {
	perFeed := make([][]*article.Article, len(configs))
	results := make([]Result, len(configs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for i, feedConfig := range configs {
		g.Go(func() error {
			articles, result := c.collectFeed(gctx, feedConfig, now)
			perFeed[i] = articles
			results[i] = result
			return nil
		})
	}
	// Feed errors are carried in results; the goroutines never fail.
	g.Wait()

	seen := make(map[string]bool)
	var collected []*article.Article
	duplicates := 0

	for _, articles := range perFeed {
		for _, a := range articles {
			key := a.URL
			if key == "" {
				key = a.ID
			}
			if seen[key] {
				duplicates++
				continue
			}
			seen[key] = true
			collected = append(collected, a)
		}
	}

	slog.Info("Feeds collected",
		"feeds", len(configs),
		"articles", len(collected),
		"duplicates", duplicates)

	return collected, results
}

func (c *Collector) collectFeed(ctx context.Context, feedConfig *Config, now time.Time) ([]*article.Article, Result) {
	result := Result{Feed: feedConfig.Name}

	data, err := c.fetchFeed(ctx, feedConfig)
	if err != nil {
		result.Err = fmt.Errorf("failed to fetch feed: %w", err)
		slog.Warn("Feed fetch failed", "feed", feedConfig.Name, "error", err)
		return nil, result
	}

	_, items, err := c.parser.Run(data)
	if err != nil {
		result.Err = err
		slog.Warn("Feed parse failed", "feed", feedConfig.Name, "error", err)
		return nil, result
	}

	if limit := feedConfig.Settings.MaxItems; limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	result.Total = len(items)

	cutoff := now.Add(-c.maxAge)
	recent := make([]Item, 0, len(items))
	for _, item := range items {
		if c.maxAge > 0 && !item.PublishedAt.IsZero() && item.PublishedAt.Before(cutoff) {
			continue
		}
		recent = append(recent, item)
	}

	filtered := c.filterer.Run(recent, feedConfig)
	for _, item := range filtered {
		if item.IsFiltered {
			result.Filtered++
		}
	}

	raws := c.parser.ToRaw(filtered, feedConfig)
	articles := make([]*article.Article, 0, len(raws))
	for _, raw := range raws {
		articles = append(articles, article.New(raw, now))
	}
	result.Kept = len(articles)

	slog.Debug("Feed processed",
		"feed", feedConfig.Name,
		"total", result.Total,
		"filtered", result.Filtered,
		"kept", result.Kept)

	return articles, result
}

func (c *Collector) fetchFeed(ctx context.Context, feedConfig *Config) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(feedConfig.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", feedConfig.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
