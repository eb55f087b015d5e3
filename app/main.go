package main

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/news-curator/app/api"
	"github.com/lysyi3m/news-curator/app/cfg"
	"github.com/lysyi3m/news-curator/app/config"
	"github.com/lysyi3m/news-curator/app/curation"
	"github.com/lysyi3m/news-curator/app/database"
	"github.com/lysyi3m/news-curator/app/feed"
	"github.com/lysyi3m/news-curator/app/newsletter"
	"github.com/lysyi3m/news-curator/app/personalization"
	"github.com/lysyi3m/news-curator/app/scoring"
	"github.com/lysyi3m/news-curator/app/summarizer"
	"github.com/lysyi3m/news-curator/app/tasks"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting News Curator server", "version", appConfig.Version)

	curatorConfig, err := config.NewLoader(appConfig.ConfigFile).Load()
	if err != nil {
		slog.Error("Failed to load curator configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(appConfig.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appConfig.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	feedRepo := database.NewFeedRepository(db)
	reviewRepo := database.NewReviewRepository(db)
	newsletterRepo := database.NewNewsletterRepository(db)

	configCache := feed.NewConfigCache(appConfig.FeedsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load feed configurations", "error", err)
		os.Exit(1)
	}
	registerInlineFeeds(configCache, curatorConfig)
	slog.Info("Feed configurations loaded", "count", configCache.GetConfigCount())

	httpClient := &http.Client{Timeout: 30 * time.Second}

	collector := feed.NewCollector(httpClient, feed.NewParser(),
		feed.NewFilterer(curatorConfig.ExcludePatterns), appConfig.UserAgent, curatorConfig.MaxAge())
	extractor := feed.NewContentExtractor(httpClient, appConfig.UserAgent, curatorConfig.Gemini.RequestTimeout())

	scorer := scoring.NewScorer(curatorConfig.ScoringConfig())
	engine := personalization.NewEngine(curatorConfig.Personalization.Likelihood)
	profiles := personalization.NewProfileCache(personalization.NewBuilder(curatorConfig.BuilderConfig()))
	curator := curation.NewCurator(scorer, engine, curation.Options{
		Personalize: curatorConfig.Personalization.Enabled,
		TopN:        curatorConfig.Newsletter.ReviewSize,
	})

	var generator summarizer.TextGenerator
	if appConfig.GeminiAPIKey != "" {
		model := cmp.Or(appConfig.GeminiModel, curatorConfig.Gemini.Model)
		generator = summarizer.NewGeminiClient(appConfig.GeminiAPIKey, model, curatorConfig.Gemini.RequestTimeout())
		slog.Info("AI summaries enabled", "model", model)
	} else {
		slog.Info("AI summaries disabled (GEMINI_API_KEY not set)")
	}

	newsletterSummarizer := summarizer.NewSummarizer(generator, extractor, summarizer.Options{
		NewsletterName:    curatorConfig.Newsletter.Name,
		IncludeCommentary: curatorConfig.Gemini.IncludeCommentary,
		MaxSummaryLength:  curatorConfig.Gemini.MaxSummaryLength,
		Concurrency:       curatorConfig.Gemini.Concurrency,
		ThemeLength:       curatorConfig.ThemeOfWeek.Length,
	})

	renderer, err := newsletter.NewRenderer()
	if err != nil {
		slog.Error("Failed to load newsletter template", "error", err)
		os.Exit(1)
	}

	newsletterOptions := newsletter.Options{
		Name:         curatorConfig.Newsletter.Name,
		Tagline:      curatorConfig.Newsletter.Tagline,
		MaxArticles:  curatorConfig.Newsletter.MaxArticles,
		ThemeEnabled: curatorConfig.ThemeOfWeek.Enabled,
		BaseURL:      appConfig.BaseUrl,
		Version:      appConfig.Version,
	}
	newsletterService := newsletter.NewService(reviewRepo, newsletterRepo, newsletterSummarizer, renderer, newsletterOptions)

	taskFactory := tasks.NewFactory(configCache, collector, curator, profiles, reviewRepo, feedRepo,
		newsletterService, curatorConfig.ScoringTopics())

	scheduler, err := tasks.NewScheduler(taskFactory, appConfig.WorkerCount,
		appConfig.ReviewSchedule, appConfig.ProfileSchedule, time.Local)
	if err != nil {
		slog.Error("Failed to create scheduler", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting background scheduler",
		"workers", appConfig.WorkerCount,
		"review_schedule", appConfig.ReviewSchedule,
		"profile_schedule", appConfig.ProfileSchedule)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(configCache, feedRepo, reviewRepo, newsletterRepo, profiles, engine,
		newsletter.NewArchive(newsletterOptions), taskFactory, scheduler,
		curatorConfig.Personalization.AutoSuggestThreshold, appConfig.Version)
	server := api.NewServer(apiHandler, appConfig.APIAccessKey)

	// Review creation and newsletter generation run inline and can take a while
	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("News Curator shutdown complete")
}

// registerInlineFeeds adds the sources declared in the curator config.
// Files in the feeds directory win on name clashes.
func registerInlineFeeds(configCache *feed.ConfigCache, curatorConfig *config.Config) {
	inline := []struct {
		kind    feed.Kind
		sources []config.SourceConfig
	}{
		{feed.KindGoogleAlert, curatorConfig.GoogleAlerts},
		{feed.KindRSS, curatorConfig.RSSFeeds},
	}

	for _, group := range inline {
		for _, source := range group.sources {
			feedConfig := &feed.Config{
				Name:     source.Name,
				URL:      source.URL,
				Kind:     group.kind,
				Priority: source.Priority,
				Category: source.Category,
				Settings: feed.ConfigSettings{Enabled: true},
			}
			if err := configCache.Add(feedConfig); err != nil {
				slog.Warn("Skipping inline feed", "feed", source.Name, "error", err)
			}
		}
	}
}
