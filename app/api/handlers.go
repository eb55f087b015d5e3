package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/news-curator/app/database"
	"github.com/lysyi3m/news-curator/app/feed"
	"github.com/lysyi3m/news-curator/app/newsletter"
	"github.com/lysyi3m/news-curator/app/personalization"
	"github.com/lysyi3m/news-curator/app/review"
	"github.com/lysyi3m/news-curator/app/tasks"
)

const (
	defaultRecommendations = 10
	maxRecommendations     = 100
	archiveSize            = 20
)

func NewHandler(configCache *feed.ConfigCache, feedRepo database.FeedStore, reviewRepo database.ReviewStore,
	newsletterRepo database.NewsletterStore, profiles *personalization.ProfileCache, engine *personalization.Engine,
	archive ArchiveInterface, factory *tasks.Factory, scheduler TaskRunner, autoSuggestThreshold float64, version string) *Handler {
	if autoSuggestThreshold <= 0 {
		autoSuggestThreshold = personalization.DefaultAutoSuggestThreshold
	}

	return &Handler{
		configCache:          configCache,
		feedRepo:             feedRepo,
		reviewRepo:           reviewRepo,
		newsletterRepo:       newsletterRepo,
		profiles:             profiles,
		engine:               engine,
		archive:              archive,
		factory:              factory,
		scheduler:            scheduler,
		autoSuggestThreshold: autoSuggestThreshold,
		version:              version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	profile := h.profiles.Get()
	health["profile"] = map[string]interface{}{
		"neutral":    profile.IsNeutral(),
		"selections": profile.TotalSelections,
		"built_at":   h.profiles.BuiltAt(),
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetNewsletter(c *gin.Context) {
	date := c.Param("date")
	if !review.ValidDate(date) {
		c.Status(http.StatusBadRequest)
		return
	}

	issue, err := h.newsletterRepo.GetNewsletter(c.Request.Context(), date)
	if err != nil {
		slog.Error("Database error", "operation", "get_newsletter", "date", date, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if issue == nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("X-Newsletter-Articles", strconv.Itoa(issue.ArticleCount))
	c.Header("X-Last-Updated", issue.CreatedAt.Format(time.RFC3339))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(issue.HTML))
}

func (h *Handler) GetNewsletterFeed(c *gin.Context) {
	newsletters, err := h.newsletterRepo.ListNewsletters(c.Request.Context(), archiveSize)
	if err != nil {
		slog.Error("Database error", "operation", "list_newsletters", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.archive.Run(newsletters)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(newsletters)))
	c.String(http.StatusOK, rss)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	configs := h.configCache.GetEnabledConfigs()

	feeds := make([]map[string]interface{}, 0, len(configs))

	for _, feedConfig := range configs {
		feedInfo := map[string]interface{}{
			"name":      feedConfig.Name,
			"url":       feedConfig.URL,
			"kind":      feedConfig.Kind,
			"priority":  feedConfig.Priority,
			"category":  feedConfig.Category,
			"max_items": feedConfig.Settings.MaxItems,
			"filters":   len(feedConfig.Filters),
		}

		if feed, err := h.feedRepo.GetFeed(feedConfig.Name); err == nil && feed != nil {
			feedInfo["last_fetched_at"] = feed.LastFetchedAt
			feedInfo["last_error"] = feed.LastError
			feedInfo["item_count"] = feed.ItemCount
		}

		feeds = append(feeds, feedInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) APIListReviews(c *gin.Context) {
	summaries, err := h.reviewRepo.ListSummaries(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_reviews", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": summaries,
		"total":   len(summaries),
	})
}

func (h *Handler) APICreateReview(c *gin.Context) {
	task := h.factory.NewCreateReviewTask(time.Now())

	if err := h.scheduler.Submit(c.Request.Context(), task); err != nil {
		slog.Error("Review creation failed", "date", task.GetTarget(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create review",
			"details": err.Error(),
		})
		return
	}

	record := task.Record()
	c.JSON(http.StatusCreated, gin.H{
		"summary": record.Summary(),
		"review":  record,
		"task":    gin.H{"id": task.GetID(), "type": task.GetType()},
	})
}

func (h *Handler) APIGetReview(c *gin.Context) {
	record, ok := h.loadReview(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": record.Summary(),
		"review":  record,
	})
}

func (h *Handler) APIUpdateSelections(c *gin.Context) {
	date := c.Param("date")
	if !review.ValidDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review date"})
		return
	}

	var req selectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	count, err := h.reviewRepo.UpdateSelections(c.Request.Context(), date, req.ArticleIDs)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "update_selections", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// New selections change the history the profile learns from.
	rebuildTask := h.factory.NewRebuildProfileTask()
	if err := h.scheduler.EnqueueTask(rebuildTask); err != nil {
		slog.Warn("Failed to enqueue profile rebuild", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"date":     date,
		"selected": count,
		"ignored":  len(req.ArticleIDs) - count,
	})
}

func (h *Handler) APIDeleteReview(c *gin.Context) {
	date := c.Param("date")
	if !review.ValidDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review date"})
		return
	}

	deleted, err := h.reviewRepo.DeleteReview(c.Request.Context(), date)
	if err != nil {
		slog.Error("Database error", "operation", "delete_review", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "date": date})
}

func (h *Handler) APIRecommendations(c *gin.Context) {
	count := defaultRecommendations
	if value := c.Query("count"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "count must be a non-negative integer"})
			return
		}
		count = min(parsed, maxRecommendations)
	}

	record, ok := h.loadReview(c)
	if !ok {
		return
	}

	profile := h.profiles.Get()
	predictions := h.engine.Recommend(record.Articles, profile, count)

	c.JSON(http.StatusOK, gin.H{
		"date":            record.Date,
		"personalized":    !profile.IsNeutral(),
		"recommendations": toPredictionResponses(predictions),
	})
}

func (h *Handler) APISuggestions(c *gin.Context) {
	threshold := h.autoSuggestThreshold
	if value := c.Query("threshold"); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil || parsed < 0 || parsed > personalization.MaxLikelihood {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be a number between 0 and 100"})
			return
		}
		threshold = parsed
	}

	record, ok := h.loadReview(c)
	if !ok {
		return
	}

	profile := h.profiles.Get()
	predictions := h.engine.AutoSuggest(record.Articles, profile, threshold)

	c.JSON(http.StatusOK, gin.H{
		"date":         record.Date,
		"threshold":    threshold,
		"personalized": !profile.IsNeutral(),
		"suggestions":  toPredictionResponses(predictions),
	})
}

func (h *Handler) APIGetProfile(c *gin.Context) {
	profile := h.profiles.Get()

	c.JSON(http.StatusOK, gin.H{
		"profile":  profile,
		"summary":  profile.Summary(),
		"built_at": h.profiles.BuiltAt(),
	})
}

// APIRebuildProfile never fails the request: when the history cannot be
// read the previous profile is returned with the error.
func (h *Handler) APIRebuildProfile(c *gin.Context) {
	task := h.factory.NewRebuildProfileTask()

	response := gin.H{"rebuilt": true}
	if err := h.scheduler.Submit(c.Request.Context(), task); err != nil {
		slog.Warn("Profile rebuild failed, keeping previous profile", "error", err)
		response["rebuilt"] = false
		response["error"] = err.Error()
	}

	profile := h.profiles.Get()
	response["profile"] = profile
	response["summary"] = profile.Summary()
	response["built_at"] = h.profiles.BuiltAt()
	c.JSON(http.StatusOK, response)
}

func (h *Handler) APIListNewsletters(c *gin.Context) {
	newsletters, err := h.newsletterRepo.ListNewsletters(c.Request.Context(), archiveSize)
	if err != nil {
		slog.Error("Database error", "operation", "list_newsletters", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	items := make([]gin.H, 0, len(newsletters))
	for _, n := range newsletters {
		items = append(items, gin.H{
			"date":          n.Date,
			"article_count": n.ArticleCount,
			"created_at":    n.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"newsletters": items, "total": len(items)})
}

func (h *Handler) APIGenerateNewsletter(c *gin.Context) {
	date := c.Param("date")
	if !review.ValidDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid newsletter date"})
		return
	}

	task := h.factory.NewGenerateNewsletterTask(date)
	err := h.scheduler.Submit(c.Request.Context(), task)
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	case errors.Is(err, newsletter.ErrNothingSelected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No articles selected for this review"})
		return
	case err != nil:
		slog.Error("Newsletter generation failed", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to generate newsletter",
			"details": err.Error(),
		})
		return
	}

	result := task.Newsletter()
	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"date":          result.Date,
		"article_count": result.ArticleCount,
		"url":           "/newsletters/" + result.Date,
	})
}

func (h *Handler) loadReview(c *gin.Context) (*review.Record, bool) {
	date := c.Param("date")
	if !review.ValidDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review date"})
		return nil, false
	}

	record, err := h.reviewRepo.GetReview(c.Request.Context(), date)
	if err != nil {
		slog.Error("Database error", "operation", "get_review", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}

	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return nil, false
	}

	return record, true
}
