package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/health", handler.GetHealth)

	r.GET("/newsletters/feed.xml", handler.GetNewsletterFeed)
	r.GET("/newsletters/:date", handler.GetNewsletter)

	// API endpoints (conditionally enabled with authentication)
	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.GET("/feeds", handler.APIListFeeds)

			api.GET("/reviews", handler.APIListReviews)
			api.POST("/reviews", handler.APICreateReview)
			api.GET("/reviews/:date", handler.APIGetReview)
			api.PUT("/reviews/:date/selections", handler.APIUpdateSelections)
			api.DELETE("/reviews/:date", handler.APIDeleteReview)
			api.GET("/reviews/:date/recommendations", handler.APIRecommendations)
			api.GET("/reviews/:date/suggestions", handler.APISuggestions)

			api.GET("/profile", handler.APIGetProfile)
			api.POST("/profile/rebuild", handler.APIRebuildProfile)

			api.GET("/newsletters", handler.APIListNewsletters)
			api.POST("/newsletters/:date", handler.APIGenerateNewsletter)
		}
		slog.Info("API endpoints enabled with authentication")
	} else {
		slog.Info("API endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"health":     "/health",
			"newsletter": "/newsletters/<date>",
			"archive":    "/newsletters/feed.xml",
		}

		if apiAccessKey != "" {
			endpoints["reviews"] = "/api/reviews (requires X-API-Key header)"
			endpoints["selections"] = "/api/reviews/<date>/selections (PUT, requires X-API-Key header)"
			endpoints["recommendations"] = "/api/reviews/<date>/recommendations?count=<n> (requires X-API-Key header)"
			endpoints["suggestions"] = "/api/reviews/<date>/suggestions?threshold=<0-100> (requires X-API-Key header)"
			endpoints["profile"] = "/api/profile (requires X-API-Key header)"
			endpoints["generate"] = "/api/newsletters/<date> (POST, requires X-API-Key header)"
		}

		c.JSON(http.StatusOK, gin.H{
			"service":     "News Curator",
			"version":     handler.version,
			"description": "Weekly AI newsletter curation with learned reviewer preferences",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
