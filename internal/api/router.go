package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/blog-comments-api/internal/config"
	"github.com/blog-comments-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader    = "X-Request-ID"
	maxRequestIDLength = 128
)

// Store is the subset of the database used by the operational endpoints
type Store interface {
	HealthCheck(ctx context.Context) error
	Stats() sql.DBStats
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, store Store, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	// Route on the escaped path so a slug may contain an encoded "/"
	router.UseRawPath = true
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Warn().Err(err).Msg("Invalid TRUSTED_PROXIES, trusting none")
		router.SetTrustedProxies(nil)
	}

	// Middleware
	router.Use(requestIDMiddleware())
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	commentHandler := NewCommentHandler(services, cfg, log)

	// Health check
	router.GET("/health", healthCheck(store))
	router.GET("/metrics", metricsHandler(services, store))

	// Comment endpoints
	comments := router.Group("/comments")
	{
		comments.GET("", commentHandler.MissingSlug)
		comments.GET("/:slug", commentHandler.ListComments)
		comments.POST("", commentHandler.CreateComment)
		comments.OPTIONS("", commentHandler.Preflight)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if store != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := store.HealthCheck(ctx); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "blog-comments-api",
		})
	}
}

// metricsHandler returns comment and connection pool metrics
func metricsHandler(services *service.Services, store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		commentsCount, _ := services.Comment.Count(c.Request.Context())

		body := gin.H{
			"database": gin.H{
				"comments": commentsCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		}
		if store != nil {
			stats := store.Stats()
			body["pool"] = gin.H{
				"open_connections": stats.OpenConnections,
				"in_use":           stats.InUse,
				"idle":             stats.Idle,
				"wait_count":       stats.WaitCount,
			}
		}

		c.JSON(http.StatusOK, body)
	}
}

// requestIDMiddleware echoes or assigns an X-Request-ID
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("request_id", c.GetString("request_id")).
					Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString("request_id")).
			Msg("Request completed")
	}
}

// corsMiddleware allows cross-origin reads and submissions from any origin
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Next()
	}
}
