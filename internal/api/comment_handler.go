package api

import (
	"errors"
	"net/http"

	"github.com/blog-comments-api/internal/config"
	"github.com/blog-comments-api/internal/models"
	"github.com/blog-comments-api/internal/service"
	"github.com/blog-comments-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "comments").Logger(),
	}
}

// ListComments handles GET /comments/:slug
func (h *CommentHandler) ListComments(c *gin.Context) {
	slug := c.Param("slug")

	comments, err := h.services.Comment.ListComments(c.Request.Context(), slug)
	if err != nil {
		h.writeError(c, err, "Failed to fetch comments")
		return
	}

	c.JSON(http.StatusOK, models.CommentListResponse{Comments: comments})
}

// MissingSlug handles GET /comments without a slug
func (h *CommentHandler) MissingSlug(c *gin.Context) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "slug is required"})
}

// CreateComment handles POST /comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Server.MaxBodyBytes)

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("Rejected malformed comment payload")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: validation.BoundsMessage})
		return
	}
	req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	req.ClientIdentity = c.ClientIP()

	comment, created, err := h.services.Comment.CreateComment(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err, "Failed to create comment")
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, models.CommentResponse{Comment: comment})
}

// Preflight handles OPTIONS /comments for cross-origin submissions
func (h *CommentHandler) Preflight(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Idempotency-Key")
	c.AbortWithStatus(http.StatusNoContent)
}

// writeError maps service errors to status codes. Storage details are
// logged and replaced by fallback.
func (h *CommentHandler) writeError(c *gin.Context, err error, fallback string) {
	var invalid *service.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: invalid.Message})
	case errors.Is(err, service.ErrIdempotencyConflict):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: service.IdempotencyConflictMessage})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Error: service.RateLimitedMessage})
	default:
		h.log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Msg(fallback)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fallback})
	}
}
