package service

import (
	"context"

	"github.com/blog-comments-api/internal/config"
	"github.com/blog-comments-api/internal/models"
	"github.com/blog-comments-api/internal/ratelimit"
	"github.com/blog-comments-api/internal/repository"
	"github.com/rs/zerolog"
)

// CommentService defines the interface for comment operations
type CommentService interface {
	// ListComments returns all comments for a post, newest first
	ListComments(ctx context.Context, slug string) ([]models.Comment, error)
	// CreateComment validates and stores a comment. created is false when an
	// earlier comment with the same idempotency key was returned instead.
	CreateComment(ctx context.Context, req *models.CreateCommentRequest) (comment *models.Comment, created bool, err error)
	// Count returns the total number of stored comments
	Count(ctx context.Context) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Comment CommentService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, limiter ratelimit.Limiter, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Comment: newCommentService(repos.Comment, limiter, cfg, log),
	}
}
