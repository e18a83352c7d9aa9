package service

import (
	"context"
	"errors"
	"time"

	"github.com/blog-comments-api/internal/config"
	"github.com/blog-comments-api/internal/models"
	"github.com/blog-comments-api/internal/ratelimit"
	"github.com/blog-comments-api/internal/repository"
	"github.com/blog-comments-api/internal/validation"
	"github.com/rs/zerolog"
)

// commentService is the concrete implementation of CommentService. It holds
// no per-request state and is safe for concurrent use.
type commentService struct {
	repo         repository.CommentRepository
	limiter      ratelimit.Limiter
	validator    *validation.Validator
	queryTimeout time.Duration
	log          zerolog.Logger
}

func newCommentService(repo repository.CommentRepository, limiter ratelimit.Limiter, cfg *config.Config, log zerolog.Logger) *commentService {
	if limiter == nil {
		limiter = ratelimit.AllowAll{}
	}

	timeout := cfg.Database.QueryTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &commentService{
		repo:         repo,
		limiter:      limiter,
		validator:    validation.NewValidator(),
		queryTimeout: timeout,
		log:          log.With().Str("service", "comments").Logger(),
	}
}

// ListComments returns all comments for slug, newest first
func (s *commentService) ListComments(ctx context.Context, slug string) ([]models.Comment, error) {
	if fieldErr := validation.ValidateSlug(slug); fieldErr != nil {
		return nil, invalidField(*fieldErr)
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	comments, err := s.repo.ListBySlug(ctx, slug)
	if err != nil {
		s.log.Error().
			Err(err).
			Str("slug", slug).
			Str("pg_code", repository.ErrorCode(err)).
			Msg("Failed to list comments")
		return nil, &StorageError{Op: "list comments", Err: err}
	}

	return comments, nil
}

// CreateComment checks the rate limiter, validates the raw payload, trims
// author_name and content, and inserts exactly one row
func (s *commentService) CreateComment(ctx context.Context, req *models.CreateCommentRequest) (*models.Comment, bool, error) {
	identity := ""
	if req != nil {
		identity = req.ClientIdentity
	}
	if !s.limiter.Allow(ctx, identity) {
		s.log.Warn().Str("client", identity).Msg("Comment rejected by rate limiter")
		return nil, false, ErrRateLimited
	}

	if errs := s.validator.ValidateComment(req); len(errs) > 0 {
		return nil, false, NewInvalidInput(errs...)
	}
	if fieldErr := validation.ValidateIdempotencyKey(req.IdempotencyKey); fieldErr != nil {
		return nil, false, invalidField(*fieldErr)
	}

	input := *req
	if errs := validation.Normalize(&input); len(errs) > 0 {
		return nil, false, NewInvalidInput(errs...)
	}

	comment := &models.Comment{
		PostSlug:        input.PostSlug,
		AuthorName:      input.AuthorName,
		Content:         input.Content,
		ClientRequestID: input.IdempotencyKey,
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	err := s.repo.Create(ctx, comment)
	if errors.Is(err, repository.ErrDuplicateRequest) {
		return s.replay(ctx, &input)
	}
	if repository.ErrorCode(err) == repository.CodeCharacterNotInRepertoire {
		return nil, false, NewInvalidInput()
	}
	if err != nil {
		s.log.Error().
			Err(err).
			Str("slug", input.PostSlug).
			Str("pg_code", repository.ErrorCode(err)).
			Msg("Failed to create comment")
		return nil, false, &StorageError{Op: "create comment", Err: err}
	}

	s.log.Info().
		Int64("comment_id", comment.ID).
		Str("slug", comment.PostSlug).
		Msg("Comment created")

	return comment, true, nil
}

// replay returns the comment previously stored for an idempotency key. The
// stored row must match the trimmed request.
func (s *commentService) replay(ctx context.Context, input *models.CreateCommentRequest) (*models.Comment, bool, error) {
	slug := input.PostSlug
	existing, err := s.repo.GetByClientRequestID(ctx, slug, input.IdempotencyKey)
	if err != nil {
		s.log.Error().Err(err).Str("slug", slug).Msg("Failed to load comment for idempotency key")
		return nil, false, &StorageError{Op: "get comment by request id", Err: err}
	}
	if existing == nil {
		return nil, false, &StorageError{Op: "get comment by request id", Err: errors.New("conflicting row not found")}
	}
	if existing.AuthorName != input.AuthorName || existing.Content != input.Content {
		s.log.Warn().
			Int64("comment_id", existing.ID).
			Str("slug", slug).
			Msg("Idempotency key reused for a different comment")
		return nil, false, ErrIdempotencyConflict
	}

	s.log.Info().
		Int64("comment_id", existing.ID).
		Str("slug", slug).
		Msg("Returning existing comment for idempotency key")

	return existing, false, nil
}

// Count returns the total number of comments
func (s *commentService) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, &StorageError{Op: "count comments", Err: err}
	}
	return count, nil
}
