package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/blog-comments-api/internal/models"
	"github.com/blog-comments-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GenericErrorMessage is shown when the service withholds details
const GenericErrorMessage = "Something went wrong. Please try again later."

// CommentAPI is the part of Client the consumer depends on
type CommentAPI interface {
	ListComments(ctx context.Context, slug string) ([]models.Comment, error)
	CreateComment(ctx context.Context, input *models.CreateCommentRequest) (*models.Comment, error)
}

// Form is the state of a comment submission form. Error holds the message
// to show the user after a failed submit.
type Form struct {
	PostSlug   string
	AuthorName string
	Content    string
	Error      string

	// requestKey is reused across retries of the same submission. keyFor
	// records the values it was issued for.
	requestKey string
	keyFor     formValues
}

type formValues struct {
	postSlug, authorName, content string
}

func (f *Form) values() formValues {
	return formValues{postSlug: f.PostSlug, authorName: f.AuthorName, content: f.Content}
}

// idempotencyKey returns the key for the form's current values. Editing any
// field starts a new submission with a new key.
func (f *Form) idempotencyKey() string {
	if f.requestKey == "" || f.keyFor != f.values() {
		f.requestKey = uuid.NewString()
		f.keyFor = f.values()
	}
	return f.requestKey
}

// Consumer caches comment lists per post slug. The cache only ever holds
// lists returned by the service.
type Consumer struct {
	api       CommentAPI
	validator *validation.Validator
	log       zerolog.Logger

	mu    sync.RWMutex
	cache map[string][]models.Comment
}

// NewConsumer creates a Consumer backed by api
func NewConsumer(api CommentAPI, log zerolog.Logger) *Consumer {
	return &Consumer{
		api:       api,
		validator: validation.NewValidator(),
		log:       log.With().Str("component", "comment_consumer").Logger(),
		cache:     make(map[string][]models.Comment),
	}
}

// Comments returns the cached list for slug and whether it is cached
func (c *Consumer) Comments(slug string) ([]models.Comment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	comments, ok := c.cache[slug]
	if !ok {
		return nil, false
	}
	out := make([]models.Comment, len(comments))
	copy(out, comments)
	return out, true
}

// Refresh fetches the list for slug and replaces the cache entry
func (c *Consumer) Refresh(ctx context.Context, slug string) ([]models.Comment, error) {
	comments, err := c.api.ListComments(ctx, slug)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[slug] = comments
	c.mu.Unlock()

	out := make([]models.Comment, len(comments))
	copy(out, comments)
	return out, nil
}

// Invalidate drops the cache entry for slug
func (c *Consumer) Invalidate(slug string) {
	c.mu.Lock()
	delete(c.cache, slug)
	c.mu.Unlock()
}

// Submit validates the form locally and posts it. On success the slug's
// cache entry is refreshed and the name and content are cleared. On failure
// the form keeps its values and form.Error is set.
func (c *Consumer) Submit(ctx context.Context, form *Form) (*models.Comment, error) {
	form.Error = ""

	req := &models.CreateCommentRequest{
		PostSlug:   form.PostSlug,
		AuthorName: form.AuthorName,
		Content:    form.Content,
	}
	if errs := c.validator.ValidateComment(req); len(errs) > 0 {
		form.Error = validation.BoundsMessage
		return nil, errs[0]
	}
	if errs := validation.Normalize(req); len(errs) > 0 {
		form.Error = validation.BoundsMessage
		return nil, errs[0]
	}
	// Send the untrimmed values; the service trims
	req.AuthorName = form.AuthorName
	req.Content = form.Content

	req.IdempotencyKey = form.idempotencyKey()

	comment, err := c.api.CreateComment(ctx, req)
	if err != nil {
		form.Error = UserMessage(err)
		c.log.Warn().Err(err).Str("post_slug", form.PostSlug).Msg("Comment submission failed")
		return nil, err
	}

	c.Invalidate(form.PostSlug)
	if _, err := c.Refresh(ctx, form.PostSlug); err != nil {
		c.log.Warn().Err(err).Str("post_slug", form.PostSlug).Msg("Failed to refresh comments after submit")
	}

	form.AuthorName = ""
	form.Content = ""
	form.requestKey = ""
	form.keyFor = formValues{}
	return comment, nil
}

// UserMessage converts a client error into text fit for display
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
	}
	return GenericErrorMessage
}
