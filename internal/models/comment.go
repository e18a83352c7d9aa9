package models

import (
	"time"
)

// Field bounds for a comment, counted in Unicode code points
const (
	MaxSlugLength    = 200
	MaxAuthorLength  = 100
	MaxContentLength = 2000
)

// MaxEncodedBodyBytes fits a create payload at its bounds with every code
// point written as a JSON surrogate-pair escape (12 bytes), plus room for keys
// and whitespace
const MaxEncodedBodyBytes = (MaxSlugLength+MaxAuthorLength+MaxContentLength)*12 + 4096

// Comment represents a comment on a blog post
type Comment struct {
	ID              int64     `json:"id" db:"id"`
	PostSlug        string    `json:"post_slug" db:"post_slug"`
	AuthorName      string    `json:"author_name" db:"author_name"`
	Content         string    `json:"content" db:"content"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	ClientRequestID string    `json:"-" db:"client_request_id"`
}

// CreateCommentRequest is the payload for creating a comment
type CreateCommentRequest struct {
	PostSlug   string `json:"post_slug" validate:"required,max=200"`
	AuthorName string `json:"author_name" validate:"required,max=100"`
	Content    string `json:"content" validate:"required,max=2000"`

	IdempotencyKey string `json:"-"` // From header
	ClientIdentity string `json:"-"` // Client IP, used for rate limiting
}

// CommentListResponse is the API response for listing comments
type CommentListResponse struct {
	Comments []Comment `json:"comments"`
}

// CommentResponse is the API response for a created comment
type CommentResponse struct {
	Comment *Comment `json:"comment"`
}

// ErrorResponse is the API response for any failure
type ErrorResponse struct {
	Error string `json:"error"`
}
