package repository

import (
	"context"
	"errors"

	"github.com/blog-comments-api/internal/database"
	"github.com/blog-comments-api/internal/models"
	"github.com/lib/pq"
)

// ErrDuplicateRequest is returned by Create when a comment with the same
// post slug and client request id already exists
var ErrDuplicateRequest = errors.New("duplicate client request id")

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	// Create inserts a comment and fills in the store-assigned ID and CreatedAt
	Create(ctx context.Context, comment *models.Comment) error
	BatchInsert(ctx context.Context, comments []*models.Comment) (int, error)
	ListBySlug(ctx context.Context, slug string) ([]models.Comment, error)
	GetByClientRequestID(ctx context.Context, slug, requestID string) (*models.Comment, error)
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Comment CommentRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Comment: NewCommentRepo(db),
	}
}

// CodeCharacterNotInRepertoire is the SQLSTATE for text the database
// cannot store, such as a NUL byte
const CodeCharacterNotInRepertoire = "22021"

// ErrorCode returns the PostgreSQL SQLSTATE code carried by err, if any
func ErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
