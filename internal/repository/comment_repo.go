package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/blog-comments-api/internal/database"
	"github.com/blog-comments-api/internal/models"
	"github.com/lib/pq"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Create inserts a new comment in a single statement. id and created_at are
// assigned by the database.
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (post_slug, author_name, content, client_request_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_slug, client_request_id) WHERE client_request_id IS NOT NULL DO NOTHING
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		comment.PostSlug, comment.AuthorName, comment.Content, nullString(comment.ClientRequestID),
	).Scan(&comment.ID, &comment.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDuplicateRequest
	}
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// BatchInsert inserts multiple comments using PostgreSQL COPY. Unlike Create,
// created_at is taken from each comment.
func (r *commentRepo) BatchInsert(ctx context.Context, comments []*models.Comment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("comments",
		"post_slug", "author_name", "content", "created_at",
	))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, comment := range comments {
		_, err := stmt.ExecContext(ctx,
			comment.PostSlug, comment.AuthorName, comment.Content, comment.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("copy comment %d: %w", inserted, err)
		}
		inserted++
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return inserted, nil
}

// ListBySlug returns all comments for a post, newest first. Equal
// timestamps are ordered by id, highest first.
func (r *commentRepo) ListBySlug(ctx context.Context, slug string) ([]models.Comment, error) {
	query := `
		SELECT id, post_slug, author_name, content, created_at
		FROM comments
		WHERE post_slug = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, slug)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(
			&comment.ID, &comment.PostSlug, &comment.AuthorName, &comment.Content, &comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

// GetByClientRequestID retrieves the comment created for an idempotency key
func (r *commentRepo) GetByClientRequestID(ctx context.Context, slug, requestID string) (*models.Comment, error) {
	query := `
		SELECT id, post_slug, author_name, content, created_at, client_request_id
		FROM comments
		WHERE post_slug = $1 AND client_request_id = $2
	`

	var comment models.Comment
	err := r.db.QueryRowContext(ctx, query, slug, requestID).Scan(
		&comment.ID, &comment.PostSlug, &comment.AuthorName, &comment.Content,
		&comment.CreatedAt, &comment.ClientRequestID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get comment by request id: %w", err)
	}

	return &comment, nil
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	return count, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
