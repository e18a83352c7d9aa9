package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/blog-comments-api/internal/models"
	"github.com/blog-comments-api/internal/repository"
)

// Verify interface compliance
var _ repository.CommentRepository = (*MockCommentRepository)(nil)

// MockCommentRepository is an in-memory CommentRepository. Like the real
// store it assigns ids and timestamps and serializes concurrent inserts.
type MockCommentRepository struct {
	mu       sync.Mutex
	Comments []*models.Comment
	nextID   int64

	// Now supplies created_at; defaults to time.Now
	Now func() time.Time

	InsertError error
	ListError   error
	CountError  error

	CreateCalls int
	ListCalls   int
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{
		Comments: make([]*models.Comment, 0),
		Now:      time.Now,
	}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.InsertError != nil {
		return m.InsertError
	}

	if comment.ClientRequestID != "" {
		for _, c := range m.Comments {
			if c.PostSlug == comment.PostSlug && c.ClientRequestID == comment.ClientRequestID {
				return repository.ErrDuplicateRequest
			}
		}
	}

	m.nextID++
	comment.ID = m.nextID
	comment.CreatedAt = m.Now()

	stored := *comment
	m.Comments = append(m.Comments, &stored)
	return nil
}

func (m *MockCommentRepository) BatchInsert(ctx context.Context, comments []*models.Comment) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertError != nil {
		return 0, m.InsertError
	}
	for _, c := range comments {
		m.nextID++
		c.ID = m.nextID
		stored := *c
		m.Comments = append(m.Comments, &stored)
	}
	return len(comments), nil
}

func (m *MockCommentRepository) ListBySlug(ctx context.Context, slug string) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	if m.ListError != nil {
		return nil, m.ListError
	}

	result := make([]models.Comment, 0)
	for _, c := range m.Comments {
		if c.PostSlug == slug {
			out := *c
			out.ClientRequestID = ""
			result = append(result, out)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockCommentRepository) GetByClientRequestID(ctx context.Context, slug, requestID string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.Comments {
		if c.PostSlug == slug && c.ClientRequestID == requestID {
			out := *c
			return &out, nil
		}
	}
	return nil, nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CountError != nil {
		return 0, m.CountError
	}
	return len(m.Comments), nil
}

// Len returns the number of stored rows
func (m *MockCommentRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Comments)
}
