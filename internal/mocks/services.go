package mocks

import (
	"context"

	"github.com/blog-comments-api/internal/models"
	"github.com/blog-comments-api/internal/service"
)

// MockCommentService is a mock implementation of CommentService
type MockCommentService struct {
	ListFunc   func(ctx context.Context, slug string) ([]models.Comment, error)
	CreateFunc func(ctx context.Context, req *models.CreateCommentRequest) (*models.Comment, bool, error)
	CountValue int
	CountError error

	CreateRequests []*models.CreateCommentRequest
}

// Verify interface compliance
var _ service.CommentService = (*MockCommentService)(nil)

func NewMockCommentService() *MockCommentService {
	return &MockCommentService{
		CreateRequests: make([]*models.CreateCommentRequest, 0),
	}
}

func (m *MockCommentService) ListComments(ctx context.Context, slug string) ([]models.Comment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, slug)
	}
	return []models.Comment{}, nil
}

func (m *MockCommentService) CreateComment(ctx context.Context, req *models.CreateCommentRequest) (*models.Comment, bool, error) {
	m.CreateRequests = append(m.CreateRequests, req)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return &models.Comment{
		ID:         1,
		PostSlug:   req.PostSlug,
		AuthorName: req.AuthorName,
		Content:    req.Content,
	}, true, nil
}

func (m *MockCommentService) Count(ctx context.Context) (int, error) {
	return m.CountValue, m.CountError
}

// MockLimiter permits requests until Remaining reaches zero, or always when
// Remaining is negative
type MockLimiter struct {
	Remaining  int
	Identities []string
}

func (m *MockLimiter) Allow(ctx context.Context, identity string) bool {
	m.Identities = append(m.Identities, identity)
	if m.Remaining < 0 {
		return true
	}
	if m.Remaining == 0 {
		return false
	}
	m.Remaining--
	return true
}
