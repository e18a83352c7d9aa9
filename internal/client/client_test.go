package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/blog-comments-api/internal/api"
	"github.com/blog-comments-api/internal/client"
	"github.com/blog-comments-api/internal/config"
	"github.com/blog-comments-api/internal/mocks"
	"github.com/blog-comments-api/internal/models"
	"github.com/blog-comments-api/internal/repository"
	"github.com/blog-comments-api/internal/service"
	"github.com/blog-comments-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves the real router over an in-memory repository
func newTestServer(t *testing.T) (*httptest.Server, *mocks.MockCommentRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := mocks.NewMockCommentRepository()
	cfg := &config.Config{
		Server: config.ServerConfig{MaxBodyBytes: models.MaxEncodedBodyBytes},
	}
	services := service.NewServices(&repository.Repositories{Comment: repo}, nil, cfg, zerolog.Nop())

	srv := httptest.NewServer(api.NewRouter(services, nil, cfg, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv, repo
}

// fakeAPI counts calls and returns canned results
type fakeAPI struct {
	mu        sync.Mutex
	comments  []models.Comment
	createErr error
	listErr   error

	listCalls   int
	createCalls int
	keys        []string
}

func (f *fakeAPI) ListComments(ctx context.Context, slug string) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Comment(nil), f.comments...), nil
}

func (f *fakeAPI) CreateComment(ctx context.Context, input *models.CreateCommentRequest) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.keys = append(f.keys, input.IdempotencyKey)
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := models.Comment{ID: int64(len(f.comments) + 1), PostSlug: input.PostSlug, AuthorName: input.AuthorName, Content: input.Content}
	f.comments = append([]models.Comment{c}, f.comments...)
	return &c, nil
}

func TestClient_CreateAndList(t *testing.T) {
	srv, _ := newTestServer(t)
	c := client.NewClient(srv.URL + "/")
	ctx := context.Background()

	created, err := c.CreateComment(ctx, &models.CreateCommentRequest{
		PostSlug: "hello-world", AuthorName: "Ada", Content: "Great post!",
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, "Ada", created.AuthorName)

	comments, err := c.ListComments(ctx, "hello-world")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, created.ID, comments[0].ID)
}

func TestClient_ListEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	comments, err := client.NewClient(srv.URL).ListComments(context.Background(), "no-comments")
	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)
}

func TestClient_EscapesSlug(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"comments":[]}`))
	}))
	defer srv.Close()

	_, err := client.NewClient(srv.URL).ListComments(context.Background(), "a/b c")
	require.NoError(t, err)
	assert.Equal(t, "/comments/a%2Fb%20c", gotPath)
}

func TestClient_SlugWithSlashRoundTrips(t *testing.T) {
	srv, _ := newTestServer(t)
	c := client.NewClient(srv.URL)
	ctx := context.Background()

	_, err := c.CreateComment(ctx, &models.CreateCommentRequest{PostSlug: "2024/06/launch", AuthorName: "Ada", Content: "hi"})
	require.NoError(t, err)

	comments, err := c.ListComments(ctx, "2024/06/launch")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "2024/06/launch", comments[0].PostSlug)
}

func TestClient_APIError(t *testing.T) {
	srv, _ := newTestServer(t)
	c := client.NewClient(srv.URL)

	_, err := c.CreateComment(context.Background(), &models.CreateCommentRequest{PostSlug: "p", AuthorName: "", Content: "hi"})

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, validation.BoundsMessage, apiErr.Message)
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := client.NewClient(srv.URL).ListComments(context.Background(), "p")

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestClient_SendsIdempotencyKey(t *testing.T) {
	srv, repo := newTestServer(t)
	c := client.NewClient(srv.URL)
	ctx := context.Background()

	input := &models.CreateCommentRequest{PostSlug: "p", AuthorName: "Ada", Content: "hi", IdempotencyKey: "retry-1"}
	first, err := c.CreateComment(ctx, input)
	require.NoError(t, err)
	second, err := c.CreateComment(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.Len())
}

func TestConsumer_SubmitRefreshesAndClears(t *testing.T) {
	srv, _ := newTestServer(t)
	consumer := client.NewConsumer(client.NewClient(srv.URL), zerolog.Nop())
	ctx := context.Background()

	_, err := consumer.Refresh(ctx, "hello-world")
	require.NoError(t, err)
	cached, ok := consumer.Comments("hello-world")
	require.True(t, ok)
	assert.Empty(t, cached)

	form := &client.Form{PostSlug: "hello-world", AuthorName: "  Ada ", Content: " Great post! "}
	created, err := consumer.Submit(ctx, form)
	require.NoError(t, err)

	assert.Equal(t, "Ada", created.AuthorName)
	assert.Equal(t, "Great post!", created.Content)
	assert.Empty(t, form.AuthorName)
	assert.Empty(t, form.Content)
	assert.Empty(t, form.Error)
	assert.Equal(t, "hello-world", form.PostSlug)

	cached, ok = consumer.Comments("hello-world")
	require.True(t, ok)
	require.Len(t, cached, 1)
	assert.Equal(t, created.ID, cached[0].ID)
}

func TestConsumer_LocalValidationSkipsNetwork(t *testing.T) {
	tests := []struct {
		name string
		form client.Form
	}{
		{"empty slug", client.Form{AuthorName: "Ada", Content: "hi"}},
		{"empty name", client.Form{PostSlug: "p", Content: "hi"}},
		{"blank content", client.Form{PostSlug: "p", AuthorName: "Ada", Content: "   "}},
		{"name too long", client.Form{PostSlug: "p", AuthorName: strings.Repeat("a", 101), Content: "hi"}},
		{"content too long", client.Form{PostSlug: "p", AuthorName: "Ada", Content: strings.Repeat("c", 2001)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAPI{}
			consumer := client.NewConsumer(fake, zerolog.Nop())
			form := tt.form

			_, err := consumer.Submit(context.Background(), &form)
			assert.Error(t, err)
			assert.Equal(t, validation.BoundsMessage, form.Error)
			assert.Equal(t, tt.form.AuthorName, form.AuthorName)
			assert.Equal(t, tt.form.Content, form.Content)
			assert.Zero(t, fake.createCalls)
		})
	}
}

func TestConsumer_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"invalid input verbatim", &client.APIError{StatusCode: 400, Message: validation.BoundsMessage}, validation.BoundsMessage},
		{"rate limited verbatim", &client.APIError{StatusCode: 429, Message: service.RateLimitedMessage}, service.RateLimitedMessage},
		{"storage error generic", &client.APIError{StatusCode: 500, Message: "Failed to create comment"}, client.GenericErrorMessage},
		{"transport error generic", errors.New("dial tcp: connection refused"), client.GenericErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAPI{createErr: tt.err}
			consumer := client.NewConsumer(fake, zerolog.Nop())
			form := &client.Form{PostSlug: "p", AuthorName: "Ada", Content: "hi"}

			_, err := consumer.Submit(context.Background(), form)
			assert.Error(t, err)
			assert.Equal(t, tt.wantMsg, form.Error)
			assert.Equal(t, "Ada", form.AuthorName)
			assert.Equal(t, "hi", form.Content)
			assert.Zero(t, fake.listCalls, "failed submit must not refresh")

			_, cached := consumer.Comments("p")
			assert.False(t, cached, "nothing is inserted optimistically")
		})
	}
}

func TestConsumer_RetryReusesRequestKey(t *testing.T) {
	fake := &fakeAPI{createErr: &client.APIError{StatusCode: 500, Message: "Failed to create comment"}}
	consumer := client.NewConsumer(fake, zerolog.Nop())
	form := &client.Form{PostSlug: "p", AuthorName: "Ada", Content: "hi"}
	ctx := context.Background()

	_, err := consumer.Submit(ctx, form)
	require.Error(t, err)

	fake.createErr = nil
	_, err = consumer.Submit(ctx, form)
	require.NoError(t, err)

	require.Len(t, fake.keys, 2)
	assert.NotEmpty(t, fake.keys[0])
	assert.Equal(t, fake.keys[0], fake.keys[1])

	form.AuthorName, form.Content = "Ada", "again"
	_, err = consumer.Submit(ctx, form)
	require.NoError(t, err)
	assert.NotEqual(t, fake.keys[0], fake.keys[2], "a new submission gets a new key")
}

func TestConsumer_RefreshErrorKeepsCache(t *testing.T) {
	fake := &fakeAPI{comments: []models.Comment{{ID: 1, PostSlug: "p", AuthorName: "Ada", Content: "hi"}}}
	consumer := client.NewConsumer(fake, zerolog.Nop())
	ctx := context.Background()

	_, err := consumer.Refresh(ctx, "p")
	require.NoError(t, err)

	fake.listErr = errors.New("timeout")
	_, err = consumer.Refresh(ctx, "p")
	assert.Error(t, err)

	cached, ok := consumer.Comments("p")
	require.True(t, ok)
	assert.Len(t, cached, 1)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "slug is required", client.UserMessage(&client.APIError{StatusCode: 400, Message: "slug is required"}))
	assert.Equal(t, client.GenericErrorMessage, client.UserMessage(&client.APIError{StatusCode: 400, Message: " "}))
	assert.Equal(t, client.GenericErrorMessage, client.UserMessage(&client.APIError{StatusCode: 503, Message: "down"}))
}

// dropResponse forwards requests but reports the first POST as a transport
// failure after the server has handled it
type dropResponse struct {
	mu      sync.Mutex
	dropped bool
}

func (d *dropResponse) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := http.DefaultTransport.RoundTrip(req)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil && req.Method == http.MethodPost && !d.dropped {
		d.dropped = true
		resp.Body.Close()
		return nil, errors.New("connection reset by peer")
	}
	return resp, err
}

func TestConsumer_EditAfterLostResponseIsStored(t *testing.T) {
	srv, repo := newTestServer(t)
	hc := &http.Client{Transport: &dropResponse{}}
	consumer := client.NewConsumer(client.NewClient(srv.URL).WithHTTPClient(hc), zerolog.Nop())
	ctx := context.Background()

	form := &client.Form{PostSlug: "hello-world", AuthorName: "Ada", Content: "first draft"}
	_, err := consumer.Submit(ctx, form)
	require.Error(t, err)
	assert.Equal(t, client.GenericErrorMessage, form.Error)
	assert.Equal(t, "first draft", form.Content)
	require.Equal(t, 1, repo.Len())

	form.Content = "corrected text"
	created, err := consumer.Submit(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "corrected text", created.Content)
	assert.Empty(t, form.Content)
	assert.Equal(t, 2, repo.Len())

	cached, ok := consumer.Comments("hello-world")
	require.True(t, ok)
	require.Len(t, cached, 2)
	assert.Equal(t, "corrected text", cached[0].Content)
}

func TestConsumer_RetryAfterLostResponseReplays(t *testing.T) {
	srv, repo := newTestServer(t)
	hc := &http.Client{Transport: &dropResponse{}}
	consumer := client.NewConsumer(client.NewClient(srv.URL).WithHTTPClient(hc), zerolog.Nop())
	ctx := context.Background()

	form := &client.Form{PostSlug: "hello-world", AuthorName: "Ada", Content: "first draft"}
	_, err := consumer.Submit(ctx, form)
	require.Error(t, err)

	created, err := consumer.Submit(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "first draft", created.Content)
	assert.Equal(t, 1, repo.Len())
}

func TestConsumer_EditChangesRequestKey(t *testing.T) {
	fake := &fakeAPI{createErr: &client.APIError{StatusCode: 500, Message: "Failed to create comment"}}
	consumer := client.NewConsumer(fake, zerolog.Nop())
	ctx := context.Background()

	form := &client.Form{PostSlug: "p", AuthorName: "Ada", Content: "first draft"}
	consumer.Submit(ctx, form)
	form.Content = "corrected text"
	consumer.Submit(ctx, form)
	form.AuthorName = "Ada L."
	consumer.Submit(ctx, form)

	require.Len(t, fake.keys, 3)
	assert.NotEqual(t, fake.keys[0], fake.keys[1])
	assert.NotEqual(t, fake.keys[1], fake.keys[2])
}

func TestConsumer_KeyConflictKeepsForm(t *testing.T) {
	fake := &fakeAPI{createErr: &client.APIError{StatusCode: http.StatusConflict, Message: service.IdempotencyConflictMessage}}
	consumer := client.NewConsumer(fake, zerolog.Nop())

	form := &client.Form{PostSlug: "p", AuthorName: "Ada", Content: "hi"}
	_, err := consumer.Submit(context.Background(), form)
	require.Error(t, err)
	assert.Equal(t, service.IdempotencyConflictMessage, form.Error)
	assert.Equal(t, "hi", form.Content)
}
