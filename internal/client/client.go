package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blog-comments-api/internal/models"
)

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 * 1024

// APIError is a non-2xx response from the comment service
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("comment service returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to the comment service over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithHTTPClient replaces the underlying http.Client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// ListComments fetches the comments of a post, newest first
func (c *Client) ListComments(ctx context.Context, slug string) ([]models.Comment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/comments/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, err
	}

	var resp models.CommentListResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.Comments == nil {
		resp.Comments = []models.Comment{}
	}
	return resp.Comments, nil
}

// CreateComment submits a comment. A non-empty IdempotencyKey is sent as the
// Idempotency-Key header.
func (c *Client) CreateComment(ctx context.Context, input *models.CreateCommentRequest) (*models.Comment, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/comments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if input.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", input.IdempotencyKey)
	}

	var resp models.CommentResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.Comment == nil {
		return nil, fmt.Errorf("comment service returned no comment")
	}
	return resp.Comment, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp models.ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
