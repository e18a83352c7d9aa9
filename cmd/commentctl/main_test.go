package main

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/blog-comments-api/internal/api"
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

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{Server: config.ServerConfig{MaxBodyBytes: models.MaxEncodedBodyBytes}}
	repos := &repository.Repositories{Comment: mocks.NewMockCommentRepository()}
	services := service.NewServices(repos, nil, cfg, zerolog.Nop())

	srv := httptest.NewServer(api.NewRouter(services, nil, cfg, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPostThenList(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, "--api", srv.URL, "post", "--slug", "hello-world", "--name", "Ada", "--content", "<b>Great</b> post!")
	require.NoError(t, err)
	assert.Contains(t, out, "Comment posted.")

	out, err = run(t, "--api", srv.URL, "list", "hello-world")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "<b>Great</b> post!")
}

func TestListEmpty(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, "--api", srv.URL, "list", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No comments yet.")
}

func TestPostInvalid(t *testing.T) {
	srv := newServer(t)

	_, err := run(t, "--api", srv.URL, "post", "--slug", "hello-world", "--name", "", "--content", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), validation.BoundsMessage)
}

func TestListRequiresSlug(t *testing.T) {
	_, err := run(t, "list")
	assert.Error(t, err)
}

func TestTerminalSafe(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Great post!", "Great post!"},
		{"markup kept", "<script>alert(1)</script>", "<script>alert(1)</script>"},
		{"unicode kept", "héllo 😀", "héllo 😀"},
		{"tab kept", "a\tb", "a\tb"},
		{"csi color", "\x1b[31mred\x1b[0m", `\x1b[31mred\x1b[0m`},
		{"osc title", "\x1b]0;pwned\a", `\x1b]0;pwned\a`},
		{"carriage return", "safe\rfake", `safe\rfake`},
		{"bidi override", "abc\u202edcb", `abc\u202edcb`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, terminalSafe(tt.in))
		})
	}
}

func TestPrintCommentEscapesControlSequences(t *testing.T) {
	var out bytes.Buffer
	printComment(&out, models.Comment{
		ID:         7,
		AuthorName: "\x1b[2JAda",
		Content:    "line one\n\x1b]8;;http://evil\alink",
	})

	assert.NotContains(t, out.String(), "\x1b")
	assert.NotContains(t, out.String(), "\a")
	assert.Contains(t, out.String(), `\x1b[2JAda`)
	assert.Contains(t, out.String(), "    line one\n")
}
