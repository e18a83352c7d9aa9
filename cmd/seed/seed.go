package main

import (
	"strings"
	"time"

	"github.com/blog-comments-api/internal/models"
	"github.com/jaswdr/faker"
)

// maxAge bounds how far back seeded created_at values go
const maxAge = 30 * 24 * time.Hour

type generator struct {
	f faker.Faker
}

func newGenerator(f faker.Faker) *generator {
	return &generator{f: f}
}

// slugs returns n distinct post slugs
func (g *generator) slugs(n int) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		slug := strings.ToLower(strings.Join(g.f.Lorem().Words(3), "-"))
		slug = truncate(slug, models.MaxSlugLength)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, slug)
	}
	return out
}

// comments returns n comments spread over slugs, created within maxAge of now
func (g *generator) comments(n int, slugs []string, now time.Time) []*models.Comment {
	if len(slugs) == 0 {
		return nil
	}

	comments := make([]*models.Comment, 0, n)
	for i := 0; i < n; i++ {
		content := g.f.Lorem().Paragraph(g.f.IntBetween(1, 3))
		if g.f.Bool() {
			content = g.f.Lorem().Sentence(g.f.IntBetween(4, 12))
		}

		comments = append(comments, &models.Comment{
			PostSlug:   slugs[g.f.IntBetween(0, len(slugs)-1)],
			AuthorName: truncate(strings.TrimSpace(g.f.Person().Name()), models.MaxAuthorLength),
			Content:    truncate(strings.TrimSpace(content), models.MaxContentLength),
			CreatedAt:  now.Add(-time.Duration(g.f.Int64Between(0, int64(maxAge)))),
		})
	}
	return comments
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
