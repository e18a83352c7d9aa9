// Package ratelimit provides the pluggable policy consulted before a comment
// is created.
package ratelimit

import (
	"context"
	"fmt"

	"github.com/blog-comments-api/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Limiter decides whether a client identity may perform another write
type Limiter interface {
	Allow(ctx context.Context, identity string) bool
}

// AllowAll is the default policy. It permits every request.
type AllowAll struct{}

// Allow always returns true
func (AllowAll) Allow(context.Context, string) bool { return true }

// New builds the limiter selected by cfg.RateLimit.Policy. The returned close
// function releases any connection the limiter holds.
func New(cfg *config.Config, log zerolog.Logger) (Limiter, func() error, error) {
	noop := func() error { return nil }

	switch cfg.RateLimit.Policy {
	case "", config.RateLimitNone:
		return AllowAll{}, noop, nil

	case config.RateLimitTokenBucket:
		tb := NewTokenBucket(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		log.Info().
			Float64("rps", cfg.RateLimit.RPS).
			Int("burst", cfg.RateLimit.Burst).
			Msg("Using in-memory token bucket rate limiter")
		return tb, noop, nil

	case config.RateLimitFixedWindow:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		fw := NewFixedWindow(client, cfg.RateLimit.Window, cfg.RateLimit.Max, log)
		log.Info().
			Str("redis_addr", cfg.Redis.Addr).
			Dur("window", cfg.RateLimit.Window).
			Int64("max", cfg.RateLimit.Max).
			Msg("Using Redis fixed window rate limiter")
		return fw, client.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown rate limit policy %q", cfg.RateLimit.Policy)
	}
}
