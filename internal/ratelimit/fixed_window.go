package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// FixedWindow counts writes per identity in Redis so every stateless instance
// shares one budget. Keys expire with their window.
type FixedWindow struct {
	client redis.Cmdable
	window time.Duration
	max    int64
	now    func() time.Time
	log    zerolog.Logger
}

// NewFixedWindow allows max writes per identity per window
func NewFixedWindow(client redis.Cmdable, window time.Duration, max int64, log zerolog.Logger) *FixedWindow {
	return &FixedWindow{
		client: client,
		window: window,
		max:    max,
		now:    time.Now,
		log:    log.With().Str("limiter", "fixed_window").Logger(),
	}
}

// Key returns the Redis key counting identity's writes in the window at t
func (f *FixedWindow) Key(identity string, t time.Time) string {
	return fmt.Sprintf("ratelimit:comments:%s:%d", identity, t.UnixNano()/int64(f.window))
}

// Allow increments the identity's counter for the current window. Redis
// failures fail open: the write is allowed and the error logged.
func (f *FixedWindow) Allow(ctx context.Context, identity string) bool {
	key := f.Key(identity, f.now())

	pipe := f.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, f.window)
	if _, err := pipe.Exec(ctx); err != nil {
		f.log.Error().Err(err).Str("key", key).Msg("Rate limiter unavailable, allowing request")
		return true
	}

	return incr.Val() <= f.max
}
