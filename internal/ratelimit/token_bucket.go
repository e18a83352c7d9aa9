package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const idleTTL = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucket keeps one token bucket per identity in process memory. It only
// limits per instance; use FixedWindow when several instances serve traffic.
type TokenBucket struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	now     func() time.Time
	sweptAt time.Time
}

// NewTokenBucket creates a limiter refilling rps tokens per second up to burst
func NewTokenBucket(rps float64, burst int) *TokenBucket {
	return &TokenBucket{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow consumes one token for identity if available
func (t *TokenBucket) Allow(_ context.Context, identity string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.sweep(now)

	b, ok := t.buckets[identity]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.buckets[identity] = b
	}
	b.lastSeen = now

	return b.limiter.AllowN(now, 1)
}

// sweep drops buckets idle for longer than idleTTL. Caller holds t.mu.
func (t *TokenBucket) sweep(now time.Time) {
	if now.Sub(t.sweptAt) < time.Minute {
		return
	}
	t.sweptAt = now
	for id, b := range t.buckets {
		if now.Sub(b.lastSeen) > idleTTL {
			delete(t.buckets, id)
		}
	}
}

// Len returns the number of tracked identities
func (t *TokenBucket) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buckets)
}
