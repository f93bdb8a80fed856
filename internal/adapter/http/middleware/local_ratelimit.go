package middleware

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"wallet-ledger/internal/core/ports"

	"golang.org/x/time/rate"
)

// LocalRateLimiter implements ports.RateLimiter with in-process token buckets.
// A rule of limit per window refills at limit/window with a burst of limit.
type LocalRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLocalRateLimiter() *LocalRateLimiter {
	return &LocalRateLimiter{
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (l *LocalRateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (*ports.RateLimitResult, error) {
	if limit <= 0 || window <= 0 {
		return nil, fmt.Errorf("invalid rate limit rule %d/%s", limit, window)
	}
	now := l.now()

	l.mu.Lock()
	bucket := fmt.Sprintf("%s|%d|%s", key, limit, window)
	v, ok := l.visitors[bucket]
	if !ok {
		every := rate.Every(window / time.Duration(limit))
		v = &visitor{limiter: rate.NewLimiter(every, limit)}
		l.visitors[bucket] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	allowed := v.limiter.AllowN(now, 1)
	tokens := v.limiter.TokensAt(now)
	remaining := int(math.Floor(tokens))
	if remaining < 0 {
		remaining = 0
	}

	resetAt := now
	if tokens < 1 {
		perToken := window / time.Duration(limit)
		resetAt = now.Add(time.Duration((1 - tokens) * float64(perToken)))
	}

	return &ports.RateLimitResult{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Sweep drops buckets idle for longer than idle and returns how many were removed.
func (l *LocalRateLimiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, k)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (l *LocalRateLimiter) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep(idle)
		}
	}
}
