package store

import (
	"sync"

	"golang.org/x/time/rate"
)

// voteLimiter applies a per-user token bucket to vote submissions.
// Limiters are created lazily on first vote and kept for the lifetime of
// the store; the user population of a single session is small.
type voteLimiter struct {
	mu    sync.Mutex
	rate  rate.Limit
	burst int
	users map[string]*rate.Limiter
}

func newVoteLimiter(perSecond, burst int) *voteLimiter {
	return &voteLimiter{
		rate:  rate.Limit(perSecond),
		burst: burst,
		users: make(map[string]*rate.Limiter),
	}
}

// allow reports whether the user may cast a vote right now.
func (l *voteLimiter) allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.users[userID]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.users[userID] = limiter
	}
	return limiter.Allow()
}
