package http

import (
	"sync"
	"time"
)

// rateLimiter caps attempts per fixed one-minute window. Shared by handler
// goroutines, hence the lock. A zero limit disables it.
type rateLimiter struct {
	mu        sync.Mutex
	limit     int
	counter   int
	windowEnd time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{limit: limit}
}

func (r *rateLimiter) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.After(r.windowEnd) {
		r.counter = 0
		r.windowEnd = now.Add(time.Minute)
	}
	r.counter++
	return r.counter <= r.limit
}
