package http

import "time"

// rateLimiter caps inbound signals per connection per minute. A limit of
// zero disables it. It is owned by the connection's read loop and must not
// be shared across goroutines.
type rateLimiter struct {
	limit       int
	count       int
	windowStart time.Time
	now         func() time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{limit: limit, now: time.Now}
}

// allow consumes one slot from the current minute window, opening a fresh
// window once the previous one has elapsed.
func (r *rateLimiter) allow() bool {
	if r.limit <= 0 {
		return true
	}
	now := r.now()
	if now.Sub(r.windowStart) >= time.Minute {
		r.windowStart = now
		r.count = 0
	}
	r.count++
	return r.count <= r.limit
}
