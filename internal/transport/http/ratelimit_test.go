package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_CapsWithinWindow(t *testing.T) {
	now := time.Now()
	r := newRateLimiter(2)
	r.now = func() time.Time { return now }

	assert.True(t, r.allow())
	assert.True(t, r.allow())
	assert.False(t, r.allow(), "third signal in the window must be rejected")
	assert.False(t, r.allow())
}

func TestRateLimiter_WindowReopens(t *testing.T) {
	now := time.Now()
	r := newRateLimiter(1)
	r.now = func() time.Time { return now }

	assert.True(t, r.allow())
	assert.False(t, r.allow())

	now = now.Add(time.Minute)
	assert.True(t, r.allow(), "budget must reset after the window elapses")
	assert.False(t, r.allow())
}

func TestRateLimiter_ZeroDisables(t *testing.T) {
	r := newRateLimiter(0)
	for i := 0; i < 1000; i++ {
		assert.True(t, r.allow())
	}
}
