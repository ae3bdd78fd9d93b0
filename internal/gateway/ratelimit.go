package gateway

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TokenBucket throttles one connection's inbound messages. Tokens refill
// continuously at refillPerSec up to capacity; each message costs one token
// and a message arriving with less than one token available is dropped.
type TokenBucket struct {
	mu           sync.Mutex
	clock        clockwork.Clock
	capacity     float64
	refillPerSec float64
	tokens       float64
	last         time.Time
}

// NewTokenBucket returns a bucket that starts full, so a new connection gets
// its full burst allowance immediately.
func NewTokenBucket(clock clockwork.Clock, capacity, refillPerSec float64) *TokenBucket {
	return &TokenBucket{
		clock:        clock,
		capacity:     capacity,
		refillPerSec: refillPerSec,
		tokens:       capacity,
		last:         clock.Now(),
	}
}

// Allow consumes one token if at least one whole token is available.
// Fractional remainders persist across calls, so capacity builds back up
// smoothly between bursts.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}

// Tokens reports the current token count, refilled to now. Useful for
// logging and tests.
func (tb *TokenBucket) Tokens() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	return tb.tokens
}

func (tb *TokenBucket) refillLocked() {
	now := tb.clock.Now()
	elapsed := now.Sub(tb.last).Seconds()
	if elapsed <= 0 {
		return
	}
	tb.tokens = math.Min(tb.capacity, tb.tokens+elapsed*tb.refillPerSec)
	tb.last = now
}
