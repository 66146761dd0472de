// Package middleware provides HTTP middleware for the model parser API.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// maxBuckets bounds the number of tracked client IPs; the least recently
	// seen client is forgotten first.
	maxBuckets = 100_000

	// bucketIdleTTL drops buckets of clients that stopped sending requests.
	bucketIdleTTL = 10 * time.Minute
)

// RateLimiter is a token bucket rate limiter keyed by client IP.
type RateLimiter struct {
	mu      sync.Mutex
	buckets *expirable.LRU[string, *bucket]
	rate    int
	burst   int
}

type bucket struct {
	tokens   int
	lastFill time.Time
}

func (b *bucket) allow(ratePerSec, burst int) bool {
	now := time.Now()
	refill := int(now.Sub(b.lastFill).Seconds() * float64(ratePerSec))

	if refill > 0 {
		b.tokens = min(b.tokens+refill, burst)
		b.lastFill = now
	}

	if b.tokens > 0 {
		b.tokens--

		return true
	}

	return false
}

// NewRateLimiter creates a RateLimiter with the given requests per second and burst size.
func NewRateLimiter(ratePerSec, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: expirable.NewLRU[string, *bucket](maxBuckets, nil, bucketIdleTTL),
		rate:    ratePerSec,
		burst:   burst,
	}
}

// Handler returns Gin middleware that applies rate limiting per client IP.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// ClientIP ignores forwarding headers because the router trusts no proxies.
		ip := c.ClientIP()

		rl.mu.Lock()

		b, ok := rl.buckets.Get(ip)
		if !ok {
			b = &bucket{tokens: rl.burst, lastFill: time.Now()}
		}

		allowed := b.allow(rl.rate, rl.burst)
		// Re-adding restarts the idle clock.
		rl.buckets.Add(ip, b)
		rl.mu.Unlock()

		if !allowed {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")

			return
		}

		c.Next()
	}
}
