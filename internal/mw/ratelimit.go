package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(c *gin.Context) string

// ClientIP keys buckets by the request's client IP.
func ClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimiter hands out one token bucket per key. Buckets idle for longer than
// the idle TTL are dropped.
type RateLimiter struct {
	buckets *cache.Cache
	mu      sync.Mutex
	r       rate.Limit
	b       int
	idle    time.Duration
}

// NewRateLimiter creates a limiter allowing r events per second with bursts of b.
func NewRateLimiter(r rate.Limit, b int, idle time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: cache.New(idle, 2*idle),
		r:       r,
		b:       b,
		idle:    idle,
	}
}

// Limiter returns the bucket for key, creating it on first use.
func (l *RateLimiter) Limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, found := l.buckets.Get(key); found {
		limiter := v.(*rate.Limiter)
		l.buckets.Set(key, limiter, l.idle)
		return limiter
	}
	limiter := rate.NewLimiter(l.r, l.b)
	l.buckets.Set(key, limiter, l.idle)
	return limiter
}

// Middleware answers 429 once the caller's bucket is empty.
func (l *RateLimiter) Middleware(key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Limiter(key(c)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
