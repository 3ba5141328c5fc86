package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// KeyFunc picks the bucket a request is counted against
type KeyFunc func(c *gin.Context) string

// RateLimiter implements a fixed window rate limiter
type RateLimiter struct {
	mu        sync.Mutex
	tokens    map[string]int
	lastReset time.Time
	rate      int           // requests per window
	window    time.Duration // time window
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:    make(map[string]int),
		lastReset: time.Now(),
		rate:      rate,
		window:    window,
	}
}

// Allow counts one request for key and reports whether it is within the limit
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastReset) > l.window {
		l.tokens = make(map[string]int)
		l.lastReset = time.Now()
	}

	count := l.tokens[key]
	if count >= l.rate {
		return false
	}
	l.tokens[key] = count + 1
	return true
}

// RateLimit middleware limits requests per IP
func RateLimit(rate int, window time.Duration) gin.HandlerFunc {
	return RateLimitBy(rate, window, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// LoginRateLimit limits login attempts per browser client
func LoginRateLimit(rate int, window time.Duration) gin.HandlerFunc {
	return RateLimitBy(rate, window, func(c *gin.Context) string {
		if clientID := GetClientID(c); clientID != "" {
			return clientID
		}
		return c.ClientIP()
	})
}

// RateLimitBy limits requests per key. A rate of zero or less disables it.
func RateLimitBy(rate int, window time.Duration, key KeyFunc) gin.HandlerFunc {
	if rate <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewRateLimiter(rate, window)

	return func(c *gin.Context) {
		k := key(c)
		if !limiter.Allow(k) {
			slog.Warn("rate limit exceeded",
				"key", k,
				"path", c.Request.URL.Path,
				"request_id", GetRequestID(c),
			)

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
