package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware applies a token-bucket limit per client IP
type RateLimitMiddleware struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimitMiddleware creates the per-IP limiter. Idle client
// buckets are evicted after ten minutes.
func NewRateLimitMiddleware(rps float64, burst int) *RateLimitMiddleware {
	if burst <= 0 {
		burst = int(rps)
	}
	m := &RateLimitMiddleware{
		rps:      rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*clientLimiter),
	}
	go m.evictLoop()
	return m
}

// Handler returns the gin handler
func (m *RateLimitMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_001",
					"message": "rate limit exceeded",
				},
			})
			return
		}
		c.Next()
	}
}

func (m *RateLimitMiddleware) allow(clientIP string) bool {
	m.mu.Lock()
	cl, ok := m.limiters[clientIP]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(m.rps, m.burst)}
		m.limiters[clientIP] = cl
	}
	cl.lastSeen = time.Now()
	m.mu.Unlock()
	return cl.limiter.Allow()
}

func (m *RateLimitMiddleware) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		m.mu.Lock()
		for ip, cl := range m.limiters {
			if cl.lastSeen.Before(cutoff) {
				delete(m.limiters, ip)
			}
		}
		m.mu.Unlock()
	}
}
