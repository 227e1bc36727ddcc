package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tastebud/tastebud-api/internal/models"
)

// RateLimiter implements an in-memory token bucket per client. Clients are
// keyed by diner ID when a session is attached, falling back to IP; diners on
// a restaurant's shared Wi-Fi arrive behind one NAT address.
type RateLimiter struct {
	clients map[string]*rate.Limiter
	mu      sync.RWMutex
	r       rate.Limit // requests per second
	b       int        // burst size
}

// NewRateLimiter creates a rate limiter allowing r requests per second with
// bursts of up to b
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*rate.Limiter),
		r:       r,
		b:       b,
	}

	go rl.cleanupClients()

	return rl
}

// getLimiter returns the token bucket for a client key
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.clients[key]
	if !exists {
		limiter = rate.NewLimiter(rl.r, rl.b)
		rl.clients[key] = limiter
	}

	return limiter
}

// cleanupClients drops buckets that have refilled completely, meaning the
// client has been idle long enough to forget
func (rl *RateLimiter) cleanupClients() {
	for {
		time.Sleep(time.Minute)

		rl.mu.Lock()
		for key, limiter := range rl.clients {
			if limiter.Tokens() >= float64(rl.b) {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

// clientKey prefers the authenticated diner ID over the caller's IP
func clientKey(c *gin.Context) string {
	if v, ok := c.Get(DinerSessionContextKey); ok {
		if session, ok := v.(*models.DinerSession); ok && session.ID != "" {
			return "diner:" + session.ID
		}
	}
	return "ip:" + c.ClientIP()
}

// Middleware returns a Gin middleware enforcing the limit
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.getLimiter(clientKey(c))

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
