package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained per-client rate.
	RequestsPerSecond float64

	// Burst is the per-client burst size.
	Burst int

	// KeyFunc extracts the rate limit key from the request. Defaults
	// to the client IP.
	KeyFunc func(c *gin.Context) string

	// Logger for rate limit events.
	Logger *zap.Logger
}

// clientLimiter tracks the limiter and last use for one client key.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit returns a middleware enforcing a per-client token bucket.
// Idle client entries are evicted so the limiter map stays bounded.
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 100
	}
	if config.Burst <= 0 {
		config.Burst = int(config.RequestsPerSecond)
	}

	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)
	lastSweep := time.Now()

	const idleEviction = 10 * time.Minute

	return func(c *gin.Context) {
		key := config.KeyFunc(c)
		now := time.Now()

		mu.Lock()
		if now.Sub(lastSweep) > idleEviction {
			for k, cl := range clients {
				if now.Sub(cl.lastSeen) > idleEviction {
					delete(clients, k)
				}
			}
			lastSweep = now
		}

		cl, ok := clients[key]
		if !ok {
			cl = &clientLimiter{
				limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
			}
			clients[key] = cl
		}
		cl.lastSeen = now
		allowed := cl.limiter.Allow()
		mu.Unlock()

		if !allowed {
			config.Logger.Debug("rate limit exceeded",
				zap.String("key", key),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "too_many_requests",
				"message": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
