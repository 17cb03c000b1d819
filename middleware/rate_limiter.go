package middleware

import (
	"net"
	"time"

	"github.com/gin-gonic/gin"
	services "github.com/nfredmond/project-manager/service"
)

// Limit rejects clients that exceed the limiter's quota, keyed by IP.
func Limit(rl *services.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			ip = c.ClientIP()
		}

		if !rl.Allow(ip) {
			c.AbortWithStatusJSON(429, gin.H{
				"error":   "Too Many Requests",
				"message": "Rate limit exceeded. Please wait before making more requests.",
			})
			return
		}

		c.Next()
	}
}

// NewGlobalRateLimiter allows 100 requests per minute per client.
func NewGlobalRateLimiter() *services.RateLimiter {
	return services.NewRateLimiter(100, time.Minute)
}

// NewStrictRateLimiter allows 10 requests per minute per client, for uploads,
// public submissions and AI calls.
func NewStrictRateLimiter() *services.RateLimiter {
	return services.NewRateLimiter(10, time.Minute)
}
