package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/docschema/docschema/pkg/metrics"
)

// limiterKey prefers the resolved tenant so that customers behind one NAT
// do not share a bucket. Otherwise the client IP is used.
func limiterKey(c *gin.Context) string {
	if id := CustomerID(c); id != "" {
		return "tenant:" + id
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// RateLimitMiddleware returns a Gin middleware enforcing a token-bucket per-key limit.
// rps = allowed events per second, burst = maximum tokens in bucket. Register
// it after TenantMiddleware to limit per tenant.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	// per-key limiter store (simple in-memory token-bucket)
	var store sync.Map // map[string]*rate.Limiter
	getLimiter := func(key string) *rate.Limiter {
		v, _ := store.LoadOrStore(key, rate.NewLimiter(rate.Limit(rps), burst))
		return v.(*rate.Limiter)
	}
	return func(c *gin.Context) {
		lim := getLimiter(limiterKey(c))
		if !lim.Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
