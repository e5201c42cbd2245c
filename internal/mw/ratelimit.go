package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client's bucket survives without traffic.
const limiterIdleTTL = 10 * time.Minute

// ClientLimiter hands out one token bucket per client address. Buckets of
// clients that stay quiet for the idle TTL are dropped.
type ClientLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	r        rate.Limit
	b        int
}

// NewClientLimiter creates a limiter allowing r requests per second with
// burst b for each client.
func NewClientLimiter(r rate.Limit, b int, idle time.Duration) *ClientLimiter {
	return &ClientLimiter{
		limiters: cache.New(idle, idle),
		r:        r,
		b:        b,
	}
}

// Allow reports whether the client at ip may make another request now.
func (l *ClientLimiter) Allow(ip string) bool {
	l.mu.Lock()
	var limiter *rate.Limiter
	if v, ok := l.limiters.Get(ip); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(l.r, l.b)
	}
	l.limiters.SetDefault(ip, limiter)
	l.mu.Unlock()
	return limiter.Allow()
}

// Clients is the number of buckets currently held, expired ones included
// until the janitor runs.
func (l *ClientLimiter) Clients() int {
	return l.limiters.ItemCount()
}

// RateLimiter rejects clients that exceed their budget with 429. A
// non-positive rate disables limiting.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	if r <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewClientLimiter(r, b, limiterIdleTTL)
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
