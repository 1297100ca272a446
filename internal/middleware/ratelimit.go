package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// clients tracked before forgotten ones are pruned
	pruneAbove = 500
	// a client unseen for this long is forgotten
	forgetAfter = 10 * time.Minute
)

type clientBucket struct {
	bucket *rate.Limiter
	seen   time.Time
}

// ClientLimiter keeps one token bucket per client address
type ClientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	every   rate.Limit
	burst   int
}

// NewClientLimiter refills every client's bucket at every with room for burst
func NewClientLimiter(every rate.Limit, burst int) *ClientLimiter {
	return &ClientLimiter{clients: map[string]*clientBucket{}, every: every, burst: burst}
}

// PerMinute allows n requests a minute with bursts of n. Zero or less
// means unlimited.
func PerMinute(n int) *ClientLimiter {
	if n <= 0 {
		return NewClientLimiter(rate.Inf, 0)
	}
	return NewClientLimiter(rate.Every(time.Minute/time.Duration(n)), n)
}

// Allow takes a token from the bucket of addr
func (l *ClientLimiter) Allow(addr string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.clients) > pruneAbove {
		l.forget(now.Add(-forgetAfter))
	}

	client, ok := l.clients[addr]
	if !ok {
		client = &clientBucket{bucket: rate.NewLimiter(l.every, l.burst)}
		l.clients[addr] = client
	}
	client.seen = now
	return client.bucket.AllowN(now, 1)
}

// forget drops the clients last seen before cutoff. l.mu must be held.
func (l *ClientLimiter) forget(cutoff time.Time) {
	for addr, client := range l.clients {
		if client.seen.Before(cutoff) {
			delete(l.clients, addr)
		}
	}
}

// RateLimit rejects requests above the per-client rate with 429
func RateLimit(limiter *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		addr := c.ClientIP()
		if !limiter.Allow(addr) {
			log.WithField("ip", addr).Warn("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				models.NewAPIError(models.ErrTooManyRequests, "Too many requests. Try again later."))
			return
		}
		c.Next()
	}
}
