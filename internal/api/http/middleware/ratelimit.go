package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const minIdleTTL = 10 * time.Minute

// KeyFunc picks the bucket a request is charged against.
type KeyFunc func(c *gin.Context) string

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per key. Buckets unused for
// idleTTL are full again and get dropped on a later access.
type RateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clock     clock.Clock
	idleTTL   time.Duration
	lastSweep time.Time
	buckets   map[string]*bucket
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	idle := minIdleTTL
	if rps > 0 {
		if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	clk := clock.New()
	return &RateLimiter{
		limit:     rate.Limit(rps),
		burst:     burst,
		clock:     clk,
		idleTTL:   idle,
		lastSweep: clk.Now(),
		buckets:   make(map[string]*bucket),
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		rl.sweep(now)
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// sweep drops idle buckets. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, b := range rl.buckets {
		if now.Sub(b.lastSeen) >= rl.idleTTL {
			delete(rl.buckets, k)
		}
	}
	rl.lastSweep = now
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// Handler rejects requests over the limit with 429. A non-positive rate disables limiting.
// Only mutating methods are charged.
func (rl *RateLimiter) Handler(key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 || !isMutating(c.Request.Method) {
			c.Next()
			return
		}

		k := key(c)
		if k == "" {
			k = c.ClientIP()
		}
		if !rl.limiter(k).AllowN(rl.clock.Now(), 1) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "Too many requests"})
			return
		}
		c.Next()
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
