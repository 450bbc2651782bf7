package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// minIdleTTL is the shortest time an unused bucket is kept.
const minIdleTTL = 10 * time.Minute

// RateLimiter hands out one token bucket per caller. Buckets idle long enough
// to have refilled completely are dropped, so the map only holds recent keys.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per caller, with bursts up to burst.
// A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	idleTTL := minIdleTTL
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
		refill := time.Duration(float64(burst) / float64(limit) * float64(time.Second))
		idleTTL = max(idleTTL, refill)
	}
	return &RateLimiter{
		limiters:  make(map[string]*limiterEntry),
		limit:     limit,
		burst:     burst,
		idleTTL:   idleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (rl *RateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		rl.sweep(now)
	}

	e, ok := rl.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// sweep drops buckets unused for idleTTL. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, e := range rl.limiters {
		if now.Sub(e.lastSeen) >= rl.idleTTL {
			delete(rl.limiters, key)
		}
	}
	rl.lastSweep = now
}

// Allow reports whether key may proceed now. When it may not, the returned
// duration is how long until the next token.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	if rl.limit == rate.Inf {
		return true, 0
	}

	now := rl.now()
	r := rl.limiter(key, now).ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	r.CancelAt(now)
	return false, delay
}

// Middleware limits requests per authenticated user, falling back to client IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := GetUserID(c)
		if key == "" {
			key = c.ClientIP()
		}

		if ok, wait := rl.Allow(key); !ok {
			seconds := int(math.Ceil(wait.Seconds()))
			c.Header("Retry-After", strconv.Itoa(max(seconds, 1)))
			abortWithError(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, slow down")
			return
		}

		c.Next()
	}
}
