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

// Retry-After sent when the bucket never refills (rate 0).
const retryAfterNoRefill = 60 * time.Second

// KeyFunc picks the identity a request is charged against.
type KeyFunc func(*gin.Context) string

// KeyByPrincipalOrIP charges authenticated callers ("scheduler", "ops") to
// one shared bucket per principal and everyone else per client IP.
func KeyByPrincipalOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if p := PrincipalFrom(c); p != "" {
			return "principal:" + p
		}
		return "ip:" + c.ClientIP()
	}
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is an in-process token bucket per caller. It guards the
// scheduler and ops routes; the interaction webhook is never limited because
// the chat platform treats an unanswered delivery as a failure.
//
// Buckets idle for longer than idleTTL are swept at most once per idleTTL.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	key     KeyFunc
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewRateLimiter allows rps requests per second with bursts of up to burst
// (minimum 1) per key.
func NewRateLimiter(rps float64, burst int, key KeyFunc) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   max(burst, 1),
		key:     key,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (rl *RateLimiter) bucketFor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.idleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

// admit takes a token for key. When none is available it returns how long
// the caller should wait, without consuming anything.
func (rl *RateLimiter) admit(key string) (bool, time.Duration) {
	now := rl.now()
	res := rl.bucketFor(key, now).ReserveN(now, 1)
	if !res.OK() {
		return false, retryAfterNoRefill
	}
	wait := res.DelayFrom(now)
	if wait == 0 {
		return true, 0
	}
	res.CancelAt(now)
	return false, wait
}

// retryAfterSeconds rounds a wait up to whole seconds, minimum 1.
func retryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(max(int(math.Ceil(d.Seconds())), 1))
}

// Handler rejects callers over their budget with 429, a Retry-After header
// and the usual error envelope.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, wait := rl.admit(rl.key(c))
		if allowed {
			c.Next()
			return
		}
		c.Header("Retry-After", retryAfterSeconds(wait))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "too_many_requests",
			"message":    "rate limit exceeded",
		})
	}
}
