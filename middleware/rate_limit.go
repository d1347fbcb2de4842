package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/cppla/bbscontroller/utils"
)

type rateLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// RateLimiter limits requests per client IP. With a Redis client the budget is a fixed
// one-minute window shared by every controller instance; without one (or while Redis is
// failing) each process uses its own token buckets.
type RateLimiter struct {
	perMinute int
	limit     rate.Limit
	burst     int
	rdb       *redis.Client

	mu       sync.Mutex
	limiters map[string]*rateLimiter
}

// NewRateLimiter creates a limiter allowing perMinute requests per IP. rdb may be nil.
func NewRateLimiter(perMinute int, rdb *redis.Client) *RateLimiter {
	perMinute = max(perMinute, 1)
	return &RateLimiter{
		perMinute: perMinute,
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     max(perMinute/2, 1),
		rdb:       rdb,
		limiters:  map[string]*rateLimiter{},
	}
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !rl.Allow(ctx.Request.Context(), ctx.ClientIP()) {
			utils.Fail(ctx, http.StatusTooManyRequests, 42901, "RateLimited", "rate limit exceeded")
			return
		}
		ctx.Next()
	}
}

// Allow reports whether one more request from key fits in the budget.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl.rdb != nil {
		allowed, err := rl.allowShared(ctx, key)
		if err == nil {
			return allowed
		}
		utils.Sugar.Warnf("rate limit: redis unavailable, using local limiter: %v", err)
	}
	return rl.local(key).Allow()
}

func (rl *RateLimiter) allowShared(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	window := time.Now().Unix() / 60
	redisKey := fmt.Sprintf("bbscontroller:ratelimit:%s:%d", key, window)
	pipe := rl.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(rl.perMinute), nil
}

func (rl *RateLimiter) local(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanupExpiredLocked()

	if l, ok := rl.limiters[key]; ok {
		l.expires = time.Now().Add(5 * time.Minute)
		return l.limiter
	}

	l := &rateLimiter{
		limiter: rate.NewLimiter(rl.limit, rl.burst),
		expires: time.Now().Add(5 * time.Minute),
	}
	rl.limiters[key] = l
	return l.limiter
}

func (rl *RateLimiter) cleanupExpiredLocked() {
	now := time.Now()
	for key, l := range rl.limiters {
		if now.After(l.expires) {
			delete(rl.limiters, key)
		}
	}
}
