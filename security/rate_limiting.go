package security

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/hook"
	"github.com/redis/go-redis/v9"
)

var suspiciousAgents = []string{"bot", "crawler", "spider", "scraper"}

// RateLimiter counts requests per user, or per IP for anonymous requests, in
// fixed Redis windows.
type RateLimiter struct {
	redis  redis.Cmdable
	limit  int64
	window time.Duration
}

func NewRateLimiter(client redis.Cmdable, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{redis: client, limit: limit, window: window}
}

func rateKey(identifier string) string {
	return fmt.Sprintf("ratelimit:%s", identifier)
}

// Allow counts one request for identifier and reports whether it is within
// the limit. The window starts with the first request. INCR and EXPIRE NX run
// in one MULTI so a counter never outlives its window.
func (r *RateLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	key := rateKey(identifier)
	var count *redis.IntCmd
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, r.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return count.Val() <= r.limit, nil
}

func identifier(e *core.RequestEvent) string {
	if e.Auth != nil {
		return "user:" + e.Auth.Id
	}
	return "ip:" + e.RealIP()
}

// Middleware rejects known bot user agents and requests over the limit. When
// Redis is unavailable requests pass.
func (r *RateLimiter) Middleware() *hook.Handler[*core.RequestEvent] {
	return &hook.Handler[*core.RequestEvent]{
		Id: "eventhubRateLimit",
		Func: func(e *core.RequestEvent) error {
			if isSuspiciousUserAgent(e.Request.UserAgent()) {
				return apis.NewForbiddenError("Access denied", nil)
			}

			id := identifier(e)
			ok, err := r.Allow(e.Request.Context(), id)
			if err != nil {
				slog.Warn("rate limiter unavailable", "identifier", id, "error", err)
				return e.Next()
			}
			if !ok {
				return apis.NewTooManyRequestsError("Rate limit exceeded. Please try again later.", nil)
			}
			return e.Next()
		},
	}
}

func isSuspiciousUserAgent(ua string) bool {
	ua = strings.ToLower(ua)
	for _, pattern := range suspiciousAgents {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}
