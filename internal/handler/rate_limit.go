package handler

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/adeelchainz/base-server/internal/domain"
	"github.com/adeelchainz/base-server/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Limiter decides whether a keyed request fits its window
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (service.RateLimitResult, error)
}

// RateLimitMiddleware creates a rate limiting middleware. Limiter failures
// let the request through.
func RateLimitMiddleware(
	limiter Limiter,
	responder *Responder,
	logger *zap.Logger,
	limit int,
	window time.Duration,
	keyFunc func(*gin.Context) string,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		result, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(result.Remaining, 0)))

		if !result.Allowed {
			retryAfter := strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds())))
			c.Header("Retry-After", retryAfter)
			c.Header("X-RateLimit-Retry-After", retryAfter)
			responder.Error(c, domain.RateLimited(MsgTooManyRequests))
			return
		}

		c.Next()
	}
}

// IPBasedKey keys on route and client IP. Forwarding headers only count when
// they come from a trusted proxy, see gin.Engine.SetTrustedProxies.
func IPBasedKey(c *gin.Context) string {
	return c.FullPath() + ":" + c.ClientIP()
}
