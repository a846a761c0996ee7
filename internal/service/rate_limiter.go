package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adeelchainz/base-server/pkg/database"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitResult describes the outcome of a single rate limit check
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	redis *database.Redis
	now   func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis, now: time.Now}
}

// Allow records a request for key and reports whether it fits in the window.
// Uses a sliding window log kept in a sorted set scored by unix nanoseconds.
// Trim, add and count run in one MULTI so concurrent requests always see each
// other; a rejected request removes its own entry again.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	now := r.now()
	windowStart := now.Add(-window)
	redisKey := fmt.Sprintf("ratelimit:%s", key)
	member := uuid.NewString()

	var (
		count  *redis.IntCmd
		oldest *redis.ZSliceCmd
	)
	_, err := r.redis.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
		pipe.ZAdd(ctx, redisKey, redis.Z{
			Score:  float64(now.UnixNano()),
			Member: member,
		})
		count = pipe.ZCard(ctx, redisKey)
		oldest = pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
		pipe.Expire(ctx, redisKey, window+time.Minute)
		return nil
	})
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("failed to record request: %w", err)
	}

	if count.Val() > int64(limit) {
		if err := r.redis.Client.ZRem(ctx, redisKey, member).Err(); err != nil {
			return RateLimitResult{}, fmt.Errorf("failed to release rejected request: %w", err)
		}

		result := RateLimitResult{Allowed: false, RetryAfter: window}
		if first := oldest.Val(); len(first) > 0 {
			oldestTime := time.Unix(0, int64(first[0].Score))
			result.RetryAfter = window - now.Sub(oldestTime)
		}
		return result, nil
	}

	return RateLimitResult{
		Allowed:   true,
		Remaining: limit - int(count.Val()),
	}, nil
}
