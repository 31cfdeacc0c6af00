package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aimerfeng/PawPals/internal/cache"
	"github.com/aimerfeng/PawPals/internal/config"
	apierrors "github.com/aimerfeng/PawPals/internal/errors"
	"github.com/aimerfeng/PawPals/internal/middleware"
	"github.com/aimerfeng/PawPals/internal/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RateLimiter implements sliding window rate limiting using Redis
type RateLimiter struct {
	redis  *cache.Redis
	config *config.RateLimitConfig
}

// Result contains the result of a rate limit check
type Result struct {
	Allowed    bool
	Remaining  int64
	Limit      int
	RetryAfter time.Duration
	ResetAt    time.Time
}

// New creates a new rate limiter
func New(redis *cache.Redis, cfg *config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redis,
		config: cfg,
	}
}

func (r *RateLimiter) window() time.Duration {
	windowSeconds := r.config.WindowSeconds
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	return time.Duration(windowSeconds) * time.Second
}

func key(clientKey string) string {
	return fmt.Sprintf("pawpals:ratelimit:%s", clientKey)
}

// Check records a request for clientKey and reports whether it is allowed.
// Redis failures allow the request.
func (r *RateLimiter) Check(ctx context.Context, clientKey string) (*Result, error) {
	limit := r.config.Limit
	now := time.Now()
	windowDuration := r.window()
	windowStart := now.Add(-windowDuration)

	k := key(clientKey)

	// Score = timestamp, Member = unique request ID
	pipe := r.redis.Client.Pipeline()
	pipe.ZRemRangeByScore(ctx, k, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, k)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("client", clientKey).Msg("Failed to check rate limit")
		return &Result{
			Allowed:   true,
			Remaining: int64(limit),
			Limit:     limit,
		}, nil
	}

	currentCount := countCmd.Val()
	remaining := int64(limit) - currentCount

	result := &Result{
		Limit:   limit,
		ResetAt: now.Add(windowDuration),
	}

	if currentCount >= int64(limit) {
		result.Allowed = false
		result.Remaining = 0

		// Retry once the oldest entry leaves the window
		oldest, err := r.redis.Client.ZRangeWithScores(ctx, k, 0, 0).Result()
		if err == nil && len(oldest) > 0 {
			oldestTime := time.Unix(0, int64(oldest[0].Score))
			result.RetryAfter = oldestTime.Add(windowDuration).Sub(now)
			if result.RetryAfter < time.Second {
				result.RetryAfter = time.Second
			}
		} else {
			result.RetryAfter = windowDuration
		}

		return result, nil
	}

	member := fmt.Sprintf("%d-%s", now.UnixNano(), clientKey)
	if err := r.redis.Client.ZAdd(ctx, k, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: member,
	}).Err(); err != nil {
		log.Warn().Err(err).Str("client", clientKey).Msg("Failed to add rate limit entry")
	}

	r.redis.Client.Expire(ctx, k, windowDuration*2)

	result.Allowed = true
	result.Remaining = remaining - 1
	if result.Remaining < 0 {
		result.Remaining = 0
	}

	return result, nil
}

// Reset clears the window for clientKey
func (r *RateLimiter) Reset(ctx context.Context, clientKey string) error {
	return r.redis.Client.Del(ctx, key(clientKey)).Err()
}

// Middleware limits requests per viewer, or per client IP for anonymous
// viewers. A nil limiter disables limiting.
func Middleware(r *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil {
			c.Next()
			return
		}

		viewer := "anonymous"
		clientKey := "ip:" + c.ClientIP()
		if uid := middleware.GetUserIDFromContext(c); uid != "" {
			viewer = "user"
			clientKey = "user:" + uid
		}

		result, err := r.Check(c.Request.Context(), clientKey)
		if err != nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))

		if !result.Allowed {
			monitoring.RecordRateLimitHit(viewer)
			retryAfter := int64(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))

			apiErr := apierrors.NewRateLimitError(retryAfter)
			c.AbortWithStatusJSON(apiErr.HTTPStatus, apierrors.NewErrorResponse(
				apiErr,
				middleware.GetRequestIDFromContext(c),
				middleware.GetCorrelationIDFromContext(c),
				c.Request.URL.Path,
				c.Request.Method,
			))
			return
		}

		c.Next()
	}
}
