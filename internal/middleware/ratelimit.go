package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
)

// Counter counts hits per key within a fixed window.
type Counter interface {
	// Hit increments key and returns the new count and the time left in the window.
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisCounter keeps window counters in Redis.
type RedisCounter struct {
	rdb *redis.Client
}

// NewRedisCounter wraps rdb.
func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

// Hit implements Counter.
func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}

	// Set expiry on first request in the window
	if count == 1 {
		if err := r.rdb.Expire(ctx, key, window).Err(); err != nil {
			return count, window, err
		}
	}

	ttl, err := r.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return count, ttl, nil
}

// RateLimiter is a fixed-window limiter keyed by client IP.
type RateLimiter struct {
	counter Counter
	maxReqs int
	window  time.Duration
}

// NewRateLimiter creates a rate limiter. A nil counter disables limiting.
func NewRateLimiter(counter Counter, maxReqs, windowSec int) *RateLimiter {
	if windowSec <= 0 {
		windowSec = 60
	}
	return &RateLimiter{
		counter: counter,
		maxReqs: maxReqs,
		window:  time.Duration(windowSec) * time.Second,
	}
}

// Handler returns a Fiber middleware handler for rate limiting.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		if rl.counter == nil || rl.maxReqs <= 0 {
			return c.Next()
		}

		key := fmt.Sprintf("ratelimit:%s", c.IP())
		count, ttl, err := rl.counter.Hit(c.Context(), key, rl.window)
		if err != nil {
			// If the counter fails, allow the request (fail-open)
			slog.Warn("rate limiter unavailable", "error", err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.maxReqs))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(rl.maxReqs)-count), 10))
		c.Set("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))

		if count > int64(rl.maxReqs) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate limit exceeded",
				"retry_after": int(ttl.Seconds()),
			})
		}

		return c.Next()
	}
}
