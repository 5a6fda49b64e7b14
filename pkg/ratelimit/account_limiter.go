// Package ratelimit provides a Redis-backed sliding window rate limiter.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SlidingWindowLimiter counts requests per key inside a rolling window.
// Without Redis it fails open.
type SlidingWindowLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

// NewSlidingWindowLimiter creates a limiter allowing limit requests per
// window for each key.
func NewSlidingWindowLimiter(redisClient *redis.Client, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
	}
}

var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local max_requests = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local count = redis.call('ZCARD', key)
	if count >= max_requests then
		local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
		local retry_after = 0
		if oldest[2] then
			retry_after = tonumber(oldest[2]) + window_ms - now
		end
		return {0, retry_after}
	end

	redis.call('ZADD', key, now, tostring(now) .. '-' .. tostring(math.random(1000000)))
	redis.call('PEXPIRE', key, window_ms)
	return {1, 0}
`)

// Allow reports whether the request identified by key may proceed, and
// how long to wait when it may not.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	if l.redis == nil {
		return true, 0
	}

	now := time.Now()
	windowStart := now.Add(-l.window)
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	result, err := slidingWindowScript.Run(ctx, l.redis, []string{redisKey},
		now.UnixMilli(), windowStart.UnixMilli(), l.limit, l.window.Milliseconds()).Result()
	if err != nil {
		// Redis trouble must not lock everyone out
		return true, 0
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return true, 0
	}

	allowed, _ := values[0].(int64)
	if allowed == 1 {
		return true, 0
	}

	retryAfterMs, _ := values[1].(int64)
	if retryAfterMs < 0 {
		retryAfterMs = 0
	}
	return false, time.Duration(retryAfterMs) * time.Millisecond
}
