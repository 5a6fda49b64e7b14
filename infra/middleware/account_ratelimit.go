package middleware

import (
	"strconv"

	"account_server/pkg/apperr"
	"account_server/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
)

// RateLimitByIP limits requests per client IP using the given limiter.
// Intended for credential endpoints where brute force is a concern.
func RateLimitByIP(limiter *ratelimit.SlidingWindowLimiter, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, retryAfter := limiter.Allow(c.Context(), name+":"+c.IP())
		if !allowed {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
			return apperr.New("RATE_LIMITED", "too many requests, slow down",
				fiber.StatusTooManyRequests)
		}
		return c.Next()
	}
}
