package middleware

import (
	"account_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ValidateUUID validates that a route parameter is a well-formed UUID
// before the handler runs.
func ValidateUUID(paramName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		value := c.Params(paramName)
		if value == "" {
			return apperr.BadRequest("missing required parameter").
				WithDetail("field", paramName)
		}

		if _, err := uuid.Parse(value); err != nil {
			return apperr.BadRequest("invalid UUID format").
				WithDetail("field", paramName)
		}

		return c.Next()
	}
}
