package middleware

import (
	"errors"
	"fmt"
	"strings"

	"account_server/pkg/apperr"
	"account_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RequireAuth validates the bearer token on protected routes.
//
// A missing token is a 401; an expired or otherwise invalid token is a
// 403, with expiry reported separately so clients know to log in again.
func RequireAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		tokenString := bearerToken(c)
		if tokenString == "" {
			return apperr.Unauthorized("missing authorization token")
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return apperr.TokenExpired()
			}
			logger.WithError(err).Warn("token validation failed")
			return apperr.InvalidToken("invalid authorization token")
		}
		if !token.Valid {
			return apperr.InvalidToken("invalid authorization token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return apperr.InvalidToken("invalid token claims")
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			return apperr.InvalidToken("missing subject claim")
		}

		userID, err := uuid.Parse(sub)
		if err != nil {
			return apperr.InvalidToken("invalid subject claim")
		}

		c.Locals("user_id", userID)
		c.Locals("claims", claims)

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
