package http

import (
	in "account_server/core/port/in"
	"account_server/pkg/apperr"
	"account_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	service in.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service in.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register registers authentication routes. Login is rate limited against
// credential stuffing; logout requires a valid access token.
func (h *AuthHandler) Register(router fiber.Router, requireAuth, loginLimit fiber.Handler) {
	router.Post("/users/login", loginLimit, h.Login)
	router.Post("/users/refresh", h.Refresh)
	router.Post("/users/logout", requireAuth, h.Logout)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login verifies credentials and issues a token pair.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return apperr.BadRequest("email and password are required")
	}

	pair, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return response.Created(c, pair)
}

// Refresh rotates a refresh token and issues a fresh pair.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if req.RefreshToken == "" {
		return apperr.BadRequest("refresh_token is required")
	}

	pair, err := h.service.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return response.Created(c, pair)
}

// Logout invalidates a refresh token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if req.RefreshToken == "" {
		return apperr.BadRequest("refresh_token is required")
	}

	if err := h.service.Logout(c.Context(), req.RefreshToken); err != nil {
		return err
	}

	return response.NoContent(c)
}
