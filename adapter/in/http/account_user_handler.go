package http

import (
	"time"

	"account_server/core/domain"
	in "account_server/core/port/in"
	"account_server/pkg/apperr"
	"account_server/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	service in.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service in.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Register registers user routes. Registration is open; everything else
// requires a valid token. Auth is attached per route so the open routes
// sharing the /users prefix stay reachable.
func (h *UserHandler) Register(router fiber.Router, requireAuth, validateID fiber.Handler) {
	router.Post("/users", h.Create)

	router.Get("/users", requireAuth, h.List)
	router.Get("/users/:id", requireAuth, validateID, h.Get)
	router.Put("/users/:id", requireAuth, validateID, h.Update)
	router.Delete("/users/:id", requireAuth, validateID, h.Delete)
}

// AddressResponse is the address representation returned by the API.
type AddressResponse struct {
	ID           uuid.UUID `json:"id"`
	Zipcode      string    `json:"zipcode"`
	Street       string    `json:"street"`
	Neighborhood string    `json:"neighborhood"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Complement   *string   `json:"complement,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserResponse is the user representation returned by the API. The
// password hash never appears here.
type UserResponse struct {
	ID        uuid.UUID        `json:"id"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Address   *AddressResponse `json:"address,omitempty"`
	Notice    string           `json:"notice,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func toUserResponse(u *domain.User, notice string) *UserResponse {
	resp := &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Notice:    notice,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Address != nil {
		resp.Address = &AddressResponse{
			ID:           u.Address.ID,
			Zipcode:      u.Address.Zipcode,
			Street:       u.Address.Street,
			Neighborhood: u.Address.Neighborhood,
			City:         u.Address.City,
			State:        u.Address.State,
			Complement:   u.Address.Complement,
			CreatedAt:    u.Address.CreatedAt,
			UpdatedAt:    u.Address.UpdatedAt,
		}
	}
	return resp
}

func toUserResponses(users []*domain.User) []*UserResponse {
	out := make([]*UserResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u, "")
	}
	return out
}

// Create registers a new user, optionally with an address resolved from
// the supplied zipcode.
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req in.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	result, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return err
	}

	return response.Created(c, toUserResponse(result.User, result.Notice))
}

// List returns a page of users.
func (h *UserHandler) List(c *fiber.Ctx) error {
	page := &domain.PageRequest{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	page.Normalize()

	result, err := h.service.List(c.Context(), page)
	if err != nil {
		return err
	}

	return response.OKWithMeta(c, toUserResponses(result.Users), &response.Meta{
		Total:   result.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: int64(page.Offset+len(result.Users)) < result.Total,
	})
}

// Get retrieves a user by ID.
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id := uuid.MustParse(c.Params("id"))

	user, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	return response.OK(c, toUserResponse(user, ""))
}

// Update applies a partial update to a user and reconciles the address
// when a zipcode is supplied.
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id := uuid.MustParse(c.Params("id"))

	var req in.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	result, err := h.service.Update(c.Context(), id, &req)
	if err != nil {
		return err
	}

	return response.OK(c, toUserResponse(result.User, result.Notice))
}

// Delete removes a user and any address attached to them.
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id := uuid.MustParse(c.Params("id"))

	if err := h.service.Delete(c.Context(), id); err != nil {
		return err
	}

	return response.NoContent(c)
}
