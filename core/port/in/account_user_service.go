package in

import (
	"context"

	"account_server/core/domain"

	"github.com/google/uuid"
)

// CreateUserRequest is the payload for user creation.
type CreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Zipcode   string `json:"zipcode"`
}

// UpdateUserRequest is the payload for user updates. Every field is
// optional; nil means "leave unchanged".
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Zipcode   *string `json:"zipcode"`
}

// Empty reports whether the request carries no recognized field.
func (r *UpdateUserRequest) Empty() bool {
	return r.Email == nil && r.Password == nil &&
		r.FirstName == nil && r.LastName == nil && r.Zipcode == nil
}

// UserResult pairs a user with an optional degradation notice, e.g. when
// the postal lookup could not resolve the supplied zipcode.
type UserResult struct {
	User   *domain.User
	Notice string
}

// UserListResult is the paginated list result.
type UserListResult struct {
	Users []*domain.User
	Total int64
}

// UserService orchestrates user and address writes, keeping the two
// consistent and tolerating postal-lookup failure.
type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest) (*UserResult, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*UserResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context, page *domain.PageRequest) (*UserListResult, error)
}
