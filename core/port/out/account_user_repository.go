package out

import (
	"context"

	"account_server/core/domain"

	"github.com/google/uuid"
)

// UserRepository is the persistence port for users.
// Lookup methods return (nil, nil) when the row does not exist; the
// service layer decides whether absence is an error.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, page *domain.PageRequest) ([]*domain.User, int64, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}
