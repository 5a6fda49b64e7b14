package out

import (
	"context"

	"account_server/core/domain"

	"github.com/google/uuid"
)

// AddressRepository is the persistence port for user addresses.
type AddressRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Address, error)
	Create(ctx context.Context, address *domain.Address) error
	Update(ctx context.Context, address *domain.Address) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
