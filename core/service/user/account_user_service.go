// Package user implements the user/address reconciliation service: it keeps
// a user row and its at-most-one address row consistent across writes, and
// degrades gracefully when the postal lookup cannot resolve a zipcode.
package user

import (
	"context"
	"fmt"
	"time"

	"account_server/core/domain"
	in "account_server/core/port/in"
	"account_server/core/port/out"
	"account_server/pkg/apperr"
	"account_server/pkg/logger"

	"github.com/google/uuid"
)

// Service implements in.UserService
type Service struct {
	users     out.UserRepository
	addresses out.AddressRepository
	zipcodes  out.ZipcodeProvider
	hasher    out.PasswordHasher
}

// NewService creates a new user service
func NewService(
	users out.UserRepository,
	addresses out.AddressRepository,
	zipcodes out.ZipcodeProvider,
	hasher out.PasswordHasher,
) in.UserService {
	return &Service{
		users:     users,
		addresses: addresses,
		zipcodes:  zipcodes,
		hasher:    hasher,
	}
}

// Create registers a user. The duplicate-email check runs before any write;
// address enrichment is best-effort and never fails the creation.
func (s *Service) Create(ctx context.Context, req *in.CreateUserRequest) (*in.UserResult, error) {
	if issues := ValidateCreate(req); len(issues) > 0 {
		return nil, apperr.ValidationFailed("invalid user payload").
			WithDetail("issues", issues)
	}

	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing email: %w", err)
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("user")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	u := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index on users.email is the backstop if two creates race
	// past the pre-check; the adapter maps that to the same domain error.
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	var notice string
	if req.Zipcode != "" {
		info, err := s.zipcodes.Lookup(ctx, req.Zipcode)
		if err != nil {
			logger.WithError(err).Warn("zipcode lookup failed during create: %s", req.Zipcode)
			notice = fmt.Sprintf("address not found for zipcode %s, user created without address", req.Zipcode)
		} else {
			if err := s.addresses.Create(ctx, newAddress(u.ID, info, now)); err != nil {
				return nil, fmt.Errorf("create address: %w", err)
			}
		}
	}

	created, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("reload created user: %w", err)
	}

	return &in.UserResult{User: created, Notice: notice}, nil
}

// Update applies a partial update. The address decision (update vs create
// vs no-op) is made before the user row is written, so an address failure
// never leaves the user updated with an unresolved address state.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *in.UpdateUserRequest) (*in.UserResult, error) {
	if req.Empty() {
		return nil, apperr.BadRequest("no fields to update")
	}
	if issues := ValidateUpdate(req); len(issues) > 0 {
		return nil, apperr.ValidationFailed("invalid user payload").
			WithDetail("issues", issues)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user")
	}

	var notice string
	if req.Zipcode != nil {
		notice, err = s.reconcileAddress(ctx, id, *req.Zipcode)
		if err != nil {
			return nil, err
		}
	}

	if req.Email != nil || req.Password != nil || req.FirstName != nil || req.LastName != nil {
		if req.Email != nil && *req.Email != u.Email {
			other, err := s.users.GetByEmail(ctx, *req.Email)
			if err != nil {
				return nil, fmt.Errorf("check existing email: %w", err)
			}
			if other != nil {
				return nil, apperr.AlreadyExists("user")
			}
			u.Email = *req.Email
		}
		if req.Password != nil {
			hash, err := s.hasher.Hash(*req.Password)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			u.PasswordHash = hash
		}
		if req.FirstName != nil {
			u.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			u.LastName = *req.LastName
		}
		u.UpdatedAt = time.Now()

		if err := s.users.Update(ctx, u); err != nil {
			return nil, err
		}
	}

	updated, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload updated user: %w", err)
	}

	return &in.UserResult{User: updated, Notice: notice}, nil
}

// reconcileAddress resolves the zipcode and settles the user's single
// address row: update in place when one exists with a different zipcode,
// create when none exists, no-op when the zipcode is unchanged. Lookup
// failure skips the mutation and returns a notice instead.
func (s *Service) reconcileAddress(ctx context.Context, userID uuid.UUID, zipcode string) (string, error) {
	info, err := s.zipcodes.Lookup(ctx, zipcode)
	if err != nil {
		logger.WithError(err).Warn("zipcode lookup failed during update: %s", zipcode)
		return fmt.Sprintf("address not found for zipcode %s, address was not updated", zipcode), nil
	}

	existing, err := s.addresses.GetByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load address: %w", err)
	}

	now := time.Now()
	switch {
	case existing == nil:
		if err := s.addresses.Create(ctx, newAddress(userID, info, now)); err != nil {
			return "", fmt.Errorf("create address: %w", err)
		}
	case existing.Zipcode != info.Zipcode:
		existing.Zipcode = info.Zipcode
		existing.Street = info.Street
		existing.Neighborhood = info.Neighborhood
		existing.City = info.City
		existing.State = info.State
		existing.Complement = optional(info.Complement)
		existing.UpdatedAt = now
		if err := s.addresses.Update(ctx, existing); err != nil {
			return "", fmt.Errorf("update address: %w", err)
		}
	default:
		// Same zipcode already stored, nothing to write.
	}

	return "", nil
}

// Delete removes the user and any address rows it owns. Addresses go first
// so a failure never orphans them.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return apperr.NotFound("user")
	}

	if u.Address != nil {
		if err := s.addresses.DeleteByUserID(ctx, id); err != nil {
			return fmt.Errorf("delete addresses: %w", err)
		}
	}

	return s.users.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user")
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, page *domain.PageRequest) (*in.UserListResult, error) {
	page.Normalize()
	users, total, err := s.users.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &in.UserListResult{Users: users, Total: total}, nil
}

func newAddress(userID uuid.UUID, info *domain.ZipcodeInfo, now time.Time) *domain.Address {
	return &domain.Address{
		ID:           uuid.New(),
		UserID:       userID,
		Zipcode:      info.Zipcode,
		Street:       info.Street,
		Neighborhood: info.Neighborhood,
		City:         info.City,
		State:        info.State,
		Complement:   optional(info.Complement),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
