package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"account_server/core/domain"
	"account_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AddressAdapter implements out.AddressRepository
type AddressAdapter struct {
	db *sqlx.DB
}

// NewAddressAdapter creates a new AddressAdapter
func NewAddressAdapter(db *sqlx.DB) out.AddressRepository {
	return &AddressAdapter{db: db}
}

type addressRow struct {
	ID           uuid.UUID `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	Zipcode      string    `db:"zipcode"`
	Street       string    `db:"street"`
	Neighborhood string    `db:"neighborhood"`
	City         string    `db:"city"`
	State        string    `db:"state"`
	Complement   *string   `db:"complement"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r addressRow) toDomain() *domain.Address {
	return &domain.Address{
		ID:           r.ID,
		UserID:       r.UserID,
		Zipcode:      r.Zipcode,
		Street:       r.Street,
		Neighborhood: r.Neighborhood,
		City:         r.City,
		State:        r.State,
		Complement:   r.Complement,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r *AddressAdapter) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Address, error) {
	query := `
		SELECT id, user_id, zipcode, street, neighborhood, city, state, complement, created_at, updated_at
		FROM user_addresses
		WHERE user_id = $1`

	var row addressRow
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get address: %w", err)
	}

	return row.toDomain(), nil
}

func (r *AddressAdapter) Create(ctx context.Context, address *domain.Address) error {
	query := `
		INSERT INTO user_addresses (id, user_id, zipcode, street, neighborhood, city, state, complement, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		address.ID, address.UserID, address.Zipcode, address.Street,
		address.Neighborhood, address.City, address.State, address.Complement,
		address.CreatedAt, address.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create address: %w", err)
	}
	return nil
}

func (r *AddressAdapter) Update(ctx context.Context, address *domain.Address) error {
	query := `
		UPDATE user_addresses
		SET zipcode = $2, street = $3, neighborhood = $4, city = $5, state = $6, complement = $7, updated_at = $8
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		address.ID, address.Zipcode, address.Street, address.Neighborhood,
		address.City, address.State, address.Complement, address.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	return nil
}

func (r *AddressAdapter) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_addresses WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete addresses: %w", err)
	}
	return nil
}
