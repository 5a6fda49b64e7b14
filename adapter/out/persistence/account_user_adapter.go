package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"account_server/core/domain"
	"account_server/core/port/out"
	"account_server/pkg/apperr"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UserAdapter implements out.UserRepository
type UserAdapter struct {
	db *sqlx.DB
}

// NewUserAdapter creates a new UserAdapter
func NewUserAdapter(db *sqlx.DB) out.UserRepository {
	return &UserAdapter{db: db}
}

type userRow struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`

	// Address columns from the LEFT JOIN, null when no address exists.
	AddrID           *uuid.UUID `db:"addr_id"`
	AddrZipcode      *string    `db:"addr_zipcode"`
	AddrStreet       *string    `db:"addr_street"`
	AddrNeighborhood *string    `db:"addr_neighborhood"`
	AddrCity         *string    `db:"addr_city"`
	AddrState        *string    `db:"addr_state"`
	AddrComplement   *string    `db:"addr_complement"`
	AddrCreatedAt    *time.Time `db:"addr_created_at"`
	AddrUpdatedAt    *time.Time `db:"addr_updated_at"`
}

func (r userRow) toDomain() *domain.User {
	u := &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.AddrID != nil {
		u.Address = &domain.Address{
			ID:           *r.AddrID,
			UserID:       r.ID,
			Zipcode:      deref(r.AddrZipcode),
			Street:       deref(r.AddrStreet),
			Neighborhood: deref(r.AddrNeighborhood),
			City:         deref(r.AddrCity),
			State:        deref(r.AddrState),
			Complement:   r.AddrComplement,
			CreatedAt:    derefTime(r.AddrCreatedAt),
			UpdatedAt:    derefTime(r.AddrUpdatedAt),
		}
	}
	return u
}

const userWithAddressColumns = `
	u.id, u.email, u.password_hash, u.first_name, u.last_name,
	u.created_at, u.updated_at,
	a.id AS addr_id, a.zipcode AS addr_zipcode, a.street AS addr_street,
	a.neighborhood AS addr_neighborhood, a.city AS addr_city,
	a.state AS addr_state, a.complement AS addr_complement,
	a.created_at AS addr_created_at, a.updated_at AS addr_updated_at`

func (r *UserAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		LEFT JOIN user_addresses a ON a.user_id = u.id
		WHERE u.id = $1`, userWithAddressColumns)

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return row.toDomain(), nil
}

func (r *UserAdapter) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		FROM users
		WHERE email = $1`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return row.toDomain(), nil
}

func (r *UserAdapter) List(ctx context.Context, page *domain.PageRequest) ([]*domain.User, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		LEFT JOIN user_addresses a ON a.user_id = u.id
		ORDER BY u.created_at, u.id
		LIMIT $1 OFFSET $2`, userWithAddressColumns)

	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, page.Limit, page.Offset); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	users := make([]*domain.User, len(rows))
	for i, row := range rows {
		users[i] = row.toDomain()
	}
	return users, total, nil
}

func (r *UserAdapter) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.AlreadyExists("user")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserAdapter) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, first_name = $4, last_name = $5, updated_at = $6
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.AlreadyExists("user")
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
