package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the account aggregate root. PasswordHash never serializes.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Address is the user's single address, nil when none is attached.
	Address *Address `json:"address,omitempty"`
}
