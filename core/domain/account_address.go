package domain

import (
	"time"

	"github.com/google/uuid"
)

// Address belongs to exactly one user. A user has at most one address;
// it is only ever written as a side effect of a user create or update.
type Address struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Zipcode      string    `json:"zipcode"`
	Street       string    `json:"street"`
	Neighborhood string    `json:"neighborhood"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Complement   *string   `json:"complement,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ZipcodeInfo is the resolved result of a postal-code lookup. Transient,
// never persisted as-is.
type ZipcodeInfo struct {
	Zipcode      string `json:"zipcode"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	Complement   string `json:"complement"`
}
