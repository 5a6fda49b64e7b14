package out

import (
	"context"
	"errors"

	"account_server/core/domain"
)

// ErrZipcodeNotFound reports that the lookup service has no record for the
// postal code. Callers must treat it as a soft condition, never a request
// failure.
var ErrZipcodeNotFound = errors.New("zipcode not found")

// ZipcodeProvider resolves a postal code into address fields.
type ZipcodeProvider interface {
	Lookup(ctx context.Context, zipcode string) (*domain.ZipcodeInfo, error)
}
