package auth

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when a bearer credential cannot be resolved
// to a verified identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is a verified caller resolved from a bearer credential.
type Identity struct {
	UserID string
	Email  string
}

// Verifier exchanges a bearer token for a verified identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
