package auth

import (
	"context"
	"crypto/subtle"
)

// StaticVerifier accepts a single operator token and maps it to a fixed
// identity. Used in local development and by the CLI.
type StaticVerifier struct {
	token    string
	identity Identity
}

func NewStaticVerifier(token string, identity Identity) *StaticVerifier {
	return &StaticVerifier{token: token, identity: identity}
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (Identity, error) {
	if v.token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(v.token)) != 1 {
		return Identity{}, ErrUnauthenticated
	}
	return v.identity, nil
}
