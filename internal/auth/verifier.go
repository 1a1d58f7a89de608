// Package auth verifies bearer credentials and resolves them to an identity.
//
// Production identities come from Firebase ID tokens. For development and
// tests a local PASETO token service mints and verifies equivalent tokens.
package auth

import (
	"context"
	"strings"

	domainerrors "github.com/bookcourier/bookcourier-server/internal/errors"
)

// Identity is a verified caller.
type Identity struct {
	Email string `json:"email"`
	UID   string `json:"uid"`
	Name  string `json:"name,omitempty"`
}

// Verifier validates a raw bearer token.
// Implementations return domain InvalidToken errors for rejected tokens.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// ParseBearer extracts the token from an Authorization header value.
// A missing header, a non-Bearer scheme, or an empty token is Unauthenticated.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", domainerrors.Unauthenticated("missing authorization header")
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", domainerrors.Unauthenticated("authorization header must be Bearer <token>")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", domainerrors.Unauthenticated("empty bearer token")
	}
	return token, nil
}

// Authenticate parses header and verifies the token it carries.
func Authenticate(ctx context.Context, v Verifier, header string) (*Identity, error) {
	token, err := ParseBearer(header)
	if err != nil {
		return nil, err
	}
	return v.Verify(ctx, token)
}
