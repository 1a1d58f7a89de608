package api

import (
	"context"
	"net/http"

	"github.com/bookcourier/bookcourier-server/internal/auth"
	domainerrors "github.com/bookcourier/bookcourier-server/internal/errors"
	"github.com/bookcourier/bookcourier-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	identityKey  ctxKey = "identity"
	authErrorKey ctxKey = "authError"
)

// identityFrom returns the verified identity, if any, and the error that
// rejected a presented token, if any.
func identityFrom(ctx context.Context) (*auth.Identity, error) {
	id, _ := ctx.Value(identityKey).(*auth.Identity)
	err, _ := ctx.Value(authErrorKey).(error)
	return id, err
}

// callerFrom returns the authenticated caller. Handlers behind a Required
// policy always have one.
func callerFrom(ctx context.Context) (service.Caller, error) {
	id, err := identityFrom(ctx)
	if id == nil {
		if err != nil {
			return service.Caller{}, err
		}
		return service.Caller{}, domainerrors.Unauthenticated("authentication required")
	}
	return service.Caller{Email: id.Email, Name: id.Name}, nil
}

// identityMiddleware verifies a bearer token when one is present and stores
// the identity in context. It never rejects: a bad token is remembered so
// the policy layer can answer INVALID_TOKEN for routes that need a caller,
// while public routes still serve.
func identityMiddleware(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			identity, err := auth.Authenticate(ctx, verifier, header)
			if err != nil {
				ctx = context.WithValue(ctx, authErrorKey, err)
			} else {
				ctx = context.WithValue(ctx, identityKey, identity)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
