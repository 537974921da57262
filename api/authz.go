package api

import (
	"context"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/neuroconnect/neuro-connect-api/models"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated identity attached to a request by the auth
// middleware. Every mutating handler checks it with RequireRole before
// touching the database.
type Principal struct {
	ID    primitive.ObjectID
	Email string
	Role  models.Role
}

// WithPrincipal stores the principal on the context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the authenticated principal from the request context
func PrincipalFrom(r *http.Request) (*Principal, error) {
	p, ok := r.Context().Value(principalKey).(*Principal)
	if !ok || p == nil {
		return nil, fmt.Errorf("no authenticated principal on request")
	}
	return p, nil
}

// RequireRole is the per-operation authorization predicate: it extracts the
// principal and rejects the request unless its role is one of the given
// roles. Callers must not mutate anything before this check passes.
func RequireRole(r *http.Request, roles ...models.Role) (*Principal, error) {
	p, err := PrincipalFrom(r)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if p.Role == role {
			return p, nil
		}
	}
	return nil, fmt.Errorf("role %q is not permitted to perform this operation", p.Role)
}
