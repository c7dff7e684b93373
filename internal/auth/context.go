package auth

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, apperror.ErrUnauthenticated
	}
	return p, nil
}

// Require returns the principal from ctx if it may perform a.
func Require(ctx context.Context, a Action) (Principal, error) {
	p, err := PrincipalFromContext(ctx)
	if err != nil {
		return Principal{}, err
	}
	if err := Authorize(p, a); err != nil {
		return Principal{}, err
	}
	return p, nil
}
