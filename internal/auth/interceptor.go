package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// UserClaims is the token issued by the identity provider bridge.
type UserClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret []byte
	// trustMetadata accepts x-user-id / x-user-role set by a trusted gateway when no
	// bearer token is present.
	trustMetadata bool
}

func NewAuthenticator(secret string, trustMetadata bool) *Authenticator {
	return &Authenticator{secret: []byte(secret), trustMetadata: trustMetadata}
}

func (a *Authenticator) Authenticate(ctx context.Context) (Principal, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return Principal{}, apperror.ErrUnauthenticated
	}

	if vals := md.Get("authorization"); len(vals) > 0 {
		parts := strings.SplitN(vals[0], " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return Principal{}, fmt.Errorf("invalid authorization format: %w", apperror.ErrUnauthenticated)
		}
		return a.parseToken(parts[1])
	}

	if !a.trustMetadata {
		return Principal{}, fmt.Errorf("missing authorization token: %w", apperror.ErrUnauthenticated)
	}

	userID := first(md.Get("x-user-id"))
	if userID == "" {
		return Principal{}, fmt.Errorf("missing x-user-id: %w", apperror.ErrUnauthenticated)
	}
	role, err := ParseRole(first(md.Get("x-user-role")))
	if err != nil {
		return Principal{}, err
	}
	return Principal{
		UserID: userID,
		Email:  first(md.Get("x-user-email")),
		Name:   first(md.Get("x-user-name")),
		Role:   role,
	}, nil
}

func (a *Authenticator) parseToken(tokenString string) (Principal, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Principal{}, fmt.Errorf("invalid or expired token: %w", apperror.ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return Principal{}, fmt.Errorf("token has no subject: %w", apperror.ErrUnauthenticated)
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return Principal{}, err
	}
	return Principal{UserID: claims.Subject, Email: claims.Email, Name: claims.Name, Role: role}, nil
}

// UnaryInterceptor authenticates every call except the standard health service.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if strings.HasPrefix(info.FullMethod, "/grpc.health.v1.Health/") {
			return handler(ctx, req)
		}
		p, err := a.Authenticate(ctx)
		if err != nil {
			return nil, apperror.ToGRPC(err)
		}
		return handler(WithPrincipal(ctx, p), req)
	}
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
