package ctxkeys

import (
	"context"

	"github.com/tripdiary/tripadmin/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	IdentityKey contextKey = "identity"
)

// Identity is the authenticated caller, taken from a verified token
type Identity struct {
	Username string
	Role     string
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == model.RoleAdmin
}

func Caller(ctx context.Context) *Identity {
	identity, _ := ctx.Value(IdentityKey).(*Identity)
	return identity
}

func WithCaller(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}
