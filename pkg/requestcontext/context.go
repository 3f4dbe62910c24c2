// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are set by middleware and consumed by services. Keeping this package
// free of net/http lets services import only what they need.
//
// Usage in services (read values):
//
//	identityID := requestcontext.IdentityID(ctx)
//	role := requestcontext.Role(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithIdentity(ctx, identityID, role)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "seaplan/pkg/domain"
)

type (
	identityIDKey  struct{}
	roleKey        struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// IdentityID retrieves the authenticated identity from the context.
// Returns the zero value if not set.
func IdentityID(ctx context.Context) id.IdentityID {
	if v, ok := ctx.Value(identityIDKey{}).(id.IdentityID); ok {
		return v
	}
	return id.IdentityID{}
}

// Role retrieves the authenticated role from the context.
// Returns the empty role if not set.
func Role(ctx context.Context) id.Role {
	if v, ok := ctx.Value(roleKey{}).(id.Role); ok {
		return v
	}
	return ""
}

// WithIdentity injects an authenticated identity and its role.
func WithIdentity(ctx context.Context, identityID id.IdentityID, role id.Role) context.Context {
	ctx = context.WithValue(ctx, identityIDKey{}, identityID)
	return context.WithValue(ctx, roleKey{}, role)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context. Falls back to
// time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests that don't run the full HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
