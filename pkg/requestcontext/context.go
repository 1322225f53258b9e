// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them, services read them; keeping
// the package free of net/http lets workers and tests use the same seams.
//
// Usage in services (read values):
//
//	actor := requestcontext.Actor(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithActor(ctx, memberID)
package requestcontext

import (
	"context"
	"time"

	id "tempo/pkg/domain"
)

type (
	actorKey       struct{}
	tenantKey      struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Actor retrieves the acting member ID from the context. Returns the zero
// value if not set.
func Actor(ctx context.Context) id.MemberID {
	if actor, ok := ctx.Value(actorKey{}).(id.MemberID); ok {
		return actor
	}
	return id.MemberID{}
}

// WithActor injects the acting member ID into the context.
func WithActor(ctx context.Context, actor id.MemberID) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Tenant retrieves the tenant ID from the context.
func Tenant(ctx context.Context) id.TenantID {
	if tenant, ok := ctx.Value(tenantKey{}).(id.TenantID); ok {
		return tenant
	}
	return id.TenantID{}
}

// WithTenant injects the tenant ID into the context.
func WithTenant(ctx context.Context, tenant id.TenantID) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenant)
}

// RequestID retrieves the correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context. Falls back to
// time.Now() for non-HTTP contexts like workers, CLI, and tests that did not
// inject one.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Every event appended
// within one command carries the same occurred-at timestamp this way.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
