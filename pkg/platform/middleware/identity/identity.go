// Package identity extracts the caller identity headers set by the edge
// proxy. Authentication itself happens upstream; this service trusts
// X-Member-ID and X-Tenant-ID the same way it would trust a verified token.
package identity

import (
	"net/http"

	id "tempo/pkg/domain"
	"tempo/pkg/requestcontext"
)

const (
	headerMemberID = "X-Member-ID"
	headerTenantID = "X-Tenant-ID"
)

// Middleware copies the identity headers into the request context. Missing
// or malformed headers leave the zero value; handlers that need an actor
// must check for it.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if memberID, err := id.ParseMemberID(r.Header.Get(headerMemberID)); err == nil {
			ctx = requestcontext.WithActor(ctx, memberID)
		}
		if tenantID, err := id.ParseTenantID(r.Header.Get(headerTenantID)); err == nil {
			ctx = requestcontext.WithTenant(ctx, tenantID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
