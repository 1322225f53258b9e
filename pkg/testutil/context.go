package testutil

import (
	"net/http"
	"time"

	id "tempo/pkg/domain"
	"tempo/pkg/requestcontext"
)

// WithActor adds an acting member ID to the request context, simulating what
// the identity middleware does for authenticated requests. Invalid IDs are
// silently ignored.
func WithActor(req *http.Request, memberID string) *http.Request {
	if parsed, err := id.ParseMemberID(memberID); err == nil {
		return req.WithContext(requestcontext.WithActor(req.Context(), parsed))
	}
	return req
}

// WithTenant adds a tenant ID to the request context. Invalid IDs are
// silently ignored.
func WithTenant(req *http.Request, tenantID string) *http.Request {
	if parsed, err := id.ParseTenantID(tenantID); err == nil {
		return req.WithContext(requestcontext.WithTenant(req.Context(), parsed))
	}
	return req
}

// WithIdentity adds both tenant and actor, the typical state of a routed
// request.
func WithIdentity(req *http.Request, tenantID, memberID string) *http.Request {
	return WithActor(WithTenant(req, tenantID), memberID)
}

// WithFrozenTime pins the request-scoped clock so event timestamps are
// deterministic.
func WithFrozenTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
