// Package requestid assigns each request a correlation ID, honouring one
// supplied by the caller so traces can span services.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"tempo/pkg/requestcontext"
)

const header = "X-Request-ID"

// Middleware stores the request ID in the context and echoes it on the
// response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(header, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
