// Package httputil centralizes JSON encoding and domain error translation so
// every handler returns the same envelopes.
package httputil

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	dErrors "tempo/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the error envelope. Description is omitted for internal
// errors so storage failures never leak details to clients.
type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteError translates a domain error into the JSON error envelope. Errors
// without a domain code become opaque 500s.
func WriteError(w http.ResponseWriter, err error) {
	status := dErrors.ToHTTPStatus(err)
	body := errorBody{Error: string(dErrors.CodeInternal)}

	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		body.Error = string(domainErr.Code)
		if domainErr.Code != dErrors.CodeInternal {
			body.Description = domainErr.Message
		}
	}
	WriteJSON(w, status, body)
}

// Decode parses the JSON request body into T. On failure it writes a
// bad-request envelope and returns false; the handler should just return.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *log.Logger) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Printf("invalid request body on %s %s: %v", r.Method, r.URL.Path, err)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		var zero T
		return zero, false
	}
	return req, true
}
