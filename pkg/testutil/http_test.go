package testutil

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadBodyIsRepeatable(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"abc","status":"draft"}`))
	})

	rr := DoRequest(handler, NewRequest(t, http.MethodGet, "/things/abc"))

	// Consecutive body assertions against one recorder must all see the body.
	AssertJSONContains(t, rr, "id", "abc")
	AssertJSONContains(t, rr, "status", "draft")
	assert.JSONEq(t, `{"id":"abc","status":"draft"}`, string(ReadBody(t, rr)))
}
