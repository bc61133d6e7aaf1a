package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-edu/campus/internal/shared"
)

func TestPrincipalMiddlewareResolvesHeaders(t *testing.T) {
	var captured shared.Principal
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, found = shared.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/roles", nil)
	req.Header.Set(HeaderUserID, " user-1 ")
	req.Header.Set(HeaderLegacyRole, "teacher")
	req.Header.Set(HeaderBranchID, "T1")
	rec := httptest.NewRecorder()

	PrincipalMiddleware(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, found)
	assert.Equal(t, "user-1", captured.UserID)
	assert.Equal(t, "teacher", captured.LegacyRole)
	assert.Equal(t, "T1", captured.BranchID)
}

func TestPrincipalMiddlewareRejectsAnonymous(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a principal")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/roles", nil)
	rec := httptest.NewRecorder()

	PrincipalMiddleware(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareStackOrder(t *testing.T) {
	stack := MiddlewareStack(MiddlewareConfig{Config: &Config{AppEnv: "development"}})
	require.Len(t, stack, 2)

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for i := len(stack) - 1; i >= 0; i-- {
		handler = stack[i](handler)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.0.0.1:44321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
