package rbac

import (
	"net/http"

	"github.com/halcyon-edu/campus/internal/platform/httpx"
	"github.com/halcyon-edu/campus/internal/shared"
)

// Middleware wires authorization checks in front of HTTP handlers. The
// route layer resolves the principal before these run; a request without
// one is rejected 401 here and never reaches the engine.
type Middleware struct {
	Authorizer Authorizer
}

// RequireAny ensures the current principal has at least one of the
// required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.require(perms, m.checkAny)
}

// RequireAll ensures the current principal has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return m.require(perms, m.checkAll)
}

func (m Middleware) require(perms []string, check func(r *http.Request, p shared.Principal, perms []string) Decision) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			decision := check(r, principal, perms)
			if !decision.Granted {
				httpx.Forbidden(w, decision.Missing)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) checkAny(r *http.Request, p shared.Principal, perms []string) Decision {
	return m.Authorizer.CheckAny(r.Context(), p, perms)
}

func (m Middleware) checkAll(r *http.Request, p shared.Principal, perms []string) Decision {
	return m.Authorizer.CheckAll(r.Context(), p, perms)
}
