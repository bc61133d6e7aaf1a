package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/halcyon-edu/campus/internal/platform/httpx"
	"github.com/halcyon-edu/campus/internal/shared"
)

// Principal headers populated by the upstream authenticator. Requests
// reaching this service have already been authenticated; these headers are
// the request-boundary contract, and a request without them is rejected
// 401 before any authorization logic runs.
const (
	HeaderUserID     = "X-Auth-User-Id"
	HeaderLegacyRole = "X-Auth-Legacy-Role"
	HeaderBranchID   = "X-Auth-Branch-Id"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Config *Config
}

// MiddlewareStack installs the campus middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		SSLRedirect:           cfg.Config != nil && cfg.Config.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})

	return []func(http.Handler) http.Handler{
		secureMiddleware.Handler,
		httprate.LimitByIP(300, time.Minute),
	}
}

// PrincipalMiddleware resolves the authenticated principal from the
// upstream headers into the request context.
func PrincipalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		principal := shared.Principal{
			UserID:     userID,
			LegacyRole: strings.TrimSpace(r.Header.Get(HeaderLegacyRole)),
			BranchID:   strings.TrimSpace(r.Header.Get(HeaderBranchID)),
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
