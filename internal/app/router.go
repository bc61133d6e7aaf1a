package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/halcyon-edu/campus/internal/assignments"
	"github.com/halcyon-edu/campus/internal/audit"
	"github.com/halcyon-edu/campus/internal/permissions"
	"github.com/halcyon-edu/campus/internal/roles"
	"github.com/halcyon-edu/campus/internal/students"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Config             *Config
	PermissionsHandler *permissions.Handler
	RolesHandler       *roles.Handler
	AssignmentsHandler *assignments.Handler
	AuditHandler       *audit.Handler
	StudentsHandler    *students.Handler
}

// NewRouter assembles the HTTP router. Authorization is enforced inside
// each handler's MountRoutes; this layer only resolves the principal and
// installs the cross-cutting middleware.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	for _, mw := range MiddlewareStack(MiddlewareConfig{Config: p.Config}) {
		r.Use(mw)
	}
	if p.Config != nil {
		r.Use(chimw.Timeout(p.Config.AppRequestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(PrincipalMiddleware)

		r.Route("/permissions", p.PermissionsHandler.MountRoutes)
		r.Route("/roles", p.RolesHandler.MountRoutes)
		r.Route("/assignments", p.AssignmentsHandler.MountRoutes)
		r.Route("/audit", p.AuditHandler.MountRoutes)
		r.Route("/students", p.StudentsHandler.MountRoutes)
	})

	return r
}
