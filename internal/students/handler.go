package students

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/halcyon-edu/campus/internal/platform/httpx"
	"github.com/halcyon-edu/campus/internal/rbac"
	"github.com/halcyon-edu/campus/internal/shared"
)

// PermStudentsRead guards student record reads.
const PermStudentsRead = "students:read"

// Handler serves the student read endpoint. It demonstrates ownership
// escalation composed with the engine: a student may always view their own
// record, everyone else needs students:read.
type Handler struct {
	logger *slog.Logger
	repo   Repository
	authz  rbac.Authorizer
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo Repository, authz rbac.Authorizer) *Handler {
	return &Handler{logger: logger, repo: repo, authz: authz}
}

// MountRoutes registers student routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{studentID}", h.get)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	studentID := chi.URLParam(r, "studentID")

	decision := rbac.CheckOwnerOrPermission(r.Context(), h.authz, h.repo, principal, studentID, PermStudentsRead)
	if !decision.Granted {
		httpx.Forbidden(w, decision.Missing)
		return
	}

	student, err := h.repo.Get(r.Context(), studentID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, student)
}
