package assignments

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/halcyon-edu/campus/internal/platform/httpx"
	"github.com/halcyon-edu/campus/internal/rbac"
	"github.com/halcyon-edu/campus/internal/shared"
)

// PermRolesAssign guards the assignment endpoints.
const PermRolesAssign = "roles:assign"

// Handler manages role assignment endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW, validator: validator.New()}
}

// MountRoutes registers assignment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(PermRolesAssign))
		r.Post("/", h.assign)
		r.Delete("/", h.remove)
		r.Get("/users/{userID}", h.listForUser)
		r.Post("/{assignmentID}/expire", h.expire)
	})
}

type assignForm struct {
	UserID    string     `json:"user_id" validate:"required"`
	RoleID    string     `json:"role_id" validate:"required"`
	BranchID  string     `json:"branch_id" validate:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	var form assignForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	assignedBy := ""
	if principal, ok := shared.PrincipalFromContext(r.Context()); ok {
		assignedBy = principal.UserID
	}
	created, err := h.service.Assign(r.Context(), form.UserID, form.RoleID, form.BranchID, assignedBy, form.ExpiresAt)
	if err != nil {
		h.logger.Error("assign role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

type removeForm struct {
	UserID   string `json:"user_id" validate:"required"`
	RoleID   string `json:"role_id" validate:"required"`
	BranchID string `json:"branch_id" validate:"required"`
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	var form removeForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	removed, err := h.service.Remove(r.Context(), form.UserID, form.RoleID, form.BranchID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func (h *Handler) listForUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var (
		list []Assignment
		err  error
	)
	if r.URL.Query().Get("active") == "true" {
		list, err = h.service.ActiveForUser(r.Context(), userID)
	} else {
		list, err = h.service.ListForUser(r.Context(), userID)
	}
	if err != nil {
		h.logger.Error("list assignments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignments": list})
}

func (h *Handler) expire(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ExpireNow(r.Context(), chi.URLParam(r, "assignmentID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
