package roles

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/halcyon-edu/campus/internal/platform/httpx"
	"github.com/halcyon-edu/campus/internal/rbac"
)

// Permission names guarding the registry's own endpoints.
const (
	PermRolesView = "roles:read"
	PermRolesEdit = "roles:update"
)

// Handler manages role registry endpoints.
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

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(PermRolesView, PermRolesEdit))
		r.Get("/", h.list)
		r.Get("/{roleID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(PermRolesEdit))
		r.Post("/", h.define)
		r.Put("/{roleID}/permissions", h.updatePermissions)
		r.Delete("/{roleID}", h.remove)
	})
}

type defineRoleForm struct {
	Name        string   `json:"name" validate:"required"`
	BranchID    *string  `json:"branch_id"`
	Modules     []string `json:"modules"`
	Description string   `json:"description"`
}

func (h *Handler) define(w http.ResponseWriter, r *http.Request) {
	var form defineRoleForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.Define(r.Context(), form.BranchID, form.Name, form.Modules, form.Description)
	if err != nil {
		h.logger.Error("define role", slog.String("name", form.Name), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var branchID *string
	if raw := q.Get("branch_id"); raw != "" {
		branchID = &raw
	}
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	list, paging, err := h.service.ListForBranch(r.Context(), branchID, page, perPage)
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": list, "pagination": paging})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.Get(r.Context(), chi.URLParam(r, "roleID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

type updatePermissionsForm struct {
	PermissionIDs []string `json:"permission_ids" validate:"required"`
}

func (h *Handler) updatePermissions(w http.ResponseWriter, r *http.Request) {
	var form updatePermissionsForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	updated, err := h.service.UpdatePermissions(r.Context(), chi.URLParam(r, "roleID"), form.PermissionIDs)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "roleID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
