package permissions

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/halcyon-edu/campus/internal/platform/httpx"
	"github.com/halcyon-edu/campus/internal/rbac"
)

// Permission names guarding the catalog's own endpoints.
const (
	PermCatalogView = "permissions:read"
	PermCatalogEdit = "permissions:create"
)

// Handler manages permission catalog endpoints.
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

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(PermCatalogEdit))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(PermCatalogView, "roles:update"))
		r.Get("/", h.list)
		r.Get("/grouped", h.grouped)
	})
}

type createPermissionForm struct {
	Resource    string `json:"resource" validate:"required"`
	Action      string `json:"action" validate:"required"`
	Description string `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form createPermissionForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.Create(r.Context(), form.Resource, form.Action, form.Description)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	perms, paging, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": perms, "pagination": paging})
}

func (h *Handler) grouped(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.service.GroupByResource(r.Context())
	if err != nil {
		h.logger.Error("group permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, grouped)
}
