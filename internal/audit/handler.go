package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/halcyon-edu/campus/internal/platform/httpx"
	"github.com/halcyon-edu/campus/internal/rbac"
)

// PermAuditView guards audit review endpoints.
const PermAuditView = "audit:read"

// Handler exposes audit review endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(PermAuditView))
		r.Get("/", h.query)
	})
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filters{
		Actor:  q.Get("actor"),
		Entity: q.Get("entity"),
	}
	if raw := q.Get("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			f.From = t
		}
	}
	if raw := q.Get("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			f.To = t
		}
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	result, err := h.service.Query(r.Context(), f)
	if err != nil {
		h.logger.Error("audit query", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
