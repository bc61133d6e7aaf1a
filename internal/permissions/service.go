package permissions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/halcyon-edu/campus/internal/audit"
	"github.com/halcyon-edu/campus/internal/shared"
)

// Service orchestrates permission catalog operations. The catalog is
// additive only: permissions are never deleted while roles reference them.
type Service struct {
	repo    Repository
	cache   *Cache
	auditor audit.Recorder
}

// NewService constructs a catalog Service.
func NewService(repo Repository, cache *Cache, auditor audit.Recorder) *Service {
	return &Service{repo: repo, cache: cache, auditor: auditor}
}

// Create registers a new catalog entry under the canonical resource:action
// name. Returns shared.ErrDuplicate when the name already exists.
func (s *Service) Create(ctx context.Context, resource, action, description string) (Permission, error) {
	name, err := BuildName(resource, action)
	if err != nil {
		return Permission{}, err
	}
	resource, actionPart, _ := strings.Cut(name, ":")

	created, err := s.repo.Create(ctx, Permission{
		ID:          uuid.NewString(),
		Name:        name,
		Resource:    resource,
		Action:      actionPart,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		return Permission{}, err
	}

	// A failed bump leaves the grouped view stale until TTL; the catalog
	// row itself is durable.
	_ = s.cache.Bump(ctx)
	s.recordAudit(ctx, created)
	return created, nil
}

// List returns a page of catalog entries with the total count.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Permission, shared.Pagination, error) {
	limit, offset := shared.LimitOffset(page, perPage)
	perms, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return perms, shared.NewPagination(page, limit, total), nil
}

// GroupByResource returns the catalog keyed by resource. Role definition
// resolves a caller's module selection through this view.
func (s *Service) GroupByResource(ctx context.Context) (map[string][]ModuleAction, error) {
	return s.cache.FetchGrouped(ctx, s.repo.GroupByResource)
}

// ResolveModules maps module (resource) names to their concrete catalog
// entries. Unknown modules resolve to nothing rather than failing, so a
// stale UI module list cannot block role definition.
func (s *Service) ResolveModules(ctx context.Context, moduleNames []string) ([]Permission, error) {
	if len(moduleNames) == 0 {
		return nil, nil
	}
	grouped, err := s.GroupByResource(ctx)
	if err != nil {
		return nil, fmt.Errorf("permissions: resolve modules: %w", err)
	}
	var names []string
	seen := make(map[string]struct{})
	for _, module := range moduleNames {
		module = strings.ToLower(strings.TrimSpace(module))
		for _, entry := range grouped[module] {
			if _, ok := seen[entry.Permission]; ok {
				continue
			}
			seen[entry.Permission] = struct{}{}
			names = append(names, entry.Permission)
		}
	}
	return s.repo.GetByNames(ctx, names)
}

// ResolveNames maps exact permission names to catalog entries. Names absent
// from the catalog are silently dropped.
func (s *Service) ResolveNames(ctx context.Context, names []string) ([]Permission, error) {
	return s.repo.GetByNames(ctx, names)
}

func (s *Service) recordAudit(ctx context.Context, p Permission) {
	if s.auditor == nil {
		return
	}
	actor := ""
	if principal, ok := shared.PrincipalFromContext(ctx); ok {
		actor = principal.UserID
	}
	s.auditor.Record(ctx, audit.Entry{
		Actor:    actor,
		Action:   audit.ActionCreate,
		Entity:   "permission",
		EntityID: p.ID,
		Meta:     map[string]any{"name": p.Name},
	})
}
