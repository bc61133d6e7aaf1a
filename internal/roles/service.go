package roles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/halcyon-edu/campus/internal/audit"
	"github.com/halcyon-edu/campus/internal/legacy"
	"github.com/halcyon-edu/campus/internal/permissions"
	"github.com/halcyon-edu/campus/internal/shared"
)

// Catalog is the slice of the permission catalog the registry consumes.
type Catalog interface {
	ResolveModules(ctx context.Context, moduleNames []string) ([]permissions.Permission, error)
	ResolveNames(ctx context.Context, names []string) ([]permissions.Permission, error)
}

// Service orchestrates role registry operations.
type Service struct {
	repo      Repository
	catalog   Catalog
	essential []string
	publisher legacy.Publisher
	auditor   audit.Recorder
	logger    *slog.Logger
}

// NewService constructs the registry. essential is the deployment's
// Essential Permission Set: permission names injected into every newly
// defined role so baseline functionality never breaks.
func NewService(repo Repository, catalog Catalog, essential []string, publisher legacy.Publisher, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		essential: essential,
		publisher: publisher,
		auditor:   auditor,
		logger:    logger,
	}
}

// Define creates a role scoped to branchID (nil for global). moduleNames
// are resolved to concrete catalog permissions and unioned with the
// essential set, so even an empty selection yields a usable role. The
// legacy mirror event is emitted best-effort: a publish failure is logged
// and never fails the creation.
func (s *Service) Define(ctx context.Context, branchID *string, name string, moduleNames []string, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name required", shared.ErrValidation)
	}

	modulePerms, err := s.catalog.ResolveModules(ctx, moduleNames)
	if err != nil {
		return Role{}, fmt.Errorf("roles: define %s: %w", name, err)
	}
	essentialPerms, err := s.catalog.ResolveNames(ctx, s.essential)
	if err != nil {
		return Role{}, fmt.Errorf("roles: define %s: %w", name, err)
	}
	if len(essentialPerms) < len(s.essential) {
		s.warn("essential permissions missing from catalog",
			slog.Int("configured", len(s.essential)), slog.Int("resolved", len(essentialPerms)))
	}

	merged := unionByID(modulePerms, essentialPerms)
	permissionIDs := make([]string, 0, len(merged))
	for _, p := range merged {
		permissionIDs = append(permissionIDs, p.ID)
	}

	created, err := s.repo.Create(ctx, Role{
		ID:          uuid.NewString(),
		Name:        name,
		BranchID:    branchID,
		Description: strings.TrimSpace(description),
	}, permissionIDs)
	if err != nil {
		return Role{}, err
	}
	created.Permissions = merged

	s.publishMirror(ctx, created)
	s.recordAudit(ctx, audit.ActionCreate, created.ID, map[string]any{
		"name":    created.Name,
		"modules": moduleNames,
	})
	return created, nil
}

// UpdatePermissions replaces the role's permission set with exactly the
// given ids. Unlike Define it does not re-inject the essential set; callers
// replacing permissions own the full resulting set. The asymmetry matches
// the behavior of role creation's older callers and is pinned by tests.
func (s *Service) UpdatePermissions(ctx context.Context, roleID string, permissionIDs []string) (Role, error) {
	if strings.TrimSpace(roleID) == "" {
		return Role{}, fmt.Errorf("%w: role id required", shared.ErrValidation)
	}
	if err := s.repo.ReplacePermissions(ctx, roleID, permissionIDs); err != nil {
		return Role{}, err
	}
	updated, err := s.repo.Get(ctx, roleID)
	if err != nil {
		return Role{}, err
	}
	s.recordAudit(ctx, audit.ActionUpdate, roleID, map[string]any{
		"permission_count": len(permissionIDs),
	})
	return updated, nil
}

// Delete hard-deletes a role. System roles are refused. Existing
// assignments are not cascaded; callers remove them first, and evaluation
// fails closed on dangling references either way.
func (s *Service) Delete(ctx context.Context, roleID string) error {
	role, err := s.repo.Get(ctx, roleID)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return fmt.Errorf("%w: system role %s cannot be deleted", shared.ErrValidation, role.Name)
	}
	if err := s.repo.Delete(ctx, roleID); err != nil {
		return err
	}
	s.recordAudit(ctx, audit.ActionDelete, roleID, map[string]any{"name": role.Name})
	return nil
}

// ListForBranch returns roles visible from branchID (branch union global),
// or every role when branchID is nil.
func (s *Service) ListForBranch(ctx context.Context, branchID *string, page, perPage int) ([]Role, shared.Pagination, error) {
	limit, offset := shared.LimitOffset(page, perPage)
	list, total, err := s.repo.ListForBranch(ctx, branchID, limit, offset)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, limit, total), nil
}

// Get fetches a role by id.
func (s *Service) Get(ctx context.Context, roleID string) (Role, error) {
	return s.repo.Get(ctx, roleID)
}

func (s *Service) publishMirror(ctx context.Context, role Role) {
	if s.publisher == nil {
		return
	}
	names := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		names = append(names, p.Name)
	}
	event := legacy.RoleCreatedEvent{
		SchemaVersion: legacy.EventSchemaVersion,
		RoleID:        role.ID,
		Name:          role.Name,
		BranchID:      role.BranchID,
		Permissions:   names,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.publisher.PublishRoleCreated(ctx, event); err != nil {
		s.warn("legacy mirror publish failed", slog.String("role", role.Name), slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, action, roleID string, meta map[string]any) {
	if s.auditor == nil {
		return
	}
	actor := ""
	branch := ""
	if principal, ok := shared.PrincipalFromContext(ctx); ok {
		actor = principal.UserID
		branch = principal.BranchID
	}
	s.auditor.Record(ctx, audit.Entry{
		Actor:    actor,
		Action:   action,
		Entity:   "role",
		EntityID: roleID,
		BranchID: branch,
		Meta:     meta,
	})
}

func (s *Service) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func unionByID(sets ...[]permissions.Permission) []permissions.Permission {
	seen := make(map[string]struct{})
	var merged []permissions.Permission
	for _, set := range sets {
		for _, p := range set {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}
	return merged
}
