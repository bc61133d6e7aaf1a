package assignments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/halcyon-edu/campus/internal/audit"
	"github.com/halcyon-edu/campus/internal/shared"
)

// Service orchestrates role assignment operations.
type Service struct {
	repo    Repository
	auditor audit.Recorder
}

// NewService constructs an assignment Service.
func NewService(repo Repository, auditor audit.Recorder) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Assign binds a role to a user within a branch. Multiple simultaneous
// active bindings of the same triple are permitted: stacked time-bounded
// grants are a supported use, so no duplicate guard exists here.
func (s *Service) Assign(ctx context.Context, userID, roleID, branchID, assignedBy string, expiresAt *time.Time) (Assignment, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(roleID) == "" {
		return Assignment{}, fmt.Errorf("%w: user and role are required", shared.ErrValidation)
	}
	if strings.TrimSpace(branchID) == "" {
		return Assignment{}, fmt.Errorf("%w: branch is required", shared.ErrValidation)
	}
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return Assignment{}, fmt.Errorf("%w: expiry must be in the future", shared.ErrValidation)
	}

	created, err := s.repo.Create(ctx, Assignment{
		ID:         uuid.NewString(),
		UserID:     userID,
		RoleID:     roleID,
		BranchID:   branchID,
		AssignedBy: assignedBy,
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		return Assignment{}, err
	}
	s.recordAudit(ctx, audit.ActionAssign, created.ID, branchID, map[string]any{
		"user_id": userID,
		"role_id": roleID,
	})
	return created, nil
}

// Remove deletes all bindings matching the exact triple and reports how
// many were removed; zero matches is not an error.
func (s *Service) Remove(ctx context.Context, userID, roleID, branchID string) (int64, error) {
	removed, err := s.repo.RemoveMatching(ctx, userID, roleID, branchID)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.recordAudit(ctx, audit.ActionRevoke, roleID, branchID, map[string]any{
			"user_id": userID,
			"removed": removed,
		})
	}
	return removed, nil
}

// ListForUser returns every assignment the user has, active or not.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Assignment, error) {
	return s.repo.ListForUser(ctx, userID)
}

// ActiveForUser returns assignments live at call time.
func (s *Service) ActiveForUser(ctx context.Context, userID string) ([]Assignment, error) {
	return s.repo.ListActiveForUser(ctx, userID)
}

// ExpireNow revokes an assignment immediately while keeping its row.
func (s *Service) ExpireNow(ctx context.Context, assignmentID string) error {
	if err := s.repo.ExpireNow(ctx, assignmentID); err != nil {
		return err
	}
	s.recordAudit(ctx, audit.ActionExpire, assignmentID, "", nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, action, entityID, branchID string, meta map[string]any) {
	if s.auditor == nil {
		return
	}
	actor := ""
	if principal, ok := shared.PrincipalFromContext(ctx); ok {
		actor = principal.UserID
		if branchID == "" {
			branchID = principal.BranchID
		}
	}
	s.auditor.Record(ctx, audit.Entry{
		Actor:    actor,
		Action:   action,
		Entity:   "role_assignment",
		EntityID: entityID,
		BranchID: branchID,
		Meta:     meta,
	})
}
