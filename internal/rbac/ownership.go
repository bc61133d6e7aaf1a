package rbac

import (
	"context"

	"github.com/halcyon-edu/campus/internal/shared"
)

// OwnershipResolver reports the owning user of a resource. Ownership is
// domain-specific, so each resource type supplies its own resolver and the
// escalation stays at the call site rather than inside the engine.
type OwnershipResolver interface {
	OwnerID(ctx context.Context, resourceID string) (string, error)
}

// CheckOwnerOrPermission grants when the principal owns the resource,
// falling back to a regular permission check otherwise. Resolver failures
// fall through to the permission check rather than denying outright, so a
// broken resolver can not lock out properly permissioned staff.
func CheckOwnerOrPermission(ctx context.Context, authz Authorizer, resolver OwnershipResolver, p shared.Principal, resourceID, permission string) Decision {
	if resolver != nil {
		owner, err := resolver.OwnerID(ctx, resourceID)
		if err == nil && owner != "" && owner == p.UserID {
			return Decision{Granted: true}
		}
	}
	return authz.Check(ctx, p, permission)
}
