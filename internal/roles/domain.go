package roles

import (
	"time"

	"github.com/halcyon-edu/campus/internal/permissions"
)

// Role represents a named bundle of permissions. BranchID nil means the
// role is globally scoped and visible from every branch; treating nil as
// "no role" would break cross-branch system roles.
type Role struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	BranchID    *string                  `json:"branch_id,omitempty"`
	Description string                   `json:"description,omitempty"`
	IsSystem    bool                     `json:"is_system"`
	Permissions []permissions.Permission `json:"permissions,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// IsGlobal reports whether the role is visible from every branch.
func (r Role) IsGlobal() bool {
	return r.BranchID == nil
}
