package users

import "time"

// User represents a user account. LegacyRole is the single role name from
// the pre-RBAC data model; it still feeds the superuser bypass and stays
// until the migration completes.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	LegacyRole string    `json:"legacy_role,omitempty"`
	BranchID   string    `json:"branch_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
