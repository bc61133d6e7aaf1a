package assignments

import "time"

// Assignment binds a user to a role within a branch, optionally bounded in
// time. An assignment whose ExpiresAt is in the past is inert: excluded
// from every active-roles query and authorization decision without any
// cleanup job running.
type Assignment struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	RoleID     string     `json:"role_id"`
	BranchID   string     `json:"branch_id"`
	AssignedBy string     `json:"assigned_by"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ActiveAt reports whether the assignment is live at the given instant.
func (a Assignment) ActiveAt(t time.Time) bool {
	return a.ExpiresAt == nil || a.ExpiresAt.After(t)
}
