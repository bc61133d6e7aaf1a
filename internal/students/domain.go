package students

import "time"

// Student is the minimal record the authorization layer needs to reason
// about: identity, branch, and the owning user account (the student's own
// login, when one exists).
type Student struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	BranchID    string    `json:"branch_id"`
	FullName    string    `json:"full_name"`
	AdmissionNo string    `json:"admission_no"`
	CreatedAt   time.Time `json:"created_at"`
}
