package audit

import "time"

// Entry is one append-only audit record. Entries are never updated or
// deleted by the application.
type Entry struct {
	ID       string         `json:"id"`
	Actor    string         `json:"actor"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entity_id,omitempty"`
	BranchID string         `json:"branch_id,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
	At       time.Time      `json:"at"`
}

// Action verbs recorded by the authorization subsystem.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionAssign = "ASSIGN"
	ActionRevoke = "REVOKE"
	ActionExpire = "EXPIRE"
)

// Filters narrows a Query call. Zero values mean "no filter".
type Filters struct {
	Actor    string
	Entity   string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// PagingInfo reports the page window returned by Query.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	PrevPage int  `json:"prev_page,omitempty"`
	NextPage int  `json:"next_page,omitempty"`
}

// Result bundles queried entries with paging metadata.
type Result struct {
	Entries []Entry    `json:"entries"`
	Paging  PagingInfo `json:"paging"`
}
