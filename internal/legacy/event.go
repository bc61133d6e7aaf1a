// Package legacy bridges the RBAC role registry into the legacy
// single-role-per-user table. The bridge is write-only and best-effort:
// role creation emits a versioned event, a background adapter consumes it,
// and nothing in the read path ever consults the mirror. The drift window
// spans queue latency plus retries and is accepted by design of the
// migration boundary.
package legacy

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskTypeMirrorRole is the asynq task type carrying role-created events.
	TaskTypeMirrorRole = "legacy:mirror_role"
	// EventSchemaVersion guards the adapter against payload shape changes.
	EventSchemaVersion = 1
)

// RoleCreatedEvent is emitted once per role creation. BranchID is nil for
// globally scoped roles, matching the registry's null-is-global convention.
type RoleCreatedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	RoleID        string    `json:"role_id"`
	Name          string    `json:"name"`
	BranchID      *string   `json:"branch_id,omitempty"`
	Permissions   []string  `json:"permissions"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewMirrorRoleTask constructs the asynq task for a role-created event.
func NewMirrorRoleTask(event RoleCreatedEvent) (*asynq.Task, error) {
	if event.SchemaVersion == 0 {
		event.SchemaVersion = EventSchemaVersion
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeMirrorRole, data), nil
}
