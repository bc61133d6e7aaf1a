package legacy

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
)

// Adapter consumes role-created events and maintains the legacy mirror.
type Adapter struct {
	repo   Repository
	logger *slog.Logger
}

// NewAdapter constructs the compatibility adapter.
func NewAdapter(repo Repository, logger *slog.Logger) *Adapter {
	return &Adapter{repo: repo, logger: logger}
}

// HandleMirrorRole processes one TaskTypeMirrorRole task. Malformed or
// future-versioned payloads are dropped without retry; transient store
// failures are returned so asynq retries them.
func (a *Adapter) HandleMirrorRole(ctx context.Context, t *asynq.Task) error {
	var event RoleCreatedEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		a.logger.Warn("legacy mirror: bad payload", slog.Any("error", err))
		return asynq.SkipRetry
	}
	if event.SchemaVersion > EventSchemaVersion {
		a.logger.Warn("legacy mirror: unsupported schema version",
			slog.Int("version", event.SchemaVersion))
		return asynq.SkipRetry
	}
	if event.RoleID == "" || event.Name == "" {
		a.logger.Warn("legacy mirror: incomplete event", slog.String("role_id", event.RoleID))
		return asynq.SkipRetry
	}
	return a.repo.UpsertMirror(ctx, MirrorRole{
		RoleID:      event.RoleID,
		Name:        event.Name,
		BranchID:    event.BranchID,
		Permissions: strings.Join(event.Permissions, ","),
	})
}
