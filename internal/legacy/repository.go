package legacy

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/halcyon-edu/campus/internal/shared"
)

// MirrorRole is the flat legacy role record: name plus a comma-joined
// permission list, no many-to-many.
type MirrorRole struct {
	RoleID      string
	Name        string
	BranchID    *string
	Permissions string
}

// Repository persists mirror rows in the legacy_roles table.
type Repository interface {
	UpsertMirror(ctx context.Context, row MirrorRole) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) UpsertMirror(ctx context.Context, row MirrorRole) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO legacy_roles (role_id, name, branch_id, permissions, mirrored_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (role_id) DO UPDATE
		 SET name = EXCLUDED.name, permissions = EXCLUDED.permissions, mirrored_at = NOW()`,
		row.RoleID, row.Name, row.BranchID, row.Permissions)
	if err != nil {
		return shared.PersistenceError("legacy: upsert mirror", err)
	}
	return nil
}
