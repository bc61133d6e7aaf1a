package assignments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/halcyon-edu/campus/internal/shared"
)

// Repository provides PostgreSQL backed assignment persistence.
type Repository interface {
	Create(ctx context.Context, a Assignment) (Assignment, error)
	RemoveMatching(ctx context.Context, userID, roleID, branchID string) (int64, error)
	ListForUser(ctx context.Context, userID string) ([]Assignment, error)
	ListActiveForUser(ctx context.Context, userID string) ([]Assignment, error)
	ExpireNow(ctx context.Context, assignmentID string) error
	ActivePermissionNames(ctx context.Context, userID string) ([]string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, a Assignment) (Assignment, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO role_assignments (id, user_id, role_id, branch_id, assigned_by, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, user_id, role_id, branch_id, assigned_by, expires_at, created_at`,
		a.ID, a.UserID, a.RoleID, a.BranchID, a.AssignedBy, a.ExpiresAt)
	var created Assignment
	err := row.Scan(&created.ID, &created.UserID, &created.RoleID, &created.BranchID,
		&created.AssignedBy, &created.ExpiresAt, &created.CreatedAt)
	if err != nil {
		return Assignment{}, shared.PersistenceError("assignments: create", err)
	}
	return created, nil
}

// RemoveMatching deletes every binding with the exact (user, role, branch)
// triple and returns the count. Zero is a valid, non-error outcome.
func (r *repository) RemoveMatching(ctx context.Context, userID, roleID, branchID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM role_assignments WHERE user_id = $1 AND role_id = $2 AND branch_id = $3`,
		userID, roleID, branchID)
	if err != nil {
		return 0, shared.PersistenceError("assignments: remove", err)
	}
	return tag.RowsAffected(), nil
}

func (r *repository) ListForUser(ctx context.Context, userID string) ([]Assignment, error) {
	return r.list(ctx,
		`SELECT id, user_id, role_id, branch_id, assigned_by, expires_at, created_at
		 FROM role_assignments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListActiveForUser filters at query time against the database clock, so
// expired bindings drop out the moment they lapse.
func (r *repository) ListActiveForUser(ctx context.Context, userID string) ([]Assignment, error) {
	return r.list(ctx,
		`SELECT id, user_id, role_id, branch_id, assigned_by, expires_at, created_at
		 FROM role_assignments
		 WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > NOW())
		 ORDER BY created_at DESC`, userID)
}

// ExpireNow stamps expires_at with the current time: immediate revocation
// that preserves the assignment row for history.
func (r *repository) ExpireNow(ctx context.Context, assignmentID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE role_assignments SET expires_at = NOW() WHERE id = $1`, assignmentID)
	if err != nil {
		return shared.PersistenceError("assignments: expire", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: assignment %s", shared.ErrNotFound, assignmentID)
	}
	return nil
}

// ActivePermissionNames resolves the deduplicated union of permission
// names across the user's active assignments in a single query. Dangling
// role references contribute nothing because of the inner joins.
func (r *repository) ActivePermissionNames(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT p.name
		 FROM role_assignments ra
		 JOIN role_permissions rp ON rp.role_id = ra.role_id
		 JOIN permissions p ON p.id = rp.permission_id
		 WHERE ra.user_id = $1 AND (ra.expires_at IS NULL OR ra.expires_at > NOW())
		 ORDER BY p.name`, userID)
	if err != nil {
		return nil, shared.PersistenceError("assignments: active permissions", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, shared.PersistenceError("assignments: list", err)
	}
	defer rows.Close()

	var result []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.RoleID, &a.BranchID,
			&a.AssignedBy, &a.ExpiresAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
