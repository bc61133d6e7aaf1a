package roles

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/halcyon-edu/campus/internal/permissions"
	"github.com/halcyon-edu/campus/internal/platform/db"
	"github.com/halcyon-edu/campus/internal/shared"
)

// Repository provides PostgreSQL backed role persistence.
type Repository interface {
	Create(ctx context.Context, role Role, permissionIDs []string) (Role, error)
	ReplacePermissions(ctx context.Context, roleID string, permissionIDs []string) error
	Delete(ctx context.Context, roleID string) error
	Get(ctx context.Context, roleID string) (Role, error)
	ListForBranch(ctx context.Context, branchID *string, limit, offset int) ([]Role, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const uniqueViolation = "23505"

// Create inserts the role and its permission links in one transaction.
// The roles unique constraint treats NULL branch ids as equal, so two
// global roles with the same name collide too.
func (r *repository) Create(ctx context.Context, role Role, permissionIDs []string) (Role, error) {
	var created Role
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`INSERT INTO roles (id, name, branch_id, description, is_system)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, name, branch_id, description, is_system, created_at, updated_at`,
			role.ID, role.Name, role.BranchID, role.Description, role.IsSystem)
		if err := row.Scan(&created.ID, &created.Name, &created.BranchID, &created.Description,
			&created.IsSystem, &created.CreatedAt, &created.UpdatedAt); err != nil {
			return err
		}
		for _, permID := range permissionIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
				 ON CONFLICT DO NOTHING`, created.ID, permID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Role{}, fmt.Errorf("%w: role %s", shared.ErrDuplicate, role.Name)
		}
		return Role{}, shared.PersistenceError("roles: create", err)
	}
	return created, nil
}

// ReplacePermissions swaps the role's permission set for exactly the given
// ids. The delete-then-insert runs in one transaction so concurrent checks
// observe either the old or the new set, never a partial one.
func (r *repository) ReplacePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM roles WHERE id = $1)`, roleID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return shared.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return err
		}
		for _, permID := range permissionIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
				 ON CONFLICT DO NOTHING`, roleID, permID); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, `UPDATE roles SET updated_at = NOW() WHERE id = $1`, roleID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: role %s", shared.ErrNotFound, roleID)
		}
		return shared.PersistenceError("roles: replace permissions", err)
	}
	return nil
}

// Delete hard-deletes the role and its permission links. Assignments are
// deliberately left alone; evaluation treats dangling role references as
// granting nothing.
func (r *repository) Delete(ctx context.Context, roleID string) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, roleID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: role %s", shared.ErrNotFound, roleID)
		}
		return shared.PersistenceError("roles: delete", err)
	}
	return nil
}

// Get fetches a role with its permissions.
func (r *repository) Get(ctx context.Context, roleID string) (Role, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, branch_id, description, is_system, created_at, updated_at
		 FROM roles WHERE id = $1`, roleID)
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.BranchID, &role.Description,
		&role.IsSystem, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, fmt.Errorf("%w: role %s", shared.ErrNotFound, roleID)
		}
		return Role{}, shared.PersistenceError("roles: get", err)
	}
	perms, err := r.rolePermissions(ctx, role.ID)
	if err != nil {
		return Role{}, err
	}
	role.Permissions = perms
	return role, nil
}

// ListForBranch returns roles visible from the given branch: the branch's
// own roles union globally scoped ones. A nil branchID returns all roles.
func (r *repository) ListForBranch(ctx context.Context, branchID *string, limit, offset int) ([]Role, int, error) {
	query := `SELECT id, name, branch_id, description, is_system, created_at, updated_at FROM roles`
	countQuery := `SELECT COUNT(*) FROM roles`
	args := []any{}
	countArgs := []any{}
	if branchID != nil {
		query += ` WHERE branch_id = $1 OR branch_id IS NULL`
		countQuery += ` WHERE branch_id = $1 OR branch_id IS NULL`
		args = append(args, *branchID)
		countArgs = append(countArgs, *branchID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, shared.PersistenceError("roles: count", err)
	}

	query += ` ORDER BY name LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, shared.PersistenceError("roles: list", err)
	}
	defer rows.Close()

	var result []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.BranchID, &role.Description,
			&role.IsSystem, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, role)
	}
	return result, total, rows.Err()
}

func (r *repository) rolePermissions(ctx context.Context, roleID string) ([]permissions.Permission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, p.resource, p.action, p.description, p.created_at
		 FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = $1
		 ORDER BY p.name`, roleID)
	if err != nil {
		return nil, shared.PersistenceError("roles: role permissions", err)
	}
	defer rows.Close()

	var perms []permissions.Permission
	for rows.Next() {
		var p permissions.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Resource, &p.Action, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
