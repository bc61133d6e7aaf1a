package permissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/halcyon-edu/campus/internal/shared"
)

// Repository provides PostgreSQL backed catalog persistence.
type Repository interface {
	Create(ctx context.Context, p Permission) (Permission, error)
	List(ctx context.Context, limit, offset int) ([]Permission, int, error)
	GroupByResource(ctx context.Context) (map[string][]ModuleAction, error)
	GetByNames(ctx context.Context, names []string) ([]Permission, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const uniqueViolation = "23505"

func (r *repository) Create(ctx context.Context, p Permission) (Permission, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO permissions (id, name, resource, action, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, resource, action, description, created_at`,
		p.ID, p.Name, p.Resource, p.Action, p.Description)
	var created Permission
	err := row.Scan(&created.ID, &created.Name, &created.Resource, &created.Action, &created.Description, &created.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Permission{}, fmt.Errorf("%w: permission %s", shared.ErrDuplicate, p.Name)
		}
		return Permission{}, shared.PersistenceError("permissions: create", err)
	}
	return created, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Permission, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM permissions`).Scan(&total); err != nil {
		return nil, 0, shared.PersistenceError("permissions: count", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, resource, action, description, created_at
		 FROM permissions ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, shared.PersistenceError("permissions: list", err)
	}
	defer rows.Close()

	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Resource, &p.Action, &p.Description, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		perms = append(perms, p)
	}
	return perms, total, rows.Err()
}

func (r *repository) GroupByResource(ctx context.Context) (map[string][]ModuleAction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT resource, action, name FROM permissions ORDER BY resource, action`)
	if err != nil {
		return nil, shared.PersistenceError("permissions: group by resource", err)
	}
	defer rows.Close()

	grouped := make(map[string][]ModuleAction)
	for rows.Next() {
		var resource, action, name string
		if err := rows.Scan(&resource, &action, &name); err != nil {
			return nil, err
		}
		grouped[resource] = append(grouped[resource], ModuleAction{Action: action, Permission: name})
	}
	return grouped, rows.Err()
}

func (r *repository) GetByNames(ctx context.Context, names []string) ([]Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, resource, action, description, created_at
		 FROM permissions WHERE name = ANY($1) ORDER BY name`, names)
	if err != nil {
		return nil, shared.PersistenceError("permissions: get by names", err)
	}
	defer rows.Close()

	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Resource, &p.Action, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
