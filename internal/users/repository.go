package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/halcyon-edu/campus/internal/shared"
)

// Repository provides PostgreSQL backed user persistence.
type Repository interface {
	Create(ctx context.Context, u User, passwordHash string) (User, error)
	Get(ctx context.Context, id string) (User, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const uniqueViolation = "23505"

func (r *repository) Create(ctx context.Context, u User, passwordHash string) (User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, name, password_hash, legacy_role, branch_id, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		 RETURNING id, email, name, legacy_role, branch_id, is_active, created_at, updated_at`,
		u.ID, u.Email, u.Name, passwordHash, u.LegacyRole, u.BranchID)
	var created User
	err := row.Scan(&created.ID, &created.Email, &created.Name, &created.LegacyRole,
		&created.BranchID, &created.IsActive, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, fmt.Errorf("%w: email %s", shared.ErrDuplicate, u.Email)
		}
		return User{}, shared.PersistenceError("users: create", err)
	}
	return created, nil
}

func (r *repository) Get(ctx context.Context, id string) (User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email, name, legacy_role, branch_id, is_active, created_at, updated_at
		 FROM users WHERE id = $1`, id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.LegacyRole, &u.BranchID,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
		}
		return User{}, shared.PersistenceError("users: get", err)
	}
	return u, nil
}
