package students

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/halcyon-edu/campus/internal/shared"
)

// Repository provides PostgreSQL backed student persistence.
type Repository interface {
	Get(ctx context.Context, id string) (Student, error)
	OwnerID(ctx context.Context, id string) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id string) (Student, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, COALESCE(user_id, ''), branch_id, full_name, admission_no, created_at
		 FROM students WHERE id = $1`, id)
	var s Student
	err := row.Scan(&s.ID, &s.UserID, &s.BranchID, &s.FullName, &s.AdmissionNo, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, fmt.Errorf("%w: student %s", shared.ErrNotFound, id)
		}
		return Student{}, shared.PersistenceError("students: get", err)
	}
	return s, nil
}

// OwnerID implements rbac.OwnershipResolver for student records.
func (r *repository) OwnerID(ctx context.Context, id string) (string, error) {
	var owner string
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(user_id, '') FROM students WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: student %s", shared.ErrNotFound, id)
		}
		return "", shared.PersistenceError("students: owner", err)
	}
	return owner, nil
}
