package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides read access to stored audit entries.
type Repository interface {
	Window(ctx context.Context, f Filters, limit, offset int) ([]Entry, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Window(ctx context.Context, f Filters, limit, offset int) ([]Entry, error) {
	query := `SELECT id, actor, action, entity, entity_id, branch_id, meta, occurred_at FROM audit_logs WHERE 1=1`
	args := []any{}
	argCount := 0

	if f.Actor != "" {
		argCount++
		query += ` AND actor = $` + strconv.Itoa(argCount)
		args = append(args, f.Actor)
	}
	if f.Entity != "" {
		argCount++
		query += ` AND entity = $` + strconv.Itoa(argCount)
		args = append(args, f.Entity)
	}
	if !f.From.IsZero() {
		argCount++
		query += ` AND occurred_at >= $` + strconv.Itoa(argCount)
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		argCount++
		query += ` AND occurred_at <= $` + strconv.Itoa(argCount)
		args = append(args, f.To)
	}

	query += ` ORDER BY occurred_at DESC`
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var metaJSON []byte
		var at time.Time
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Entity, &e.EntityID, &e.BranchID, &metaJSON, &at); err != nil {
			return nil, err
		}
		e.At = at
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &e.Meta)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
