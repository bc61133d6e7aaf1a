package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Recorder appends audit entries. Implementations must never surface a
// write failure to the caller: audit is a best-effort side channel, not a
// transactional guard, and a failed insert must not abort the operation
// being audited.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// PGRecorder writes entries into the audit_logs table.
type PGRecorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPGRecorder returns a Recorder backed by PostgreSQL.
func NewPGRecorder(pool *pgxpool.Pool, logger *slog.Logger) *PGRecorder {
	return &PGRecorder{pool: pool, logger: logger}
}

// Record persists the entry, swallowing and logging any failure.
func (r *PGRecorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.pool == nil {
		return
	}
	if strings.TrimSpace(e.Action) == "" || strings.TrimSpace(e.Entity) == "" {
		r.warn("audit entry missing action/entity", nil)
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	metaJSON, err := json.Marshal(e.Meta)
	if err != nil {
		r.warn("audit marshal meta", err)
		metaJSON = []byte("{}")
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_logs (id, actor, action, entity, entity_id, branch_id, meta, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Actor, e.Action, e.Entity, e.EntityID, e.BranchID, metaJSON, e.At)
	if err != nil {
		r.warn("audit insert", err)
	}
}

func (r *PGRecorder) warn(msg string, err error) {
	if r.logger == nil {
		return
	}
	if err != nil {
		r.logger.Warn(msg, slog.Any("error", err))
		return
	}
	r.logger.Warn(msg)
}
