// Command seed creates the authorization schema, populates the permission
// catalog with the platform's modules, and optionally provisions the
// bootstrap admin account from SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/halcyon-edu/campus/internal/app"
	"github.com/halcyon-edu/campus/internal/platform/db"
	"github.com/halcyon-edu/campus/internal/shared"
	"github.com/halcyon-edu/campus/internal/users"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		legacy_role TEXT NOT NULL DEFAULT '',
		branch_id TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS permissions (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		resource TEXT NOT NULL,
		action TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS roles (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		branch_id TEXT,
		description TEXT NOT NULL DEFAULT '',
		is_system BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE NULLS NOT DISTINCT (name, branch_id)
	)`,
	`CREATE TABLE IF NOT EXISTS role_permissions (
		role_id UUID NOT NULL,
		permission_id UUID NOT NULL REFERENCES permissions(id),
		PRIMARY KEY (role_id, permission_id)
	)`,
	`CREATE TABLE IF NOT EXISTS role_assignments (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		role_id UUID NOT NULL,
		branch_id TEXT NOT NULL,
		assigned_by TEXT NOT NULL DEFAULT '',
		expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_role_assignments_user ON role_assignments (user_id)`,
	`CREATE TABLE IF NOT EXISTS legacy_roles (
		role_id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		branch_id TEXT,
		permissions TEXT NOT NULL DEFAULT '',
		mirrored_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY,
		actor TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		entity TEXT NOT NULL,
		entity_id TEXT NOT NULL DEFAULT '',
		branch_id TEXT NOT NULL DEFAULT '',
		meta JSONB NOT NULL DEFAULT '{}',
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_occurred ON audit_logs (occurred_at DESC)`,
	`CREATE TABLE IF NOT EXISTS students (
		id UUID PRIMARY KEY,
		user_id TEXT,
		branch_id TEXT NOT NULL,
		full_name TEXT NOT NULL,
		admission_no TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// catalogModules lists each resource with its actions. The resulting
// resource:action names are the wire contract consumed by check sites.
var catalogModules = map[string][]string{
	"branches":    {"read", "create", "update", "delete"},
	"students":    {"read", "create", "update", "delete"},
	"teachers":    {"read", "create", "update", "delete"},
	"courses":     {"read", "create", "update", "delete"},
	"attendance":  {"read", "create", "update", "delete"},
	"grades":      {"read", "create", "update", "delete"},
	"fees":        {"read", "create", "update", "delete"},
	"finance":     {"read", "create", "update", "delete"},
	"messaging":   {"read", "create", "delete"},
	"roles":       {"read", "create", "update", "delete", "assign"},
	"permissions": {"read", "create"},
	"audit":       {"read"},
	"users":       {"read", "create", "update"},
}

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := app.LoadConfig()
	if err != nil {
		logger.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			logger.Error("apply schema", slog.Any("error", err))
			os.Exit(1)
		}
	}

	seeded := 0
	for resource, actions := range catalogModules {
		for _, action := range actions {
			name := fmt.Sprintf("%s:%s", resource, action)
			tag, err := pool.Exec(ctx,
				`INSERT INTO permissions (id, name, resource, action, description)
				 VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (name) DO NOTHING`,
				uuid.NewString(), name, resource, action, fmt.Sprintf("%s %s", action, resource))
			if err != nil {
				logger.Error("seed permission", slog.String("name", name), slog.Any("error", err))
				os.Exit(1)
			}
			seeded += int(tag.RowsAffected())
		}
	}
	logger.Info("catalog seeded", slog.Int("new_permissions", seeded))

	seedAdmin(ctx, logger, cfg, pool)
}

// seedAdmin provisions the bootstrap superuser account when the seed
// credentials are present in the environment. The account carries the
// configured superuser legacy role so the first operator can define roles
// before any assignment exists.
func seedAdmin(ctx context.Context, logger *slog.Logger, cfg *app.Config, pool *pgxpool.Pool) {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	svc := users.NewService(users.NewRepository(pool))
	admin, err := svc.Create(ctx, email, "Platform Admin", password, cfg.SuperuserRole, "")
	if errors.Is(err, shared.ErrDuplicate) {
		logger.Info("admin account already present", slog.String("email", email))
		return
	}
	if err != nil {
		logger.Error("seed admin account", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("admin account created", slog.String("id", admin.ID))
}
