// Package rbac implements the authorization engine: fail-closed permission
// checks over active role assignments.
package rbac

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/halcyon-edu/campus/internal/shared"
)

// Decision is the outcome of a permission check. Missing names the
// permissions the principal lacked, which is all a 403 needs to carry.
type Decision struct {
	Granted bool
	Missing []string
}

// Authorizer is the abstraction every call site depends on. Handlers take
// an Authorizer through their constructor rather than reaching for a
// concrete engine.
type Authorizer interface {
	Check(ctx context.Context, p shared.Principal, permission string) Decision
	CheckAny(ctx context.Context, p shared.Principal, permissions []string) Decision
	CheckAll(ctx context.Context, p shared.Principal, permissions []string) Decision
	UserPermissions(ctx context.Context, userID string) ([]string, error)
}

// PermissionSource resolves the deduplicated permission names granted by a
// user's active role assignments.
type PermissionSource interface {
	ActivePermissionNames(ctx context.Context, userID string) ([]string, error)
}

// Config tunes the engine.
type Config struct {
	// SuperuserRole is the legacy role name that bypasses every check.
	SuperuserRole string
	// CheckTimeout bounds the store lookup; a check that cannot complete
	// in time is a denial, never a hang.
	CheckTimeout time.Duration
}

// Engine evaluates permission checks against the assignment store.
// Evaluation is point-in-time: nothing is cached between requests, so a
// check during a concurrent assignment change sees either the old or the
// new set.
type Engine struct {
	source PermissionSource
	cfg    Config
	logger *slog.Logger
	group  singleflight.Group
}

// NewEngine constructs the engine.
func NewEngine(source PermissionSource, cfg Config, logger *slog.Logger) *Engine {
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 3 * time.Second
	}
	return &Engine{source: source, cfg: cfg, logger: logger}
}

// Check reports whether the principal holds the permission. Fails closed:
// any lookup error or timeout denies, never grants and never propagates.
// A blank permission name denies, since no role can carry it.
func (e *Engine) Check(ctx context.Context, p shared.Principal, permission string) Decision {
	return e.CheckAll(ctx, p, []string{permission})
}

// CheckAny grants when the principal holds at least one of the permissions.
func (e *Engine) CheckAny(ctx context.Context, p shared.Principal, perms []string) Decision {
	if len(perms) == 0 {
		return Decision{Granted: true}
	}
	required := normalize(perms)
	// Blank-only input is a call-site bug, not a vacuous requirement. No
	// role carries the empty name, so it denies.
	if len(required) == 0 {
		return Decision{Granted: false}
	}
	if e.isSuperuser(p) {
		return Decision{Granted: true}
	}
	granted, err := e.lookup(ctx, p.UserID)
	if err != nil {
		e.denyLog(p.UserID, err)
		return Decision{Granted: false, Missing: required}
	}
	for _, name := range required {
		if _, ok := granted[name]; ok {
			return Decision{Granted: true}
		}
	}
	return Decision{Granted: false, Missing: required}
}

// CheckAll grants only when the principal holds every permission. It is
// computed from one resolved permission set, not repeated single checks.
func (e *Engine) CheckAll(ctx context.Context, p shared.Principal, perms []string) Decision {
	if len(perms) == 0 {
		return Decision{Granted: true}
	}
	required := normalize(perms)
	if len(required) == 0 {
		return Decision{Granted: false}
	}
	if e.isSuperuser(p) {
		return Decision{Granted: true}
	}
	granted, err := e.lookup(ctx, p.UserID)
	if err != nil {
		e.denyLog(p.UserID, err)
		return Decision{Granted: false, Missing: required}
	}
	var missing []string
	for _, name := range required {
		if _, ok := granted[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Decision{Granted: false, Missing: missing}
	}
	return Decision{Granted: true}
}

// UserPermissions returns the deduplicated union of permission names across
// the user's active role assignments. Unlike Check* it surfaces errors, for
// clients rendering available actions.
func (e *Engine) UserPermissions(ctx context.Context, userID string) ([]string, error) {
	granted, err := e.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(granted))
	for name := range granted {
		names = append(names, name)
	}
	return names, nil
}

// lookup resolves the user's permission set within the configured timeout.
// Concurrent lookups for the same user collapse into one store round trip.
// The flight runs detached from the initiating caller's cancellation so a
// client disconnect cannot fail the checks that joined it; the timeout
// alone bounds the store call.
func (e *Engine) lookup(ctx context.Context, userID string) (map[string]struct{}, error) {
	v, err, _ := e.group.Do(userID, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.CheckTimeout)
		defer cancel()

		names, err := e.source.ActivePermissionNames(ctx, userID)
		if err != nil {
			return nil, err
		}
		set := make(map[string]struct{}, len(names))
		for _, name := range names {
			set[strings.ToLower(name)] = struct{}{}
		}
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]struct{}), nil
}

func (e *Engine) denyLog(userID string, err error) {
	if e.logger != nil {
		e.logger.Warn("authorization check failed closed",
			slog.String("user_id", userID), slog.Any("error", err))
	}
}

func normalize(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}
