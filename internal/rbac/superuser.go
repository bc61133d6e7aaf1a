package rbac

import "github.com/halcyon-edu/campus/internal/shared"

// isSuperuser short-circuits every check to granted when the principal's
// legacy single-role name matches the configured sentinel. The bypass
// bridges the legacy role field during the RBAC migration and is kept in
// this one method so its removal does not touch evaluation.
func (e *Engine) isSuperuser(p shared.Principal) bool {
	return e.cfg.SuperuserRole != "" && p.LegacyRole == e.cfg.SuperuserRole
}
