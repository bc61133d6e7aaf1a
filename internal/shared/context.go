package shared

import "context"

// Principal describes the authenticated actor as resolved by the route
// layer. BranchID is the actor's home branch; LegacyRole is the single
// role name from the legacy user record.
type Principal struct {
	UserID     string
	LegacyRole string
	BranchID   string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context. The second
// return is false when no authenticated principal is present.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
