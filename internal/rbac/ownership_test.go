package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/halcyon-edu/campus/internal/shared"
)

type stubResolver struct {
	owner string
	err   error
}

func (s stubResolver) OwnerID(ctx context.Context, resourceID string) (string, error) {
	return s.owner, s.err
}

func TestOwnerGrantedWithoutPermission(t *testing.T) {
	source := &stubSource{perms: nil}
	engine := newTestEngine(source)
	principal := shared.Principal{UserID: "student-7"}

	decision := CheckOwnerOrPermission(context.Background(), engine, stubResolver{owner: "student-7"},
		principal, "rec-1", "students:read")
	assert.True(t, decision.Granted)
	assert.Zero(t, source.calls, "ownership short-circuits the engine")
}

func TestNonOwnerFallsBackToPermission(t *testing.T) {
	source := &stubSource{perms: []string{"students:read"}}
	engine := newTestEngine(source)
	principal := shared.Principal{UserID: "teacher-1"}

	decision := CheckOwnerOrPermission(context.Background(), engine, stubResolver{owner: "student-7"},
		principal, "rec-1", "students:read")
	assert.True(t, decision.Granted)
	assert.Equal(t, 1, source.calls)
}

func TestResolverErrorFallsBackToPermission(t *testing.T) {
	source := &stubSource{perms: nil}
	engine := newTestEngine(source)
	principal := shared.Principal{UserID: "student-7"}

	decision := CheckOwnerOrPermission(context.Background(), engine, stubResolver{err: errors.New("lookup failed")},
		principal, "rec-1", "students:read")
	assert.False(t, decision.Granted, "resolver failure must not grant by itself")
	assert.Equal(t, 1, source.calls)
}

func TestNilResolverUsesPermissionOnly(t *testing.T) {
	source := &stubSource{perms: []string{"students:read"}}
	engine := newTestEngine(source)

	decision := CheckOwnerOrPermission(context.Background(), engine, nil,
		shared.Principal{UserID: "u1"}, "rec-1", "students:read")
	assert.True(t, decision.Granted)
}
