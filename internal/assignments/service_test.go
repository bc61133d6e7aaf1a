package assignments

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-edu/campus/internal/audit"
	"github.com/halcyon-edu/campus/internal/shared"
)

type memRepo struct {
	assignments []Assignment
	createErr   error
}

func (m *memRepo) Create(ctx context.Context, a Assignment) (Assignment, error) {
	if m.createErr != nil {
		return Assignment{}, m.createErr
	}
	a.CreatedAt = time.Now().UTC()
	m.assignments = append(m.assignments, a)
	return a, nil
}

func (m *memRepo) RemoveMatching(ctx context.Context, userID, roleID, branchID string) (int64, error) {
	var kept []Assignment
	var removed int64
	for _, a := range m.assignments {
		if a.UserID == userID && a.RoleID == roleID && a.BranchID == branchID {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	m.assignments = kept
	return removed, nil
}

func (m *memRepo) ListForUser(ctx context.Context, userID string) ([]Assignment, error) {
	var out []Assignment
	for _, a := range m.assignments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memRepo) ListActiveForUser(ctx context.Context, userID string) ([]Assignment, error) {
	var out []Assignment
	now := time.Now()
	for _, a := range m.assignments {
		if a.UserID == userID && a.ActiveAt(now) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memRepo) ExpireNow(ctx context.Context, assignmentID string) error {
	for i, a := range m.assignments {
		if a.ID == assignmentID {
			now := time.Now()
			m.assignments[i].ExpiresAt = &now
			return nil
		}
	}
	return fmt.Errorf("%w: assignment %s", shared.ErrNotFound, assignmentID)
}

func (m *memRepo) ActivePermissionNames(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

type captureAuditor struct {
	entries []audit.Entry
}

func (c *captureAuditor) Record(ctx context.Context, e audit.Entry) {
	c.entries = append(c.entries, e)
}

func TestAssignRequiresUserAndRole(t *testing.T) {
	svc := NewService(&memRepo{}, nil)

	_, err := svc.Assign(context.Background(), "", "role-1", "T1", "admin", nil)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Assign(context.Background(), "user-1", "  ", "T1", "admin", nil)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Assign(context.Background(), "user-1", "role-1", "", "admin", nil)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAssignRejectsPastExpiry(t *testing.T) {
	svc := NewService(&memRepo{}, nil)
	past := time.Now().Add(-time.Hour)

	_, err := svc.Assign(context.Background(), "user-1", "role-1", "T1", "admin", &past)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAssignCreatesActiveBinding(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, nil)
	future := time.Now().Add(24 * time.Hour)

	created, err := svc.Assign(context.Background(), "user-1", "role-1", "T1", "admin", &future)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	active, err := svc.ActiveForUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "role-1", active[0].RoleID)
}

func TestAssignPermitsStackedDuplicates(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, nil)

	// Two live bindings of the same user/role/branch triple are legal;
	// stacked time-bounded grants rely on it.
	_, err := svc.Assign(context.Background(), "user-1", "role-1", "T1", "admin", nil)
	require.NoError(t, err)
	short := time.Now().Add(time.Hour)
	_, err = svc.Assign(context.Background(), "user-1", "role-1", "T1", "admin", &short)
	require.NoError(t, err)

	all, err := svc.ListForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRemoveDeletesEveryMatch(t *testing.T) {
	repo := &memRepo{}
	auditor := &captureAuditor{}
	svc := NewService(repo, auditor)

	_, err := svc.Assign(context.Background(), "user-1", "role-1", "T1", "admin", nil)
	require.NoError(t, err)
	_, err = svc.Assign(context.Background(), "user-1", "role-1", "T1", "admin", nil)
	require.NoError(t, err)
	_, err = svc.Assign(context.Background(), "user-1", "role-2", "T1", "admin", nil)
	require.NoError(t, err)

	removed, err := svc.Remove(context.Background(), "user-1", "role-1", "T1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	all, err := svc.ListForUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "role-2", all[0].RoleID)
}

func TestRemoveZeroMatchesIsNotAnError(t *testing.T) {
	auditor := &captureAuditor{}
	svc := NewService(&memRepo{}, auditor)

	removed, err := svc.Remove(context.Background(), "user-1", "role-1", "T1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, removed)
	assert.Empty(t, auditor.entries, "no-op removal must not be audited")
}

func TestExpireNowKeepsRowButDeactivates(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, nil)

	created, err := svc.Assign(context.Background(), "user-1", "role-1", "T1", "admin", nil)
	require.NoError(t, err)
	require.NoError(t, svc.ExpireNow(context.Background(), created.ID))

	all, err := svc.ListForUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, all, 1, "history row survives revocation")

	active, err := svc.ActiveForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestExpireNowUnknownAssignment(t *testing.T) {
	svc := NewService(&memRepo{}, nil)
	err := svc.ExpireNow(context.Background(), "missing")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAssignAuditsActor(t *testing.T) {
	auditor := &captureAuditor{}
	svc := NewService(&memRepo{}, auditor)
	ctx := shared.ContextWithPrincipal(context.Background(), shared.Principal{UserID: "admin-1", BranchID: "T1"})

	_, err := svc.Assign(ctx, "user-1", "role-1", "T1", "admin-1", nil)
	require.NoError(t, err)

	require.Len(t, auditor.entries, 1)
	entry := auditor.entries[0]
	assert.Equal(t, audit.ActionAssign, entry.Action)
	assert.Equal(t, "admin-1", entry.Actor)
	assert.Equal(t, "role_assignment", entry.Entity)
}

func TestActiveAtWindow(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	assert.True(t, Assignment{}.ActiveAt(now), "nil expiry never expires")
	assert.True(t, Assignment{ExpiresAt: &later}.ActiveAt(now))
	assert.False(t, Assignment{ExpiresAt: &earlier}.ActiveAt(now))
}
