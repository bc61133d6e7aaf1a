package permissions

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-edu/campus/internal/shared"
)

type fakeRepo struct {
	byName map[string]Permission
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byName: make(map[string]Permission)}
}

func (f *fakeRepo) Create(ctx context.Context, p Permission) (Permission, error) {
	if _, ok := f.byName[p.Name]; ok {
		return Permission{}, fmt.Errorf("%w: permission %s", shared.ErrDuplicate, p.Name)
	}
	f.byName[p.Name] = p
	return p, nil
}

func (f *fakeRepo) List(ctx context.Context, limit, offset int) ([]Permission, int, error) {
	var out []Permission
	for _, p := range f.byName {
		out = append(out, p)
	}
	return out, len(f.byName), nil
}

func (f *fakeRepo) GroupByResource(ctx context.Context) (map[string][]ModuleAction, error) {
	grouped := make(map[string][]ModuleAction)
	for _, p := range f.byName {
		grouped[p.Resource] = append(grouped[p.Resource], ModuleAction{
			Action:     p.Action,
			Permission: p.Name,
		})
	}
	return grouped, nil
}

func (f *fakeRepo) GetByNames(ctx context.Context, names []string) ([]Permission, error) {
	var out []Permission
	for _, name := range names {
		if p, ok := f.byName[name]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func seedCatalog(t *testing.T, svc *Service, pairs ...[2]string) {
	t.Helper()
	for _, pair := range pairs {
		_, err := svc.Create(context.Background(), pair[0], pair[1], "")
		require.NoError(t, err)
	}
}

func TestBuildName(t *testing.T) {
	name, err := BuildName(" Students ", "READ")
	require.NoError(t, err)
	assert.Equal(t, "students:read", name)

	_, err = BuildName("", "read")
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = BuildName("students", "re ad")
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = BuildName("9students", "read")
	require.ErrorIs(t, err, shared.ErrValidation)

	name, err = BuildName("fee_structures", "update")
	require.NoError(t, err)
	assert.Equal(t, "fee_structures:update", name)
}

func TestCreateCanonicalizesName(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	created, err := svc.Create(context.Background(), "Attendance", "Read", "view attendance")
	require.NoError(t, err)
	assert.Equal(t, "attendance:read", created.Name)
	assert.Equal(t, "attendance", created.Resource)
	assert.Equal(t, "read", created.Action)
	assert.NotEmpty(t, created.ID)
}

func TestCreateDuplicateName(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	_, err := svc.Create(context.Background(), "attendance", "read", "")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "Attendance", "READ", "same after canonicalization")
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestResolveModulesExpandsToCatalogEntries(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)
	seedCatalog(t, svc,
		[2]string{"attendance", "read"},
		[2]string{"attendance", "create"},
		[2]string{"grades", "read"},
	)

	resolved, err := svc.ResolveModules(context.Background(), []string{"Attendance"})
	require.NoError(t, err)

	var names []string
	for _, p := range resolved {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"attendance:read", "attendance:create"}, names)
}

func TestResolveModulesDeduplicatesAcrossModules(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)
	seedCatalog(t, svc, [2]string{"attendance", "read"})

	resolved, err := svc.ResolveModules(context.Background(), []string{"attendance", "attendance"})
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
}

func TestResolveModulesUnknownModule(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)
	seedCatalog(t, svc, [2]string{"attendance", "read"})

	resolved, err := svc.ResolveModules(context.Background(), []string{"phantom"})
	require.NoError(t, err, "unknown modules resolve to nothing, not an error")
	assert.Empty(t, resolved)
}

func TestResolveNamesDropsUnknown(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)
	seedCatalog(t, svc, [2]string{"branches", "read"})

	resolved, err := svc.ResolveNames(context.Background(), []string{"branches:read", "branches:delete"})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "branches:read", resolved[0].Name)
}

func TestGroupByResource(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)
	seedCatalog(t, svc,
		[2]string{"attendance", "read"},
		[2]string{"attendance", "update"},
		[2]string{"grades", "read"},
	)

	grouped, err := svc.GroupByResource(context.Background())
	require.NoError(t, err)
	require.Len(t, grouped, 2)
	assert.Len(t, grouped["attendance"], 2)
	assert.Len(t, grouped["grades"], 1)
}
