package service

import (
	"context"
	"testing"

	"stationops/internal/model"
	"stationops/internal/permission"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPermissionFixture(t *testing.T, user *model.User) (PermissionService, *fakeUserRepo, *fakeAuditRepo) {
	t.Helper()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	repo := newFakeUserRepo(user)
	audit := &fakeAuditRepo{}
	return NewPermissionService(repo, audit, fakeTxManager{}), repo, audit
}

func TestLoadFallsBackToRoleTemplate(t *testing.T) {
	user := activeUser("cash@stationops.local", permission.RoleCashier, "MOBIL")
	svc, _, _ := newPermissionFixture(t, user)

	load, err := svc.Load(context.Background(), user.ID.String())
	require.NoError(t, err)

	assert.Equal(t, PermissionSourceRoleDefault, load.Source)
	assert.Equal(t, permission.RoleCashier, load.Template)
	assert.Equal(t, 0, load.Version)
	assert.True(t, load.Record.Allows(permission.PageDashboard, permission.CapView))
	assert.False(t, load.Record.Allows(permission.PageEmployees, permission.CapView))
}

func TestLoadSurvivesMalformedStoredBlob(t *testing.T) {
	user := activeUser("emp@stationops.local", permission.RoleEmployee, "MOBIL")
	user.DetailedPermissions = "{not json"
	svc, _, _ := newPermissionFixture(t, user)

	load, err := svc.Load(context.Background(), user.ID.String())
	require.NoError(t, err)

	assert.Equal(t, PermissionSourceRoleDefault, load.Source)
	assert.Equal(t, permission.ResolveTemplate(permission.RoleEmployee), load.Record)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	user := activeUser("emp@stationops.local", permission.RoleEmployee, "MOBIL")
	svc, repo, audit := newPermissionFixture(t, user)

	rec := permission.ResolveTemplate(permission.RoleEmployee)
	rec, err := permission.SetCapability(rec, permission.PageExpenses, permission.CapView, true)
	require.NoError(t, err)

	saved, err := svc.Save(context.Background(), uuid.New().String(), user.ID.String(), rec, 0)
	require.NoError(t, err)

	assert.Equal(t, PermissionSourceStored, saved.Source)
	assert.Equal(t, permission.RoleCustom, saved.Template)
	assert.Equal(t, 1, saved.Version)
	assert.True(t, saved.Record.Allows(permission.PageExpenses, permission.CapView))

	stored, _ := repo.GetByID(context.Background(), user.ID.String())
	assert.Equal(t, 1, stored.PermissionsVersion)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, model.ActionSavePermissions, audit.entries[0].Action)
}

func TestSaveRejectsStaleVersion(t *testing.T) {
	user := activeUser("emp@stationops.local", permission.RoleEmployee, "MOBIL")
	user.PermissionsVersion = 3
	svc, _, _ := newPermissionFixture(t, user)

	rec := permission.ResolveTemplate(permission.RoleEmployee)
	_, err := svc.Save(context.Background(), uuid.New().String(), user.ID.String(), rec, 2)
	assert.ErrorIs(t, err, ErrPermissionVersionConflict)
}

func TestApplyEditMarksCustom(t *testing.T) {
	user := activeUser("mgr@stationops.local", permission.RoleStationManager, "MOBIL")
	svc, _, _ := newPermissionFixture(t, user)

	load, err := svc.ApplyEdit(context.Background(), uuid.New().String(), user.ID.String(), PermissionEditRequest{
		Op:         "set",
		Page:       permission.PageLicenses,
		Capability: string(permission.CapEdit),
		Value:      true,
		Version:    0,
	})
	require.NoError(t, err)

	assert.Equal(t, permission.RoleCustom, load.Template)
	assert.True(t, load.Record.Allows(permission.PageLicenses, permission.CapEdit))
	assert.Equal(t, 1, load.Version)
}

func TestApplyEditRejectsUnknownOp(t *testing.T) {
	user := activeUser("mgr@stationops.local", permission.RoleStationManager, "MOBIL")
	svc, _, _ := newPermissionFixture(t, user)

	_, err := svc.ApplyEdit(context.Background(), uuid.New().String(), user.ID.String(), PermissionEditRequest{
		Op: "toggle_everything",
	})
	assert.Error(t, err)
}

func TestApplyBulkGroupEdit(t *testing.T) {
	user := activeUser("mgr@stationops.local", permission.RoleCashier, "MOBIL")
	svc, _, _ := newPermissionFixture(t, user)

	load, err := svc.ApplyEdit(context.Background(), uuid.New().String(), user.ID.String(), PermissionEditRequest{
		Op:      "bulk_group",
		Group:   "operations",
		Action:  string(permission.BulkViewOnly),
		Version: 0,
	})
	require.NoError(t, err)

	for _, page := range permission.PageGroups["operations"] {
		assert.True(t, load.Record.Allows(page, permission.CapView), "page %s", page)
		assert.True(t, load.Record.Allows(page, permission.CapExport), "page %s", page)
		assert.False(t, load.Record.Allows(page, permission.CapEdit), "page %s", page)
	}
	// Pages outside the group keep their template values.
	assert.True(t, load.Record.Allows(permission.PageDashboard, permission.CapView))
}

func TestResetToTemplate(t *testing.T) {
	user := activeUser("emp@stationops.local", permission.RoleEmployee, "MOBIL")
	svc, _, audit := newPermissionFixture(t, user)

	// Customize first.
	custom, err := svc.ApplyEdit(context.Background(), uuid.New().String(), user.ID.String(), PermissionEditRequest{
		Op:         "set",
		Page:       permission.PageSettings,
		Capability: string(permission.CapView),
		Value:      true,
		Version:    0,
	})
	require.NoError(t, err)
	require.Equal(t, permission.RoleCustom, custom.Template)

	reset, err := svc.ResetToTemplate(context.Background(), uuid.New().String(), user.ID.String())
	require.NoError(t, err)

	assert.Equal(t, permission.RoleEmployee, reset.Template)
	assert.Equal(t, permission.ResolveTemplate(permission.RoleEmployee), reset.Record)
	assert.Equal(t, 2, reset.Version)

	var actions []string
	for _, e := range audit.entries {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, model.ActionResetPermissions)
}
