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

func testConfig() ValidationConfig {
	return DefaultValidationConfig()
}

func activeUser(email, role, station string) *model.User {
	return &model.User{
		ID:       uuid.New(),
		Username: email,
		Email:    email,
		Role:     role,
		Station:  station,
		IsActive: true,
	}
}

func codes(violations []ValidationError) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Code)
	}
	return out
}

func TestValidateEmailConflict(t *testing.T) {
	existing := activeUser("jane@stationops.local", permission.RoleManagement, model.StationAll)
	repo := newFakeUserRepo(existing)
	v := NewUserValidator(repo, testConfig())

	violations, err := v.Validate(context.Background(), ValidateUserInput{
		Email:    "JANE@stationops.local",
		Role:     permission.RoleCashier,
		Station:  "MOBIL",
		IsActive: true,
	}, false)
	require.NoError(t, err)
	assert.Contains(t, codes(violations), CodeEmailConflict)
}

func TestValidateEmailUnchangedOnSelfUpdate(t *testing.T) {
	existing := activeUser("jane@stationops.local", permission.RoleManagement, model.StationAll)
	repo := newFakeUserRepo(existing)
	v := NewUserValidator(repo, testConfig())

	violations, err := v.Validate(context.Background(), ValidateUserInput{
		ID:       existing.ID.String(),
		Email:    existing.Email,
		Role:     existing.Role,
		Station:  existing.Station,
		IsActive: true,
	}, true)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestProtectedAdminCannotBeDemoted(t *testing.T) {
	admin := activeUser("admin@stationops.local", permission.RoleAdministrator, model.StationAll)
	repo := newFakeUserRepo(admin)
	v := NewUserValidator(repo, testConfig())

	violations, err := v.Validate(context.Background(), ValidateUserInput{
		ID:       admin.ID.String(),
		Email:    admin.Email,
		Role:     permission.RoleEmployee,
		Station:  admin.Station,
		IsActive: true,
	}, true)
	require.NoError(t, err)
	assert.Contains(t, codes(violations), CodeAdminProtection)
}

func TestProtectedAdminCannotChangeEmailOrDeactivate(t *testing.T) {
	admin := activeUser("admin@stationops.local", permission.RoleAdministrator, model.StationAll)
	repo := newFakeUserRepo(admin)
	v := NewUserValidator(repo, testConfig())

	violations, err := v.Validate(context.Background(), ValidateUserInput{
		ID:       admin.ID.String(),
		Email:    "someone-else@stationops.local",
		Role:     permission.RoleAdministrator,
		Station:  admin.Station,
		IsActive: false,
	}, true)
	require.NoError(t, err)

	got := codes(violations)
	count := 0
	for _, c := range got {
		if c == CodeAdminProtection {
			count++
		}
	}
	assert.Equal(t, 2, count, "expected violations for both email change and deactivation, got %v", got)
}

func TestSoleAdminCannotStepDown(t *testing.T) {
	// Not the protected account, so only the sole-admin rule fires.
	admin := activeUser("owner@stationops.local", permission.RoleAdministrator, "MOBIL")
	repo := newFakeUserRepo(admin)
	v := NewUserValidator(repo, testConfig())

	violations, err := v.Validate(context.Background(), ValidateUserInput{
		ID:       admin.ID.String(),
		Email:    admin.Email,
		Role:     permission.RoleManagement,
		Station:  admin.Station,
		IsActive: true,
	}, true)
	require.NoError(t, err)
	assert.Contains(t, codes(violations), CodeSoleAdmin)
}

func TestAdminMayStepDownWhenAnotherRemains(t *testing.T) {
	first := activeUser("owner@stationops.local", permission.RoleAdministrator, "MOBIL")
	second := activeUser("backup@stationops.local", permission.RoleAdministrator, "SHELL")
	repo := newFakeUserRepo(first, second)
	v := NewUserValidator(repo, testConfig())

	violations, err := v.Validate(context.Background(), ValidateUserInput{
		ID:       first.ID.String(),
		Email:    first.Email,
		Role:     permission.RoleManagement,
		Station:  first.Station,
		IsActive: true,
	}, true)
	require.NoError(t, err)
	assert.NotContains(t, codes(violations), CodeSoleAdmin)
}

func TestCheckRoleConflictMaxAdminLimit(t *testing.T) {
	first := activeUser("a1@stationops.local", permission.RoleAdministrator, "MOBIL")
	second := activeUser("a2@stationops.local", permission.RoleAdministrator, "MOBIL")
	repo := newFakeUserRepo(first, second)
	v := NewUserValidator(repo, testConfig())

	conflict, err := v.CheckRoleConflict(context.Background(),
		permission.RoleAdministrator, "MOBIL", "", "a3@stationops.local")
	require.NoError(t, err)
	assert.True(t, conflict.HasConflict)
	assert.Equal(t, ConflictMaxAdminLimit, conflict.ConflictType)
}

func TestCheckRoleConflictGlobalAdminExists(t *testing.T) {
	global := activeUser("hq@stationops.local", permission.RoleAdministrator, model.StationAll)
	repo := newFakeUserRepo(global)
	v := NewUserValidator(repo, testConfig())

	conflict, err := v.CheckRoleConflict(context.Background(),
		permission.RoleAdministrator, model.StationAll, "", "second@stationops.local")
	require.NoError(t, err)
	assert.True(t, conflict.HasConflict)
	assert.Equal(t, ConflictGlobalAdminExists, conflict.ConflictType)
}

func TestCheckRoleConflictPair(t *testing.T) {
	mgr := activeUser("pat@stationops.local", permission.RoleManagement, "MOBIL")
	repo := newFakeUserRepo(mgr)
	v := NewUserValidator(repo, testConfig())

	// Same identity (email), same station, conflicting pair Management+Employee.
	conflict, err := v.CheckRoleConflict(context.Background(),
		permission.RoleEmployee, "MOBIL", "", "pat@stationops.local")
	require.NoError(t, err)
	assert.True(t, conflict.HasConflict)
	assert.Equal(t, ConflictRolePair, conflict.ConflictType)

	// Different station: no conflict.
	conflict, err = v.CheckRoleConflict(context.Background(),
		permission.RoleEmployee, "SHELL", "", "pat@stationops.local")
	require.NoError(t, err)
	assert.False(t, conflict.HasConflict)
}

func TestValidateDeleteGuards(t *testing.T) {
	protected := activeUser("admin@stationops.local", permission.RoleAdministrator, model.StationAll)
	repo := newFakeUserRepo(protected)
	v := NewUserValidator(repo, testConfig())

	violations, err := v.ValidateDelete(context.Background(), protected.ID.String())
	require.NoError(t, err)

	got := codes(violations)
	assert.Contains(t, got, CodeAdminProtection)
	// Also the last active admin.
	assert.Contains(t, got, CodeSoleAdmin)
}

func TestValidateDeleteAllowsRegularUser(t *testing.T) {
	admin := activeUser("admin@stationops.local", permission.RoleAdministrator, model.StationAll)
	cashier := activeUser("cash@stationops.local", permission.RoleCashier, "MOBIL")
	repo := newFakeUserRepo(admin, cashier)
	v := NewUserValidator(repo, testConfig())

	violations, err := v.ValidateDelete(context.Background(), cashier.ID.String())
	require.NoError(t, err)
	assert.Empty(t, violations)
}
