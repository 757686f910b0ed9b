package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTemplateCoversEveryPage(t *testing.T) {
	roles := append([]string{}, Roles...)
	roles = append(roles, RoleCustom, "Night Auditor", "")

	for _, role := range roles {
		rec := ResolveTemplate(role)
		for _, page := range Pages {
			_, ok := rec[page]
			assert.True(t, ok, "role %q missing page %q", role, page)
		}
	}
}

func TestResolveTemplateAdministrator(t *testing.T) {
	rec := ResolveTemplate(RoleAdministrator)
	for _, page := range Pages {
		for _, c := range AllCapabilities {
			assert.True(t, rec.Allows(page, c), "admin should have %s.%s", page, c)
		}
	}
}

func TestResolveTemplateManagement(t *testing.T) {
	rec := ResolveTemplate(RoleManagement)

	assert.Equal(t, allGranted(), rec.Page(PageDelivery))
	assert.Equal(t, allGranted(), rec.Page(PageSalesReports))

	for _, page := range []string{PageSettings, PageUserManagement} {
		p := rec.Page(page)
		assert.True(t, p.View)
		assert.True(t, p.Edit)
		assert.True(t, p.Export)
		assert.False(t, p.Create)
		assert.False(t, p.Delete)
		assert.False(t, p.Approve)
	}
}

func TestResolveTemplateStationManagerExcludesAdvanced(t *testing.T) {
	rec := ResolveTemplate(RoleStationManager)

	for _, page := range stationManagerOperationalPages {
		p := rec.Page(page)
		for _, c := range BasicCapabilities {
			assert.True(t, p.Has(c), "%s.%s", page, c)
		}
		assert.False(t, p.Approve)
		assert.False(t, p.BulkOperations)
		assert.False(t, p.AdvancedFeatures)
	}

	// Cross-visibility pages: view/export/print only.
	p := rec.Page(PageEmployees)
	assert.Equal(t, PagePermission{View: true, Export: true, Print: true}, p)

	// Admin pages stay untouched.
	assert.Equal(t, PagePermission{}, rec.Page(PageUserManagement))
}

func TestResolveTemplateEmployee(t *testing.T) {
	rec := ResolveTemplate(RoleEmployee)

	assert.Equal(t, PagePermission{View: true, Create: true, Edit: true, Print: true}, rec.Page(PageDelivery))
	assert.Equal(t, PagePermission{View: true}, rec.Page(PageDashboard))
	assert.Equal(t, PagePermission{}, rec.Page(PageSettings))
}

func TestResolveTemplateCashier(t *testing.T) {
	rec := ResolveTemplate(RoleCashier)

	assert.True(t, rec.Allows(PageDashboard, CapView))
	assert.False(t, rec.Allows(PageEmployees, CapView))
	assert.False(t, rec.Allows(PageSalesReports, CapDelete))
	assert.True(t, rec.Allows(PageSalesReports, CapCreate))
}

func TestResolveTemplateUnknownRoleGetsMinimalDefault(t *testing.T) {
	for _, role := range []string{RoleCustom, "Regional Director", "administrator", ""} {
		rec := ResolveTemplate(role)
		assert.True(t, rec.Allows(PageDashboard, CapView), "role %q", role)

		granted := 0
		for _, page := range Pages {
			for _, c := range AllCapabilities {
				if rec.Allows(page, c) {
					granted++
				}
			}
		}
		assert.Equal(t, 1, granted, "role %q should only get dashboard.view", role)
	}
}

func TestDetectTemplate(t *testing.T) {
	for _, role := range Roles {
		assert.Equal(t, role, DetectTemplate(ResolveTemplate(role)))
	}

	edited, err := SetCapability(ResolveTemplate(RoleCashier), PageSalesReports, CapDelete, true)
	require.NoError(t, err)
	assert.Equal(t, RoleCustom, DetectTemplate(edited))
}

func TestRecordEqualTreatsMissingPagesAsAllFalse(t *testing.T) {
	sparse := Record{PageDashboard: {View: true}}
	full := NewRecord()
	full[PageDashboard] = PagePermission{View: true}

	assert.True(t, sparse.Equal(full))
	assert.True(t, full.Equal(sparse))
}
