package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCapabilityScopeIsolation(t *testing.T) {
	before := ResolveTemplate(RoleEmployee)
	snapshot := before.Clone()

	after, err := SetCapability(before, PageProducts, CapEdit, true)
	require.NoError(t, err)

	assert.True(t, after.Allows(PageProducts, CapEdit))
	// The input record is untouched.
	assert.Equal(t, snapshot, before)
	// Every other page is byte-for-byte what it was.
	for _, page := range Pages {
		if page == PageProducts {
			continue
		}
		assert.Equal(t, before.Page(page), after.Page(page), "page %q leaked", page)
	}
	// On the edited page only the one bit moved.
	assert.Equal(t, PagePermission{View: true, Edit: true}, after.Page(PageProducts))
}

func TestSetCapabilityUnknownCapability(t *testing.T) {
	_, err := SetCapability(NewRecord(), PageDashboard, "teleport", true)
	assert.Error(t, err)
}

func TestApplyBulkToPageMappings(t *testing.T) {
	cases := []struct {
		action BulkAction
		want   PagePermission
	}{
		{BulkGrantAll, allGranted()},
		{BulkRevokeAll, PagePermission{}},
		{BulkViewOnly, PagePermission{View: true, Export: true}},
		{BulkOperational, PagePermission{View: true, Create: true, Edit: true, Export: true, Print: true}},
	}

	for _, tc := range cases {
		rec, err := ApplyBulkToPage(ResolveTemplate(RoleManagement), PageInventory, tc.action)
		require.NoError(t, err, tc.action)
		assert.Equal(t, tc.want, rec.Page(PageInventory), tc.action)
	}

	_, err := ApplyBulkToPage(NewRecord(), PageInventory, "invert_all")
	assert.Error(t, err)
}

func TestApplyBulkToPageIdempotent(t *testing.T) {
	once, err := ApplyBulkToPage(ResolveTemplate(RoleCashier), PageSalesReports, BulkGrantAll)
	require.NoError(t, err)
	twice, err := ApplyBulkToPage(once, PageSalesReports, BulkGrantAll)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestApplyBulkToGroup(t *testing.T) {
	before := ResolveTemplate(RoleManagement)
	after, err := ApplyBulkToGroup(before, "hr", BulkViewOnly)
	require.NoError(t, err)

	for _, page := range PageGroups["hr"] {
		assert.Equal(t, PagePermission{View: true, Export: true}, after.Page(page))
	}
	// Pages outside the group keep their previous values.
	assert.Equal(t, before.Page(PageInventory), after.Page(PageInventory))
	assert.Equal(t, before.Page(PageSettings), after.Page(PageSettings))

	_, err = ApplyBulkToGroup(before, "board", BulkViewOnly)
	assert.Error(t, err)
}

func TestEditorMarksTemplateCustom(t *testing.T) {
	e := NewEditor(RoleCashier, ResolveTemplate(RoleCashier))
	require.Equal(t, RoleCashier, e.Template)

	require.NoError(t, e.SetCapability(PageDelivery, CapCreate, true))
	assert.Equal(t, RoleCustom, e.Template)
	assert.True(t, e.Record.Allows(PageDelivery, CapCreate))
}

func TestEditorFailedEditLeavesStateAlone(t *testing.T) {
	e := NewEditor(RoleEmployee, ResolveTemplate(RoleEmployee))
	snapshot := e.Record.Clone()

	assert.Error(t, e.SetCapability(PageDelivery, "levitate", true))
	assert.Equal(t, RoleEmployee, e.Template)
	assert.Equal(t, snapshot, e.Record)
}
