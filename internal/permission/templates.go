package permission

// Role names understood by the template resolver. RoleCustom is a marker, not
// a template: it means the record was edited by hand and matches no template.
const (
	RoleAdministrator  = "Administrator"
	RoleManagement     = "Management"
	RoleStationManager = "Station Manager"
	RoleEmployee       = "Employee"
	RoleCashier        = "Cashier"
	RoleCustom         = "Custom"
)

// Roles lists the assignable role names (Custom excluded).
var Roles = []string{
	RoleAdministrator, RoleManagement, RoleStationManager, RoleEmployee, RoleCashier,
}

// IsKnownRole reports whether name is an assignable role or the Custom marker.
func IsKnownRole(name string) bool {
	if name == RoleCustom {
		return true
	}
	for _, r := range Roles {
		if r == name {
			return true
		}
	}
	return false
}

// Allow-lists behind the templates. Pages not named stay all-false.
var (
	managementOperationalPages = []string{
		PageDashboard, PageProducts, PageEmployees, PageSalaries, PageInventory,
		PageDelivery, PageSalesReports, PageExpenses, PageLicenses, PageEmailAutomation,
	}
	managementAdminPages = []string{PageSettings, PageUserManagement}

	stationManagerOperationalPages = []string{
		PageDashboard, PageProducts, PageInventory, PageDelivery,
		PageExpenses, PageSalesReports,
	}
	stationManagerVisibilityPages = []string{PageEmployees, PageSalaries, PageLicenses}

	employeeTaskPages          = []string{PageDelivery, PageInventory, PageSalesReports}
	employeeInformationalPages = []string{PageDashboard, PageProducts}
)

// ResolveTemplate produces the full permission record for a role name. The
// computation is pure; the caller persists the result if it wants to. A role
// outside the known set (Custom included) resolves to the minimal default of
// dashboard view only — unknown input gets least privilege, not an error.
func ResolveTemplate(role string) Record {
	rec := NewRecord()

	switch role {
	case RoleAdministrator:
		for _, page := range Pages {
			rec[page] = allGranted()
		}

	case RoleManagement:
		for _, page := range managementOperationalPages {
			rec[page] = allGranted()
		}
		for _, page := range managementAdminPages {
			rec[page] = PagePermission{View: true, Edit: true, Export: true}
		}

	case RoleStationManager:
		for _, page := range stationManagerOperationalPages {
			p := rec[page]
			for _, c := range BasicCapabilities {
				p.set(c, true)
			}
			rec[page] = p
		}
		for _, page := range stationManagerVisibilityPages {
			rec[page] = PagePermission{View: true, Export: true, Print: true}
		}

	case RoleEmployee:
		for _, page := range employeeTaskPages {
			rec[page] = PagePermission{View: true, Create: true, Edit: true, Print: true}
		}
		for _, page := range employeeInformationalPages {
			rec[page] = PagePermission{View: true}
		}

	case RoleCashier:
		rec[PageDashboard] = PagePermission{View: true}
		rec[PageProducts] = PagePermission{View: true}
		rec[PageDelivery] = PagePermission{View: true}
		rec[PageSalesReports] = PagePermission{View: true, Create: true, Print: true}

	default:
		rec[PageDashboard] = PagePermission{View: true}
	}

	return rec
}

// DetectTemplate returns the role whose template equals the record, or
// RoleCustom when no template matches. Drives the "active template" marker in
// the permission matrix UI.
func DetectTemplate(rec Record) string {
	for _, role := range Roles {
		if rec.Equal(ResolveTemplate(role)) {
			return role
		}
	}
	return RoleCustom
}
