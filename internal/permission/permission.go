// Package permission implements the page/capability permission model used by
// the back office: a record maps every page key to a set of boolean
// capabilities, role templates generate default records, and pure editor
// operations merge manual edits into a record.
package permission

// Capability identifies a single boolean switch on a page.
type Capability string

const (
	CapView             Capability = "view"
	CapCreate           Capability = "create"
	CapEdit             Capability = "edit"
	CapDelete           Capability = "delete"
	CapExport           Capability = "export"
	CapPrint            Capability = "print"
	CapApprove          Capability = "approve"
	CapBulkOperations   Capability = "bulk_operations"
	CapAdvancedFeatures Capability = "advanced_features"
)

// AllCapabilities lists every capability in canonical order.
var AllCapabilities = []Capability{
	CapView, CapCreate, CapEdit, CapDelete, CapExport, CapPrint,
	CapApprove, CapBulkOperations, CapAdvancedFeatures,
}

// BasicCapabilities are the first six capabilities — the set granted in full
// by the Station Manager template (no approve / bulk / advanced).
var BasicCapabilities = []Capability{
	CapView, CapCreate, CapEdit, CapDelete, CapExport, CapPrint,
}

// Canonical page keys. Every template initializes all of them; a record
// missing one of these reads as all-false, never an error.
const (
	PageDashboard       = "dashboard"
	PageProducts        = "products"
	PageEmployees       = "employees"
	PageSalaries        = "salaries"
	PageInventory       = "inventory"
	PageDelivery        = "delivery"
	PageSalesReports    = "sales_reports"
	PageExpenses        = "expenses"
	PageLicenses        = "licenses"
	PageEmailAutomation = "email_automation"
	PageSettings        = "settings"
	PageUserManagement  = "user_management"
)

// Pages is the canonical page list in display order.
var Pages = []string{
	PageDashboard,
	PageProducts,
	PageEmployees,
	PageSalaries,
	PageInventory,
	PageDelivery,
	PageSalesReports,
	PageExpenses,
	PageLicenses,
	PageEmailAutomation,
	PageSettings,
	PageUserManagement,
}

// PageGroups partitions the pages for bulk group edits. Pages absent from
// every group are never touched by a group operation.
var PageGroups = map[string][]string{
	"operations":     {PageProducts, PageInventory, PageDelivery, PageExpenses},
	"hr":             {PageEmployees, PageSalaries},
	"reporting":      {PageDashboard, PageSalesReports},
	"administration": {PageLicenses, PageEmailAutomation, PageSettings, PageUserManagement},
}

// PagePermission is the capability set for a single page. Keys absent from
// stored JSON decode to false.
type PagePermission struct {
	View             bool `json:"view"`
	Create           bool `json:"create"`
	Edit             bool `json:"edit"`
	Delete           bool `json:"delete"`
	Export           bool `json:"export"`
	Print            bool `json:"print"`
	Approve          bool `json:"approve"`
	BulkOperations   bool `json:"bulk_operations"`
	AdvancedFeatures bool `json:"advanced_features"`
}

// Has reports whether the named capability is granted. Unknown capability
// names report false.
func (p PagePermission) Has(c Capability) bool {
	switch c {
	case CapView:
		return p.View
	case CapCreate:
		return p.Create
	case CapEdit:
		return p.Edit
	case CapDelete:
		return p.Delete
	case CapExport:
		return p.Export
	case CapPrint:
		return p.Print
	case CapApprove:
		return p.Approve
	case CapBulkOperations:
		return p.BulkOperations
	case CapAdvancedFeatures:
		return p.AdvancedFeatures
	}
	return false
}

func (p *PagePermission) set(c Capability, v bool) bool {
	switch c {
	case CapView:
		p.View = v
	case CapCreate:
		p.Create = v
	case CapEdit:
		p.Edit = v
	case CapDelete:
		p.Delete = v
	case CapExport:
		p.Export = v
	case CapPrint:
		p.Print = v
	case CapApprove:
		p.Approve = v
	case CapBulkOperations:
		p.BulkOperations = v
	case CapAdvancedFeatures:
		p.AdvancedFeatures = v
	default:
		return false
	}
	return true
}

// allGranted is the all-true page permission.
func allGranted() PagePermission {
	return PagePermission{
		View: true, Create: true, Edit: true, Delete: true,
		Export: true, Print: true, Approve: true,
		BulkOperations: true, AdvancedFeatures: true,
	}
}

// Record maps a page key to its capability set.
type Record map[string]PagePermission

// NewRecord returns a record with every canonical page present and all-false.
func NewRecord() Record {
	r := make(Record, len(Pages))
	for _, page := range Pages {
		r[page] = PagePermission{}
	}
	return r
}

// Page returns the capability set for a page key. Missing entries read as
// all-false.
func (r Record) Page(key string) PagePermission {
	return r[key]
}

// Allows reports whether the record grants the capability on the page.
func (r Record) Allows(page string, c Capability) bool {
	return r.Page(page).Has(c)
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Equal compares two records treating missing pages as all-false on either
// side, so a record that simply omits an all-false page compares equal to one
// that spells it out.
func (r Record) Equal(other Record) bool {
	seen := make(map[string]struct{}, len(r)+len(other))
	for k := range r {
		seen[k] = struct{}{}
	}
	for k := range other {
		seen[k] = struct{}{}
	}
	for k := range seen {
		if r[k] != other[k] {
			return false
		}
	}
	return true
}
