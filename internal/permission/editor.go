package permission

import "fmt"

// BulkAction names a fixed per-page capability mapping used by bulk edits.
type BulkAction string

const (
	BulkGrantAll    BulkAction = "grant_all"
	BulkRevokeAll   BulkAction = "revoke_all"
	BulkViewOnly    BulkAction = "view_only"
	BulkOperational BulkAction = "operational"
)

func bulkPermission(action BulkAction) (PagePermission, error) {
	switch action {
	case BulkGrantAll:
		return allGranted(), nil
	case BulkRevokeAll:
		return PagePermission{}, nil
	case BulkViewOnly:
		return PagePermission{View: true, Export: true}, nil
	case BulkOperational:
		return PagePermission{View: true, Create: true, Edit: true, Export: true, Print: true}, nil
	}
	return PagePermission{}, fmt.Errorf("unknown bulk action %q", action)
}

// SetCapability returns a copy of rec with exactly one boolean changed on one
// page. Every other page keeps its previous value. An unknown capability name
// is an error; an unknown page key simply gains an entry (records tolerate
// pages outside the canonical list the same way reads do).
func SetCapability(rec Record, page string, c Capability, value bool) (Record, error) {
	out := rec.Clone()
	p := out[page]
	if !p.set(c, value) {
		return nil, fmt.Errorf("unknown capability %q", c)
	}
	out[page] = p
	return out, nil
}

// ApplyBulkToPage returns a copy of rec with the page's entire capability set
// replaced according to the bulk action mapping.
func ApplyBulkToPage(rec Record, page string, action BulkAction) (Record, error) {
	p, err := bulkPermission(action)
	if err != nil {
		return nil, err
	}
	out := rec.Clone()
	out[page] = p
	return out, nil
}

// ApplyBulkToGroup applies the bulk action independently to every page in the
// named group. Pages outside the group keep their previous values.
func ApplyBulkToGroup(rec Record, group string, action BulkAction) (Record, error) {
	pages, ok := PageGroups[group]
	if !ok {
		return nil, fmt.Errorf("unknown page group %q", group)
	}
	p, err := bulkPermission(action)
	if err != nil {
		return nil, err
	}
	out := rec.Clone()
	for _, page := range pages {
		out[page] = p
	}
	return out, nil
}

// Editor tracks a record under edit together with its active template marker.
// Any successful edit flips the marker to Custom; the reducers themselves stay
// pure, so a failed edit leaves both record and marker untouched.
type Editor struct {
	Record   Record
	Template string
}

// NewEditor starts an editing session from an existing record.
func NewEditor(template string, rec Record) *Editor {
	return &Editor{Record: rec.Clone(), Template: template}
}

func (e *Editor) SetCapability(page string, c Capability, value bool) error {
	out, err := SetCapability(e.Record, page, c, value)
	if err != nil {
		return err
	}
	e.Record = out
	e.Template = RoleCustom
	return nil
}

func (e *Editor) ApplyBulkToPage(page string, action BulkAction) error {
	out, err := ApplyBulkToPage(e.Record, page, action)
	if err != nil {
		return err
	}
	e.Record = out
	e.Template = RoleCustom
	return nil
}

func (e *Editor) ApplyBulkToGroup(group string, action BulkAction) error {
	out, err := ApplyBulkToGroup(e.Record, group, action)
	if err != nil {
		return err
	}
	e.Record = out
	e.Template = RoleCustom
	return nil
}
