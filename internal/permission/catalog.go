package permission

import (
	"sort"
	"strings"
)

// Module is a business area a permission applies to.
type Module string

// Modules known to the catalog.
const (
	ModuleProject     Module = "project"
	ModuleBudget      Module = "budget"
	ModuleTender      Module = "tender"
	ModuleAward       Module = "award"
	ModuleSubmission  Module = "submission"
	ModuleRevenue     Module = "revenue"
	ModuleExpenditure Module = "expenditure"
	ModuleMDA         Module = "mda"
	ModuleUser        Module = "user"
	ModuleAudit       Module = "audit"
	ModuleMeeting     Module = "meeting"
	ModulePermissions Module = "permissions"
	ModuleContract    Module = "contract"
	ModuleDashboard   Module = "dashboard"
	ModuleReport      Module = "report"
	ModuleAIAssistant Module = "ai_assistant"
)

// Action is the verb part of a permission key.
type Action string

// Actions known to the catalog.
const (
	ActionView     Action = "view"
	ActionCreate   Action = "create"
	ActionEdit     Action = "edit"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionExport   Action = "export"
	ActionManage   Action = "manage"
	ActionPublish  Action = "publish"
	ActionEvaluate Action = "evaluate"
)

// Key identifies one (action, module) capability, e.g. "view_project".
type Key string

// Keys referenced directly by the application. The full set is returned by AllKeys.
const (
	ViewDashboard Key = "view_dashboard"

	ViewProject Key = "view_project"
	EditProject Key = "edit_project"

	CreateAward Key = "create_award"

	ViewUser   Key = "view_user"
	UpdateUser Key = "update_user"

	ViewAudit Key = "view_audit"

	ViewPermissions   Key = "view_permissions"
	ManagePermissions Key = "manage_permissions"
)

// Definition describes a single catalog entry.
type Definition struct {
	Key    Key    `json:"key"`
	Module Module `json:"module"`
	Action Action `json:"action"`
	Label  string `json:"label"`
}

// moduleActions enumerates the valid (action, module) combinations, in display order.
var moduleActions = []struct { //nolint:gochecknoglobals
	module  Module
	label   string
	actions []Action
}{
	{ModuleDashboard, "Dashboard", []Action{ActionView}},
	{ModuleProject, "Project", []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionApprove, ActionExport}},
	{ModuleBudget, "Budget", []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionApprove, ActionExport}},
	{ModuleTender, "Tender", []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionPublish, ActionApprove}},
	{ModuleAward, "Award", []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionApprove, ActionReject}},
	{ModuleSubmission, "Submission", []Action{
		ActionView, ActionCreate, ActionEdit, ActionDelete, ActionEvaluate, ActionApprove, ActionReject,
	}},
	{ModuleContract, "Contract", []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionApprove}},
	{ModuleRevenue, "Revenue", []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionExport}},
	{ModuleExpenditure, "Expenditure", []Action{
		ActionView, ActionCreate, ActionEdit, ActionDelete, ActionApprove, ActionExport,
	}},
	{ModuleMDA, "MDA", []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}},
	{ModuleMeeting, "Meeting", []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionManage}},
	{ModuleReport, "Report", []Action{ActionView, ActionCreate, ActionExport}},
	{ModuleUser, "User", []Action{ActionView, ActionCreate, ActionUpdate, ActionDelete, ActionManage}},
	{ModuleAudit, "Audit", []Action{ActionView, ActionExport}},
	{ModulePermissions, "Permissions", []Action{ActionView, ActionManage}},
	{ModuleAIAssistant, "AI Assistant", []Action{ActionView}},
}

// catalog is built once from moduleActions and never mutated afterwards.
var catalog = buildCatalog() //nolint:gochecknoglobals

type index struct {
	ordered  []Definition
	byKey    map[Key]Definition
	byModule map[Module][]Definition
	modules  []Module
}

func buildCatalog() index {
	idx := index{
		byKey:    make(map[Key]Definition),
		byModule: make(map[Module][]Definition),
	}

	for _, m := range moduleActions {
		idx.modules = append(idx.modules, m.module)

		for _, a := range m.actions {
			def := Definition{
				Key:    NewKey(a, m.module),
				Module: m.module,
				Action: a,
				Label:  actionLabel(a) + " " + m.label,
			}

			idx.ordered = append(idx.ordered, def)
			idx.byKey[def.Key] = def
			idx.byModule[m.module] = append(idx.byModule[m.module], def)
		}
	}

	return idx
}

func actionLabel(a Action) string {
	s := string(a)
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

// NewKey composes a key from its action and module. The result is not
// guaranteed to be in the catalog; use Exists to check.
func NewKey(action Action, module Module) Key {
	return Key(string(action) + "_" + string(module))
}

// All returns every catalog entry in display order.
func All() []Definition {
	out := make([]Definition, len(catalog.ordered))
	copy(out, catalog.ordered)

	return out
}

// AllKeys returns every catalog key in display order.
func AllKeys() []Key {
	out := make([]Key, 0, len(catalog.ordered))
	for _, def := range catalog.ordered {
		out = append(out, def.Key)
	}

	return out
}

// Modules returns the catalog modules in display order.
func Modules() []Module {
	out := make([]Module, len(catalog.modules))
	copy(out, catalog.modules)

	return out
}

// Grouped returns the catalog entries grouped by module.
func Grouped() map[Module][]Definition {
	out := make(map[Module][]Definition, len(catalog.byModule))
	for m, defs := range catalog.byModule {
		cp := make([]Definition, len(defs))
		copy(cp, defs)
		out[m] = cp
	}

	return out
}

// Lookup returns the catalog entry for key.
func Lookup(key Key) (Definition, bool) {
	def, ok := catalog.byKey[key]
	return def, ok
}

// Exists reports whether key is part of the catalog.
func Exists(key Key) bool {
	_, ok := Lookup(key)
	return ok
}

// ModuleOf returns the module of a catalog key.
func ModuleOf(key Key) (Module, error) {
	def, ok := Lookup(key)
	if !ok {
		return "", &UnknownKeyError{Key: key}
	}

	return def.Module, nil
}

// ActionOf returns the action of a catalog key.
func ActionOf(key Key) (Action, error) {
	def, ok := Lookup(key)
	if !ok {
		return "", &UnknownKeyError{Key: key}
	}

	return def.Action, nil
}

// Label returns a human-readable phrase for key, e.g. "View Project".
// Keys outside the catalog are returned verbatim.
func Label(key Key) string {
	if def, ok := Lookup(key); ok {
		return def.Label
	}

	return string(key)
}

// Validate checks that every key is in the catalog. The returned error is a
// *ValidationError listing the unknown keys.
func Validate(field string, keys ...Key) error {
	var unknown []Key

	for _, k := range keys {
		if !Exists(k) {
			unknown = append(unknown, k)
		}
	}

	if len(unknown) == 0 {
		return nil
	}

	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })

	return &ValidationError{Field: field, Unknown: unknown}
}

// Strings converts keys to plain strings.
func Strings(keys []Key) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, string(k))
	}

	return out
}
