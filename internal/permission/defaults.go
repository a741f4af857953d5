package permission

// Built-in roles seeded at setup. Roles are free-form strings, so
// administrators may add templates for other roles later.
const (
	RoleSuperAdmin         = "SuperAdmin"
	RoleAdmin              = "Admin"
	RoleProjectManager     = "ProjectManager"
	RoleFinanceOfficer     = "FinanceOfficer"
	RoleProcurementOfficer = "ProcurementOfficer"
	RoleContractor         = "Contractor"
	RoleAuditor            = "Auditor"
	RoleViewer             = "Viewer"
)

// RoleDefault is the seed template of a built-in role.
type RoleDefault struct {
	Role        string
	Description string
	Grants      Grants
}

// Defaults returns the seed templates for the built-in roles.
func Defaults() []RoleDefault {
	return []RoleDefault{
		{
			Role:        RoleSuperAdmin,
			Description: "Full access to every module",
			Grants:      NewGrants(AllKeys()...),
		},
		{
			Role:        RoleAdmin,
			Description: "Administers users and day-to-day records",
			Grants: withModules(
				NewGrants(ViewPermissions),
				[]Module{
					ModuleDashboard, ModuleProject, ModuleBudget, ModuleTender, ModuleAward, ModuleSubmission,
					ModuleContract, ModuleRevenue, ModuleExpenditure, ModuleMDA, ModuleMeeting, ModuleReport,
					ModuleUser, ModuleAudit, ModuleAIAssistant,
				},
			),
		},
		{
			Role:        RoleProjectManager,
			Description: "Manages projects, tenders and contracts",
			Grants: withModules(
				NewGrants(NewKey(ActionView, ModuleBudget), NewKey(ActionView, ModuleAward), NewKey(ActionView, ModuleReport)),
				[]Module{ModuleDashboard, ModuleProject, ModuleTender, ModuleContract, ModuleMeeting},
			),
		},
		{
			Role:        RoleFinanceOfficer,
			Description: "Manages budgets, revenue and expenditure",
			Grants: withModules(
				NewGrants(ViewProject, NewKey(ActionView, ModuleContract), NewKey(ActionView, ModuleReport),
					NewKey(ActionExport, ModuleReport)),
				[]Module{ModuleDashboard, ModuleBudget, ModuleRevenue, ModuleExpenditure},
			),
		},
		{
			Role:        RoleProcurementOfficer,
			Description: "Runs tenders, evaluates submissions and prepares awards",
			Grants: withModules(
				NewGrants(ViewProject, NewKey(ActionView, ModuleContract)),
				[]Module{ModuleDashboard, ModuleTender, ModuleSubmission, ModuleAward},
			),
		},
		{
			Role:        RoleContractor,
			Description: "External contractor submitting bids",
			Grants: Grants{
				ViewDashboard:                          true,
				ViewProject:                            true,
				EditProject:                            false,
				NewKey(ActionView, ModuleTender):       true,
				NewKey(ActionView, ModuleSubmission):   true,
				NewKey(ActionCreate, ModuleSubmission): true,
				NewKey(ActionEdit, ModuleSubmission):   true,
				NewKey(ActionView, ModuleContract):     true,
				NewKey(ActionView, ModuleAIAssistant):  true,
			},
		},
		{
			Role:        RoleAuditor,
			Description: "Read-only access plus audit log export",
			Grants: withActions(
				NewGrants(NewKey(ActionExport, ModuleAudit), NewKey(ActionExport, ModuleReport)),
				ActionView,
			),
		},
		{
			Role:        RoleViewer,
			Description: "Read-only access to the dashboard and projects",
			Grants:      NewGrants(ViewDashboard, ViewProject, NewKey(ActionView, ModuleReport)),
		},
	}
}

// withModules grants every catalog action of the given modules.
func withModules(g Grants, modules []Module) Grants {
	want := make(map[Module]bool, len(modules))
	for _, m := range modules {
		want[m] = true
	}

	for _, def := range catalog.ordered {
		if want[def.Module] {
			g[def.Key] = true
		}
	}

	return g
}

// withActions grants the given action on every module that supports it.
func withActions(g Grants, action Action) Grants {
	for _, def := range catalog.ordered {
		if def.Action == action {
			g[def.Key] = true
		}
	}

	return g
}
