// Package permission defines the closed catalog of permission keys used by the
// application, together with the typed containers that hold grants for a role
// (Grants) and per-user overrides (Overlay).
//
// A permission key has the shape "{action}_{module}", for example
// "view_project" or "create_award". Every key in use must be listed in the
// catalog; ModuleOf and ActionOf return an *UnknownKeyError for anything else.
//
// Example usage:
//
//	def, ok := permission.Lookup(permission.ViewProject)
//	label := permission.Label(permission.CreateAward) // "Create Award"
//	groups := permission.Grouped()                    // keys grouped by module
package permission
