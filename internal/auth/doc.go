// Package auth decides what a user may do and enforces it on server routes.
//
// # Resolution
//
// A Subject is a per-request snapshot of a user (status, role, permission
// overlay) together with the template of its role. HasPermission evaluates a
// single key:
//   - a nil or inactive subject holds nothing
//   - an overlay entry wins, whether it grants or revokes
//   - otherwise the role template decides; a missing entry or template denies
//   - keys outside the permission catalog are always denied
//
// HasAnyPermission and HasAllPermissions combine single-key checks. None of
// the resolver functions touch the database or return errors.
//
// # Enforcement
//
// Service.RequireAuth identifies the caller from the identity header or the
// session cookie, loads a fresh Subject and applies an any-of requirement.
// The Fiber handler returned by RequireAuth turns its errors into
// 401 Unauthorized, 403 AccountDeactivated and 403 Forbidden responses.
//
// Example usage:
//
//	svc := auth.NewService(db)
//
//	app.Get("/api/role-permissions",
//	    auth.RequireAuth(svc, permission.ViewPermissions, permission.ManagePermissions),
//	    handler,
//	)
package auth
