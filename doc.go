// Package main provides the entry point of GovFinance-Admin, the permission
// core of a government finance administration application. It serves the
// login, dashboard and role administration pages and a JSON API, all guarded
// by role permission templates layered with per-user overlays.
package main
