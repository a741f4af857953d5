// Package navigation provides utilities for managing navigation state and breadcrumbs.
package navigation

import (
	"github.com/govfinance-admin/govfinance-admin/internal/auth"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
)

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// Link is a menu entry. It is shown only to users holding one of Required;
// an empty Required shows it to every signed-in user.
type Link struct {
	Title    string
	URL      string
	Section  string
	Required []permission.Key
}

// Menu is the main navigation in display order.
var Menu = []Link{ //nolint:gochecknoglobals
	{Title: "Dashboard", URL: "/dashboard", Section: "dashboard", Required: []permission.Key{permission.ViewDashboard}},
	{
		Title:    "Role permissions",
		URL:      "/admin/roles",
		Section:  "admin",
		Required: []permission.Key{permission.ViewPermissions, permission.ManagePermissions},
	},
	{Title: "Change password", URL: "/password", Section: "account"},
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
	Links         []Link
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
		Links:         make([]Link, 0),
	}
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// WithMenu sets the menu links visible to the subject.
func (c *Context) WithMenu(subject *auth.Subject, menu []Link) *Context {
	c.Links = c.Links[:0]

	for _, l := range menu {
		if auth.HasAnyPermission(subject, l.Required...) {
			c.Links = append(c.Links, l)
		}
	}

	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}
