// Package roletemplate serves the role permission template endpoints.
package roletemplate

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/audit"
	"github.com/govfinance-admin/govfinance-admin/internal/auth"
	"github.com/govfinance-admin/govfinance-admin/internal/config"
	store "github.com/govfinance-admin/govfinance-admin/internal/db/controller/roletemplate"
	"github.com/govfinance-admin/govfinance-admin/internal/db/models"
	"github.com/govfinance-admin/govfinance-admin/internal/logger"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler/api"
	"github.com/govfinance-admin/govfinance-admin/internal/web/response"
)

const (
	// Path is the base path of the role template endpoints.
	Path = handler.APIPath + "/role-permissions"

	paramRole = "role"
)

// UpsertRequest is the body of POST and PUT. On PUT the role comes from the path.
type UpsertRequest struct {
	Role        string            `json:"role"`
	Permissions permission.Grants `json:"permissions" validate:"required"`
	Description string            `json:"description" validate:"max=255"`
}

// Template is a role template as returned by the API.
type Template struct {
	models.RoleTemplate
	// Exists is false when the role has no stored template and the empty default was returned.
	Exists bool `json:"exists"`
}

// Service is the role template handler service.
type Service struct {
	handler.Service
	db *gorm.DB
}

// Handler is the role template handler.
var Handler = Service{}

// Init registers the role template routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if err := handler.CheckDeps(app, cfg, db, authService); err != nil {
		return err
	}

	s.db = db

	read := auth.RequireAuth(authService, permission.ViewPermissions, permission.ManagePermissions)
	write := auth.RequireAuth(authService, permission.ManagePermissions)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, read, s.List)
		router.Get("/:"+paramRole, read, s.Get)
		router.Post(handler.RouterRootPath, write, s.Create)
		router.Put("/:"+paramRole, write, s.Update)
		router.Delete("/:"+paramRole, write, s.Delete)
	})

	return nil
}

// List returns every stored template.
func (s *Service) List(c *fiber.Ctx) error {
	templates, err := store.List(c.UserContext(), s.db)
	if err != nil {
		return api.RespondError(c, err)
	}

	return response.OK(c, templates)
}

// Get returns the template of one role. A role without a template yields
// the empty template with exists=false.
func (s *Service) Get(c *fiber.Ctx) error {
	role, err := roleParam(c)
	if err != nil {
		return api.RespondError(c, err)
	}

	tmpl, exists, err := store.GetOrEmpty(c.UserContext(), s.db, role)
	if err != nil {
		return api.RespondError(c, err)
	}

	return response.OK(c, Template{RoleTemplate: *tmpl, Exists: exists})
}

// Create upserts the template named in the body.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(UpsertRequest)
	if err := api.Bind(c, req); err != nil {
		return api.RespondError(c, err)
	}

	return s.upsert(c, req.Role, req)
}

// Update upserts the template named in the path.
func (s *Service) Update(c *fiber.Ctx) error {
	req := new(UpsertRequest)
	if err := api.Bind(c, req); err != nil {
		return api.RespondError(c, err)
	}

	role, err := roleParam(c)
	if err != nil {
		return api.RespondError(c, err)
	}

	return s.upsert(c, role, req)
}

// roleParam decodes and normalizes the role in the path.
func roleParam(c *fiber.Ctx) (string, error) {
	role, err := url.PathUnescape(c.Params(paramRole))
	if err != nil {
		return "", &permission.ValidationError{Field: "role", Reason: "role is not a valid path segment"}
	}

	return store.NormalizeRole(role)
}

// upsert answers 201 when the role had no template before.
func (s *Service) upsert(c *fiber.Ctx, role string, req *UpsertRequest) error {
	role, err := store.NormalizeRole(role)
	if err != nil {
		return api.RespondError(c, err)
	}

	_, existed, err := store.GetOrEmpty(c.UserContext(), s.db, role)
	if err != nil {
		return api.RespondError(c, err)
	}

	tmpl, err := store.Upsert(c.UserContext(), s.db, role, req.Permissions, req.Description)
	if err != nil {
		return api.RespondError(c, err)
	}

	audit.Record(c.UserContext(), s.db, audit.Entry{
		UserID:   api.Actor(c),
		Action:   audit.ActionUpsertRoleTemplate,
		Entity:   audit.EntityRoleTemplate,
		EntityID: tmpl.Role,
		Details:  fiber.Map{"permissions": tmpl.Permissions, "description": tmpl.Description},
	})

	logger.FromContext(c.UserContext()).Info().Str("template", tmpl.Role).Bool("created", !existed).
		Msg("role template saved")

	if !existed {
		return response.Created(c, Template{RoleTemplate: *tmpl, Exists: true})
	}

	return response.OK(c, Template{RoleTemplate: *tmpl, Exists: true})
}

// Delete removes the template of one role. Users of that role then hold no
// role-derived permissions.
func (s *Service) Delete(c *fiber.Ctx) error {
	role, err := roleParam(c)
	if err != nil {
		return api.RespondError(c, err)
	}

	if err := store.Delete(c.UserContext(), s.db, role); err != nil {
		return api.RespondError(c, err)
	}

	audit.Record(c.UserContext(), s.db, audit.Entry{
		UserID:   api.Actor(c),
		Action:   audit.ActionDeleteRoleTemplate,
		Entity:   audit.EntityRoleTemplate,
		EntityID: role,
	})

	logger.FromContext(c.UserContext()).Info().Str("template", role).Msg("role template deleted")

	return response.OK(c, fiber.Map{"role": role})
}
