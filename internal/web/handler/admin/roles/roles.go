// Package roles provides the admin page listing role permission templates.
package roles

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/auth"
	"github.com/govfinance-admin/govfinance-admin/internal/config"
	"github.com/govfinance-admin/govfinance-admin/internal/db/controller/roletemplate"
	"github.com/govfinance-admin/govfinance-admin/internal/logger"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler"
	pageguard "github.com/govfinance-admin/govfinance-admin/internal/web/middleware/guard"
	"github.com/govfinance-admin/govfinance-admin/internal/web/navigation"
)

const (
	// Path is the page path.
	Path = handler.RootPath + "admin/roles"

	// TemplateList is the template for listing role templates.
	TemplateList = "admin/roles"
)

// Row is one role template as shown on the page.
type Row struct {
	Role        string
	Description string
	Granted     []string
	Denied      int
}

// Service is the role templates page service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if err := handler.CheckDeps(app, cfg, db, authService); err != nil {
		return err
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path,
		pageguard.New(authService, handler.GuardRoutes(cfg), permission.ViewPermissions, permission.ManagePermissions),
		s.List,
	)

	return nil
}

// List renders every stored role template.
func (s *Service) List(c *fiber.Ctx) error {
	subject := auth.CurrentSubject(c)

	templates, err := roletemplate.List(c.UserContext(), s.db)
	if err != nil {
		logger.FromContext(c.UserContext()).Error().Err(err).Msg("failed to list role templates")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	rows := make([]Row, 0, len(templates))

	for _, t := range templates {
		row := Row{Role: t.Role, Description: t.Description}

		for _, def := range permission.All() {
			granted, set := t.Permissions[def.Key]

			switch {
			case granted:
				row.Granted = append(row.Granted, def.Label)
			case set:
				row.Denied++
			}
		}

		rows = append(rows, row)
	}

	nav := navigation.NewContext("Role permissions", "admin", "roles").
		AddBreadcrumb("Home", s.cfg.Auth.LandingPath, false).
		AddBreadcrumb("Role permissions", Path, true).
		WithMenu(subject, navigation.Menu)

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Rows":       rows,
		"CanManage":  auth.HasPermission(subject, permission.ManagePermissions),
	}, handler.BaseLayout)
}
