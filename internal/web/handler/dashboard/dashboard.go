// Package dashboard provides the landing page showing the user's effective permissions.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/auth"
	"github.com/govfinance-admin/govfinance-admin/internal/config"
	"github.com/govfinance-admin/govfinance-admin/internal/logger"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler"
	pageguard "github.com/govfinance-admin/govfinance-admin/internal/web/middleware/guard"
	"github.com/govfinance-admin/govfinance-admin/internal/web/navigation"
)

// TemplateName is the name of the dashboard template.
const TemplateName = "dashboard/dashboard"

// ModuleAccess lists what the user may do in one module.
type ModuleAccess struct {
	Module  permission.Module
	Granted []string
}

// Data represents the complete dashboard data.
type Data struct {
	Name      string
	Role      string
	Modules   []ModuleAccess
	Total     int
	Available int
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg *config.Config
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if err := handler.CheckDeps(app, cfg, db, authService); err != nil {
		return err
	}

	s.cfg = cfg

	// register routes with permission checks
	app.Get(cfg.Auth.LandingPath,
		pageguard.New(authService, handler.GuardRoutes(cfg), permission.ViewDashboard),
		s.Get,
	)

	return nil
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	subject := auth.CurrentSubject(c)

	nav := navigation.NewContext("Dashboard", "dashboard", "dashboard").
		AddBreadcrumb("Home", s.cfg.Auth.LandingPath, false).
		AddBreadcrumb("Dashboard", s.cfg.Auth.LandingPath, true).
		WithMenu(subject, navigation.Menu)

	data := Build(subject)

	logger.FromContext(c.UserContext()).Debug().Int("granted", data.Total).
		Msg("dashboard rendered")

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

// Build groups the subject's effective permissions by module in catalog order.
func Build(subject *auth.Subject) Data {
	data := Data{
		Available: len(permission.AllKeys()),
	}

	if subject == nil {
		return data
	}

	data.Name = subject.Name
	data.Role = subject.Role

	grouped := permission.Grouped()

	for _, module := range permission.Modules() {
		var granted []string

		for _, def := range grouped[module] {
			if auth.HasPermission(subject, def.Key) {
				granted = append(granted, def.Label)
			}
		}

		if len(granted) > 0 {
			data.Modules = append(data.Modules, ModuleAccess{Module: module, Granted: granted})
			data.Total += len(granted)
		}
	}

	return data
}
