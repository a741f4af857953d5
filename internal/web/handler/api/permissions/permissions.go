// Package permissions serves the permission catalog.
package permissions

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/auth"
	"github.com/govfinance-admin/govfinance-admin/internal/config"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler"
)

// Path is the path of the catalog endpoint.
const Path = handler.APIPath + "/permissions"

// Response is the catalog grouped by module plus the flat list.
type Response struct {
	OK   bool                                          `json:"ok"`
	Data map[permission.Module][]permission.Definition `json:"data"`
	All  []permission.Definition                       `json:"all"`
}

// Service is the catalog handler service.
type Service struct {
	handler.Service
}

// Handler is the catalog handler.
var Handler = Service{}

// Init registers the catalog route. Any authenticated user may read it.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if err := handler.CheckDeps(app, cfg, db, authService); err != nil {
		return err
	}

	app.Get(Path, auth.RequireAuth(authService), s.Get)

	return nil
}

// Get returns the catalog.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.JSON(Response{
		OK:   true,
		Data: permission.Grouped(),
		All:  permission.All(),
	})
}
