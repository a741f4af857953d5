// Package audit serves the audit log.
package audit

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	auditlog "github.com/govfinance-admin/govfinance-admin/internal/audit"
	"github.com/govfinance-admin/govfinance-admin/internal/auth"
	"github.com/govfinance-admin/govfinance-admin/internal/config"
	"github.com/govfinance-admin/govfinance-admin/internal/db/models"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler/api"
)

// Path is the route of the endpoint.
const Path = handler.APIPath + "/audit-logs"

// Response is one page of audit entries.
type Response struct {
	OK    bool              `json:"ok"`
	Data  []models.AuditLog `json:"data"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
}

// Service is the handler service.
type Service struct {
	handler.Service
	db *gorm.DB
}

// Handler is the handler instance.
var Handler = Service{}

// Init registers the route.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if err := handler.CheckDeps(app, cfg, db, authService); err != nil {
		return err
	}

	s.db = db

	app.Get(Path, auth.RequireAuth(authService, permission.ViewAudit), s.List)

	return nil
}

// List returns a page of audit entries, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	page, err := auditlog.List(c.UserContext(), s.db,
		c.QueryInt("page", 1), c.QueryInt("limit", auditlog.DefaultPageSize))
	if err != nil {
		return api.RespondError(c, err)
	}

	return c.JSON(Response{OK: true, Data: page.Entries, Page: page.Page, Limit: page.Limit, Total: page.Total})
}
