// Package userpermissions serves the per-user permission overlay endpoints.
package userpermissions

import (
	"maps"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/audit"
	"github.com/govfinance-admin/govfinance-admin/internal/auth"
	"github.com/govfinance-admin/govfinance-admin/internal/config"
	"github.com/govfinance-admin/govfinance-admin/internal/db/controller/user"
	"github.com/govfinance-admin/govfinance-admin/internal/logger"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler/api"
	"github.com/govfinance-admin/govfinance-admin/internal/web/response"
)

const (
	// Path is the route of the overlay endpoints.
	Path = handler.APIPath + "/users/:" + paramID + "/permissions"

	paramID = "id"
)

// UpdateRequest is the body of PATCH. The overlay replaces the stored one.
type UpdateRequest struct {
	Permissions permission.Overlay `json:"permissions" validate:"required"`
}

// Response describes a user's permissions.
type Response struct {
	UserID uint64 `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	// Permissions is the stored overlay.
	Permissions permission.Overlay `json:"permissions"`
	// Effective lists every key the user holds after resolution.
	Effective []permission.Key `json:"effective"`
}

// Service is the overlay handler service.
type Service struct {
	handler.Service
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the overlay handler.
var Handler = Service{}

// Init registers the overlay routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if err := handler.CheckDeps(app, cfg, db, authService); err != nil {
		return err
	}

	s.db = db
	s.authService = authService

	app.Get(Path, auth.RequireAuth(authService, permission.ViewUser, permission.UpdateUser), s.Get)
	app.Patch(Path, auth.RequireAuth(authService, permission.UpdateUser), s.Patch)

	return nil
}

// Get returns the overlay and the resolved permissions of a user.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := api.ParseID(c, paramID)
	if err != nil {
		return api.RespondError(c, err)
	}

	return s.respond(c, id)
}

// Patch replaces the overlay of a user and records the change.
func (s *Service) Patch(c *fiber.Ctx) error {
	id, err := api.ParseID(c, paramID)
	if err != nil {
		return api.RespondError(c, err)
	}

	req := new(UpdateRequest)
	if err = api.Bind(c, req); err != nil {
		return api.RespondError(c, err)
	}

	before, err := user.Get(c.UserContext(), s.db, id)
	if err != nil {
		return api.RespondError(c, err)
	}

	previous := maps.Clone(before.Permissions)

	if _, err = user.UpdatePermissions(c.UserContext(), s.db, id, req.Permissions); err != nil {
		return api.RespondError(c, err)
	}

	audit.Record(c.UserContext(), s.db, audit.Entry{
		UserID:   api.Actor(c),
		Action:   audit.ActionUpdateUserPermissions,
		Entity:   audit.EntityUser,
		EntityID: c.Params(paramID),
		Details:  fiber.Map{"before": previous, "after": req.Permissions},
	})

	logger.FromContext(c.UserContext()).Info().Uint64("target_user_id", id).
		Msg("user permission overlay updated")

	return s.respond(c, id)
}

func (s *Service) respond(c *fiber.Ctx, id uint64) error {
	subject, err := s.authService.Load(c.UserContext(), id)
	if err != nil {
		return api.RespondError(c, err)
	}

	overlay := subject.Overlay
	if overlay == nil {
		overlay = permission.Overlay{}
	}

	return response.OK(c, Response{
		UserID:      subject.UserID,
		Email:       subject.Email,
		Name:        subject.Name,
		Role:        subject.Role,
		Permissions: overlay,
		Effective:   auth.EffectivePermissions(subject),
	})
}
