// Package me serves the signed-in user's profile and effective permissions.
package me

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/auth"
	"github.com/govfinance-admin/govfinance-admin/internal/config"
	"github.com/govfinance-admin/govfinance-admin/internal/db/models"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler"
	"github.com/govfinance-admin/govfinance-admin/internal/web/response"
)

// Path is the route of the endpoint.
const Path = handler.APIPath + "/me"

// Response is the current user as consumed by clients.
type Response struct {
	ID                 uint64            `json:"id"`
	Username           string            `json:"username"`
	Name               string            `json:"name"`
	Email              string            `json:"email"`
	Role               string            `json:"role"`
	Status             models.UserStatus `json:"status"`
	MustChangePassword bool              `json:"mustChangePassword"`
	Permissions        []permission.Key  `json:"permissions"`
}

// Service is the handler service.
type Service struct {
	handler.Service
}

// Handler is the handler instance.
var Handler = Service{}

// Init registers the route.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if err := handler.CheckDeps(app, cfg, db, authService); err != nil {
		return err
	}

	app.Get(Path, auth.RequireAuth(authService), s.Get)

	return nil
}

// Get returns the caller.
func (s *Service) Get(c *fiber.Ctx) error {
	subject := auth.CurrentSubject(c)

	return response.OK(c, Response{
		ID:                 subject.UserID,
		Username:           subject.Username,
		Name:               subject.Name,
		Email:              subject.Email,
		Role:               subject.Role,
		Status:             subject.Status,
		MustChangePassword: subject.MustChangePassword,
		Permissions:        auth.EffectivePermissions(subject),
	})
}
