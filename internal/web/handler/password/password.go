// Package password lets a signed-in user change the account password.
package password

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/audit"
	"github.com/govfinance-admin/govfinance-admin/internal/auth"
	"github.com/govfinance-admin/govfinance-admin/internal/config"
	"github.com/govfinance-admin/govfinance-admin/internal/logger"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler"
	pageguard "github.com/govfinance-admin/govfinance-admin/internal/web/middleware/guard"
	"github.com/govfinance-admin/govfinance-admin/internal/web/navigation"
)

// TemplateName is the name of the password template.
const TemplateName = "password"

const minPasswordLen = 8

var (
	// ErrInvalidFormData is shown when the form is incomplete or the new passwords differ.
	ErrInvalidFormData = errors.New("new password must have at least 8 characters and match its confirmation")

	// ErrWrongPassword is shown when the current password is wrong.
	ErrWrongPassword = errors.New("current password is incorrect")

	// ErrSamePassword is shown when the new password equals the current one.
	ErrSamePassword = errors.New("new password must differ from the current one")

	// ErrInternalServerError is shown for unexpected failures.
	ErrInternalServerError = errors.New("internal server error")
)

// Form is the submitted password change.
type Form struct {
	Current string `form:"current" validate:"required"`
	New     string `form:"new" validate:"required,min=8,nefield=Current"`
	Confirm string `form:"confirm" validate:"required,eqfield=New"`
}

// Service is the password handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	db       *gorm.DB
	provider *auth.LocalProvider
	validate *validator.Validate
}

// Handler is the password handler.
var Handler = Service{}

// Init initializes the password handler. The page needs a session but no permission.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if err := handler.CheckDeps(app, cfg, db, authService); err != nil {
		return err
	}

	s.cfg = cfg
	s.db = db
	s.provider = auth.NewLocalProvider(db)
	s.validate = validator.New()

	protect := pageguard.New(authService, handler.GuardRoutes(cfg))

	app.Get(cfg.Auth.PasswordPath, protect, s.Get)
	app.Post(cfg.Auth.PasswordPath, protect, s.Post)

	return nil
}

// Get renders the form.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.render(c, nil)
}

// Post changes the password and clears the mandatory change flag.
func (s *Service) Post(c *fiber.Ctx) error {
	subject := auth.CurrentSubject(c)
	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		return s.render(c, ErrInvalidFormData)
	}

	if err := s.validate.Struct(form); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) == 1 && fields[0].Tag() == "nefield" {
			return s.render(c, ErrSamePassword)
		}

		return s.render(c, ErrInvalidFormData)
	}

	err := s.provider.ChangePassword(c.UserContext(), subject.UserID, form.Current, form.New)

	switch {
	case errors.Is(err, auth.ErrInvalidOldPassword):
		logger.FromContext(c.UserContext()).Warn().Msg("password change with wrong current password")
		return s.render(c, ErrWrongPassword)
	case err != nil:
		logger.FromContext(c.UserContext()).Error().Err(err).Msg("failed to change password")
		return s.render(c, ErrInternalServerError)
	}

	audit.Record(c.UserContext(), s.db, audit.Entry{
		UserID:   subject.UserID,
		Action:   audit.ActionChangePassword,
		Entity:   audit.EntityUser,
		EntityID: subject.Username,
	})

	logger.FromContext(c.UserContext()).Info().Msg("password changed")

	return c.Redirect(s.cfg.Auth.LandingPath)
}

func (s *Service) render(c *fiber.Ctx, err error) error {
	subject := auth.CurrentSubject(c)

	nav := navigation.NewContext("Change password", "account", "password").
		AddBreadcrumb("Home", s.cfg.Auth.LandingPath, false).
		AddBreadcrumb("Change password", s.cfg.Auth.PasswordPath, true).
		WithMenu(subject, navigation.Menu)

	data := fiber.Map{
		"Navigation": nav,
		"Mandatory":  subject != nil && subject.MustChangePassword,
		"MinLength":  minPasswordLen,
	}

	if err != nil {
		data["error"] = err.Error()
	}

	return c.Render(TemplateName, data, handler.BaseLayout)
}
