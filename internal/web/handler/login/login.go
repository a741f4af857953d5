package login

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/auth"
	"github.com/govfinance-admin/govfinance-admin/internal/config"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler"
	"github.com/govfinance-admin/govfinance-admin/internal/web/session"
)

// TemplateName is the name of the login template.
const TemplateName = "login"

// Form is the submitted login form.
type Form struct {
	Username string `form:"username" json:"username" validate:"required,max=100"`
	Password string `form:"password" json:"password" validate:"required"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	authService *auth.Service
	provider    *auth.LocalProvider
	validate *validator.Validate
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if err := handler.CheckDeps(app, cfg, db, authService); err != nil {
		return err
	}

	s.cfg = cfg
	s.authService = authService
	s.provider = auth.NewLocalProvider(db)
	s.validate = validator.New()

	// register routes
	app.Route(cfg.Auth.LoginPath, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering. Active signed-in users go to the
// landing page; a session that no longer signs anyone in is discarded.
func (s *Service) Get(c *fiber.Ctx) error {
	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" {
		return s.render(c, nil)
	}

	subject, err := s.authService.SessionSubject(c.UserContext(), sessionID)

	switch {
	case err == nil && subject.Active():
		return c.Redirect(s.cfg.Auth.LandingPath)
	case err == nil, errors.Is(err, auth.ErrUnauthenticated):
		if err := session.Clear(c); err != nil {
			log.Error().Err(err).Msg("failed to delete stale session")
		}
	default:
		log.Error().Err(err).Msg("failed to load session user")
	}

	return s.render(c, nil)
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		return s.render(c, ErrInvalidFormData)
	}

	if err := s.validate.Struct(form); err != nil {
		return s.render(c, ErrInvalidFormData)
	}

	u, err := s.provider.Authenticate(c.UserContext(), form.Username, form.Password)

	switch {
	case errors.Is(err, auth.ErrInvalidPassword):
		log.Warn().Str("username", form.Username).Msg("failed login attempt")
		return s.render(c, ErrInvalidCredentials)
	case errors.Is(err, auth.ErrAccountDeactivated):
		log.Warn().Str("username", form.Username).Msg("login attempt on deactivated account")
		return s.render(c, ErrAccountDeactivated)
	case err != nil:
		log.Error().Err(err).Msg("failed to authenticate user")
		return s.render(c, ErrInternalServerError)
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return s.render(c, ErrInternalServerError)
	}

	userSession := &session.Data{
		UserID:   u.ID,
		Username: u.Username,
		LoginAt:  time.Now(),
	}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return s.render(c, ErrInternalServerError)
	}

	// set login cookie
	cookieSettings := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	c.Cookie(cookieSettings)

	log.Info().Uint64("user_id", u.ID).Str("username", u.Username).Msg("user signed in")

	if u.MustChangePassword {
		return c.Redirect(s.cfg.Auth.PasswordPath)
	}

	return c.Redirect(s.cfg.Auth.LandingPath)
}

func (s *Service) render(c *fiber.Ctx, err error) error {
	data := fiber.Map{
		"Title": s.cfg.Title,
	}

	if err != nil {
		data["error"] = err.Error()
	}

	return c.Render(TemplateName, data)
}
